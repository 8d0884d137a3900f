package vm

import "fmt"

// BindingLocator is a pending binding-update locator accumulated during
// destructuring and initialization, consumed by the environment subsystem.
// Locators are plain value data: they hold no heap references and need no
// traversal entry.
type BindingLocator struct {
	Name             string
	EnvironmentIndex int // Index into the frame's environment stack
	Slot             int // Binding slot within that environment
}

func (b BindingLocator) String() string {
	return fmt.Sprintf("%s@%d.%d", b.Name, b.EnvironmentIndex, b.Slot)
}
