package vm

// Environment is a declarative lexical-environment record: a fixed set of
// binding slots created by a block or function scope.
type Environment struct {
	bindings []Value
}

// NewEnvironment creates an environment with the given number of slots.
func NewEnvironment(slots int) *Environment {
	return &Environment{bindings: make([]Value, slots)}
}

// GetBinding reads a binding slot.
func (e *Environment) GetBinding(slot int) Value {
	if slot < 0 || slot >= len(e.bindings) {
		panic("environment binding read out of range")
	}
	return e.bindings[slot]
}

// SetBinding writes a binding slot.
func (e *Environment) SetBinding(slot int, v Value) {
	if slot < 0 || slot >= len(e.bindings) {
		panic("environment binding write out of range")
	}
	e.bindings[slot] = v
}

// EnvironmentStack is the lexical-environment stack visible to an
// activation. Frames record where their own records begin (env_fp) so that
// unwinding can truncate back in one step.
type EnvironmentStack struct {
	envs []*Environment
}

// NewEnvironmentStack creates an empty environment stack.
func NewEnvironmentStack() *EnvironmentStack {
	return &EnvironmentStack{}
}

// Len returns the number of environments on the stack.
func (s *EnvironmentStack) Len() int {
	return len(s.envs)
}

// Push adds an environment on top of the stack.
func (s *EnvironmentStack) Push(env *Environment) {
	s.envs = append(s.envs, env)
}

// Pop removes and returns the innermost environment.
func (s *EnvironmentStack) Pop() *Environment {
	if len(s.envs) == 0 {
		panic("environment stack underflow")
	}
	env := s.envs[len(s.envs)-1]
	s.envs = s.envs[:len(s.envs)-1]
	return env
}

// Current returns the innermost environment without removing it.
func (s *EnvironmentStack) Current() *Environment {
	if len(s.envs) == 0 {
		panic("environment stack underflow")
	}
	return s.envs[len(s.envs)-1]
}

// At returns the environment at the given index from the bottom.
func (s *EnvironmentStack) At(index int) *Environment {
	if index < 0 || index >= len(s.envs) {
		panic("environment stack index out of range")
	}
	return s.envs[index]
}

// TruncateTo drops every environment at or above length. Used when a frame
// unwinds back to its env_fp.
func (s *EnvironmentStack) TruncateTo(length int) {
	if length < 0 || length > len(s.envs) {
		panic("environment stack truncated out of bounds")
	}
	s.envs = s.envs[:length]
}

// Trace visits every binding value held by the stack. Used by frame
// traversal to reach values a suspended activation still references.
func (s *EnvironmentStack) Trace(visit func(Value)) {
	for _, env := range s.envs {
		for _, v := range env.bindings {
			visit(v)
		}
	}
}
