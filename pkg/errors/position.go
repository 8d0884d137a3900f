package errors

import "fmt"

// Position locates an error inside a compiled function's instruction
// stream. The VM has no source text of its own; the function name and
// bytecode offset are the most precise location it can report.
type Position struct {
	Function string // Name of the code block, "<host>" if unknown
	PC       int    // 0-based bytecode offset of the failing instruction
}

func (p Position) String() string {
	fn := p.Function
	if fn == "" {
		fn = "<host>"
	}
	return fmt.Sprintf("%s@%04d", fn, p.PC)
}
