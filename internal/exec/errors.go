package exec

import (
	"fmt"
	"strings"
)

// InvariantError reports a caller-sequencing defect detected by the
// execution core: a duplicate write to an occupied slot, a write through a
// non-container value, or a type lookup for a position never entered.
// These abort the execution by panic; they are never user-facing request
// errors.
type InvariantError struct {
	Message string
	Path    Path
	Old     any
	New     any
}

func (e *InvariantError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.Path.String())
	}
	if e.Old != nil || e.New != nil {
		fmt.Fprintf(&b, " (previous: %v, new: %v)", e.Old, e.New)
	}
	return b.String()
}

func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteString(".")
			}
			b.WriteString(v)
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		default:
			if i > 0 {
				b.WriteString(".")
			}
			fmt.Fprintf(&b, "%v", elem)
		}
	}
	return b.String()
}
