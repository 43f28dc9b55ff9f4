package layout

import "fmt"

// Kind enumerates the LayoutError taxonomy.
type Kind string

const (
	ErrDuplicateName Kind = "DuplicateName"
	ErrEdgeOverlap   Kind = "EdgeOverlap"
	ErrCycle         Kind = "Cycle"
	ErrUnknownClient Kind = "UnknownClient"
)

// Error is the single error type Builder.Build and Layout mutators raise.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("layout: %s: %s", e.Kind, e.Detail)
}

func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}
