package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycleDetected is returned when a plan keeps expanding past the
	// recursion limit, which happens when recipes loop back on themselves
	// through an item that is not in the terminal set.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrUnknownItem is returned for item names the oracle does not know.
	ErrUnknownItem = errors.New("unknown item")
	// ErrInvalidRequest is returned for quantities or depths out of range.
	ErrInvalidRequest = errors.New("invalid request")
)

// CycleError records the expansion path that hit the recursion limit.
type CycleError struct {
	Path []string
}

// Cycle returns the repeating tail of the path: from the last earlier
// occurrence of the final item through the final item. It returns the full
// path when no item repeats.
func (e *CycleError) Cycle() []string {
	if len(e.Path) == 0 {
		return nil
	}
	last := e.Path[len(e.Path)-1]
	for i := len(e.Path) - 2; i >= 0; i-- {
		if e.Path[i] == last {
			return e.Path[i:]
		}
	}
	return e.Path
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCycleDetected.Error()
	}
	return fmt.Sprintf("%s expanding %s: %s (depth %d)",
		ErrCycleDetected, e.Path[0], strings.Join(e.Cycle(), " -> "), len(e.Path))
}

// Is makes errors.Is(err, ErrCycleDetected) match.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}
