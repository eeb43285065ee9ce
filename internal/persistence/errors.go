package persistence

import "fmt"

// SlotError represents a failed read or write against a storage slot
type SlotError struct {
	Op      string
	Backend string
	Cause   error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("%s slot %s failed: %v", e.Backend, e.Op, e.Cause)
}

func (e *SlotError) Unwrap() error {
	return e.Cause
}
