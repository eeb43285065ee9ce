package tracker

import "fmt"

// PersistError reports that a mutation was applied in memory but could not be saved.
// It is advisory: the mutation is kept.
type PersistError struct {
	Op    string
	ID    string
	Cause error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s applied but not saved: %v", e.Op, e.ID, e.Cause)
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}

// ValidationError reports a command rejected before touching the collection
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
