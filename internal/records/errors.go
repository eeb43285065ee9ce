package records

import "fmt"

// DroppedError reports a stored record that cannot be repaired into a work item
type DroppedError struct {
	Index   int
	ID      string
	Message string
	Cause   error
}

func (e *DroppedError) Error() string {
	prefix := "record dropped"
	if e.ID != "" {
		prefix = fmt.Sprintf("record %q dropped", e.ID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *DroppedError) Unwrap() error {
	return e.Cause
}

// DocumentError represents a stored document that is not parseable at all
type DocumentError struct {
	Message string
	Cause   error
}

func (e *DocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("document error: %s", e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}
