package workflow

import (
	"fmt"

	"github.com/jonathan/media-workflow/internal/types"
)

// TransitionError reports a transition the machine refused
type TransitionError struct {
	ItemID  string
	From    types.Stage
	Target  string
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition for %q: %s -> %q: %s", e.ItemID, e.From, e.Target, e.Message)
}
