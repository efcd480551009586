package pipeline

import (
	"fmt"

	"github.com/jonathan/resource-curator/internal/types"
)

// PersistenceError is the only error a pipeline run returns. The bundle was
// computed but could not be stored; it is available in Bundle.
type PersistenceError struct {
	UserID  string
	Message string
	Cause   error
	Bundle  *types.ResourceBundle
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to persist bundle for user %s: %s: %v", e.UserID, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to persist bundle for user %s: %s", e.UserID, e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
