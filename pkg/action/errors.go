package action

import "errors"

// Programming-contract violations. These are the only conditions Execute,
// ExecuteBatch, Revert, and ExecuteRestore surface as hard failures;
// every operational failure is captured inside the result structures.
var (
	ErrDuplicateAction = errors.New("action: id already registered")
	ErrUnknownAction   = errors.New("action: id not registered")
)
