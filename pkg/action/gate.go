package action

import "context"

// Verdict is a gatekeeper's ruling on one action.
type Verdict struct {
	Allow   bool
	Reasons []string
}

// Gatekeeper reviews an action against the snapshot's fact values before
// its preconditions are evaluated, typically by evaluating an external
// policy (see internal/gatekeeper). A denial or review failure skips the
// action; it is recorded in the result, never raised past Execute.
type Gatekeeper interface {
	Review(ctx context.Context, actionID string, factValues map[string]any) (Verdict, error)
}
