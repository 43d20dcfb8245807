package action

import "context"

// AuditLogger persists action outcomes and error information.
type AuditLogger interface {
	// LogAction records one action execution or revert.
	// configID identifies the configuration in effect, for traceability.
	LogAction(ctx context.Context, result ActionResult, configID string) error

	// LogSystemError records failures occurring outside action execution,
	// such as an unknown id in a requested batch.
	LogSystemError(ctx context.Context, systemError error, actionID, configID string) error
}
