package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/systune-io/systune/pkg/action"
)

// Logger implements action.AuditLogger with output to stdout.
type Logger struct{}

// New creates a new stdout logger.
func New() *Logger {
	return &Logger{}
}

// LogAction implements action.AuditLogger.
func (l *Logger) LogAction(ctx context.Context, result action.ActionResult, configID string) error {
	stepsJSON, err := json.Marshal(result.SubSteps)
	if err != nil {
		stepsJSON = []byte(fmt.Sprintf("error marshaling sub-steps: %v", err))
	}

	log.Printf("[AUDIT ACTION] Action: %s, Status: %s, Reason: %q, ConfigID: %s, Duration: %s, SubSteps: %s\n",
		result.ActionID, result.Status, result.Reason, configID, result.Duration, string(stepsJSON))

	return nil
}

// LogSystemError implements action.AuditLogger.
func (l *Logger) LogSystemError(ctx context.Context, systemError error, actionID, configID string) error {
	log.Printf("[AUDIT SYSTEM ERROR] Action: %s, ConfigID: %s, Error: %v\n",
		actionID, configID, systemError)

	return nil
}
