package action

import "time"

// Status classifies the outcome of an action or one of its sub-steps.
type Status string

const (
	// StatusSuccess: every sub-step succeeded.
	StatusSuccess Status = "success"
	// StatusSkipped: nothing ran — an unmet precondition, a policy denial,
	// or cancellation before the first sub-step.
	StatusSkipped Status = "skipped"
	// StatusPartial: some sub-steps succeeded and some failed or were
	// skipped by cancellation.
	StatusPartial Status = "partial"
	// StatusFailure: every sub-step that ran failed.
	StatusFailure Status = "failure"
)

// SubStepResult records one sub-step's outcome. Detail carries the failure
// cause or skip explanation and is empty on success.
type SubStepResult struct {
	Name   string
	Status Status
	Detail string
}

// ActionResult is the fully-inspectable outcome of one action execution.
// Reason is set when Status is StatusSkipped.
type ActionResult struct {
	ActionID string
	Status   Status
	Reason   string
	SubSteps []SubStepResult
	Duration time.Duration
}

// BatchResult holds the ordered outcomes of a requested batch. A batch
// never stops early: every requested action appears here.
type BatchResult struct {
	Results []ActionResult
}

// AllSucceeded reports whether every action in the batch succeeded.
func (b BatchResult) AllSucceeded() bool {
	for _, r := range b.Results {
		if r.Status != StatusSuccess {
			return false
		}
	}
	return true
}

// Failed returns the results whose status is partial or failure.
func (b BatchResult) Failed() []ActionResult {
	var failed []ActionResult
	for _, r := range b.Results {
		if r.Status == StatusPartial || r.Status == StatusFailure {
			failed = append(failed, r)
		}
	}
	return failed
}

// aggregate folds sub-step outcomes into an action status. Sub-steps
// skipped by cancellation count against completeness but not as failures.
func aggregate(steps []SubStepResult) Status {
	var succeeded, failed, skipped int
	for _, s := range steps {
		switch s.Status {
		case StatusSuccess:
			succeeded++
		case StatusFailure:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	switch {
	case failed == 0 && skipped == 0:
		return StatusSuccess
	case succeeded == 0 && failed > 0:
		return StatusFailure
	case succeeded == 0 && failed == 0:
		return StatusSkipped
	default:
		return StatusPartial
	}
}
