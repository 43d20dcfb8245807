package action

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/systune-io/systune/internal/metrics"
	"github.com/systune-io/systune/pkg/facts"
)

// Registry holds the declarative table of registered actions and executes
// them. Sub-steps within one action run sequentially: they mutate shared
// system state where ordering matters, so concurrency inside an action
// would risk races. Cancellation is honored between sub-steps and between
// batch members, never mid-sub-step.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
	order []string

	gate     Gatekeeper
	audit    AuditLogger
	configID string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithGatekeeper installs a policy gate reviewed before each action's
// preconditions.
func WithGatekeeper(g Gatekeeper) RegistryOption {
	return func(r *Registry) { r.gate = g }
}

// WithAuditLogger installs an audit sink. configID identifies the
// configuration in effect and is carried into every audit record. Audit
// failures never affect execution results.
func WithAuditLogger(l AuditLogger, configID string) RegistryOption {
	return func(r *Registry) {
		r.audit = l
		r.configID = configID
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		specs: make(map[string]Spec),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an action spec. Registering an id twice fails with
// ErrDuplicateAction.
func (r *Registry) Register(spec Spec) error {
	if err := spec.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, spec.ID)
	}
	r.specs[spec.ID] = spec
	r.order = append(r.order, spec.ID)
	return nil
}

// List returns id and description for every registered action, in
// registration order.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		spec := r.specs[id]
		summaries = append(summaries, Summary{ID: spec.ID, Description: spec.Description})
	}
	return summaries
}

func (r *Registry) lookup(id string) (Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[id]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	return spec, nil
}

func (r *Registry) lookupAll(ids []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(ids))
	for _, id := range ids {
		spec, err := r.lookup(id)
		if err != nil {
			r.logSystemError(context.Background(), err, id)
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Execute runs one action's apply sequence against the snapshot. The only
// hard failure is ErrUnknownAction; every operational outcome — policy
// denial, unmet precondition, sub-step failures — is captured in the
// returned ActionResult.
func (r *Registry) Execute(ctx context.Context, id string, snap *facts.Snapshot) (ActionResult, error) {
	spec, err := r.lookup(id)
	if err != nil {
		r.logSystemError(ctx, err, id)
		return ActionResult{}, err
	}
	result := r.apply(ctx, spec, snap)
	r.logAction(ctx, result)
	return result, nil
}

// ExecuteBatch runs the requested actions in order against the same
// snapshot: no re-probe happens mid-batch, so every action reasons about a
// consistent view of the system as it was before the batch started. One
// action's failure never halts the batch. All ids are validated before
// anything runs; an unknown id fails the whole call with ErrUnknownAction.
func (r *Registry) ExecuteBatch(ctx context.Context, ids []string, snap *facts.Snapshot) (BatchResult, error) {
	specs, err := r.lookupAll(ids)
	if err != nil {
		return BatchResult{}, err
	}

	batch := BatchResult{Results: make([]ActionResult, 0, len(specs))}
	for _, spec := range specs {
		var result ActionResult
		if cause := ctx.Err(); cause != nil {
			result = ActionResult{
				ActionID: spec.ID,
				Status:   StatusSkipped,
				Reason:   "batch canceled: " + cause.Error(),
			}
		} else {
			result = r.apply(ctx, spec, snap)
		}
		r.logAction(ctx, result)
		batch.Results = append(batch.Results, result)
	}
	return batch, nil
}

// Revert runs one action's revert sequence in declared order, independent
// of whether its apply ever ran. Preconditions and the policy gate do not
// apply: a revert must stay available even when the system state no longer
// satisfies the action's eligibility.
func (r *Registry) Revert(ctx context.Context, id string) (ActionResult, error) {
	spec, err := r.lookup(id)
	if err != nil {
		r.logSystemError(ctx, err, id)
		return ActionResult{}, err
	}
	result := r.revert(ctx, spec)
	r.logAction(ctx, result)
	return result, nil
}

// ExecuteRestore runs the plan's revert sequences in the declared order —
// the emergency-restore pseudo-action. Like a batch, it never stops early;
// like Revert, it ignores preconditions and the gate.
func (r *Registry) ExecuteRestore(ctx context.Context, plan RestorePlan) (BatchResult, error) {
	specs, err := r.lookupAll(plan.Actions)
	if err != nil {
		return BatchResult{}, err
	}

	batch := BatchResult{Results: make([]ActionResult, 0, len(specs))}
	for _, spec := range specs {
		var result ActionResult
		if cause := ctx.Err(); cause != nil {
			result = ActionResult{
				ActionID: spec.ID,
				Status:   StatusSkipped,
				Reason:   "restore canceled: " + cause.Error(),
			}
		} else {
			result = r.revert(ctx, spec)
		}
		r.logAction(ctx, result)
		batch.Results = append(batch.Results, result)
	}
	return batch, nil
}

func (r *Registry) apply(ctx context.Context, spec Spec, snap *facts.Snapshot) ActionResult {
	started := time.Now()
	result := ActionResult{ActionID: spec.ID}

	if r.gate != nil {
		verdict, err := r.gate.Review(ctx, spec.ID, snap.Values())
		switch {
		case err != nil:
			// Deny by default: a gate that cannot rule does not let a
			// system-modifying action through.
			result.Status = StatusSkipped
			result.Reason = fmt.Sprintf("policy review failed: %v", err)
		case !verdict.Allow:
			result.Status = StatusSkipped
			result.Reason = "denied by policy: " + strings.Join(verdict.Reasons, "; ")
		}
		if result.Status == StatusSkipped {
			result.Duration = time.Since(started)
			metrics.ActionsExecuted.WithLabelValues(spec.ID, string(result.Status)).Inc()
			return result
		}
	}

	for _, pre := range spec.Preconditions {
		ok, reason := holds(pre, snap)
		if !ok {
			result.Status = StatusSkipped
			result.Reason = reason
			result.Duration = time.Since(started)
			metrics.ActionsExecuted.WithLabelValues(spec.ID, string(result.Status)).Inc()
			return result
		}
	}

	result.SubSteps = r.runSteps(ctx, spec.ID, spec.Apply)
	result.Status = aggregate(result.SubSteps)
	if result.Status == StatusSkipped {
		result.Reason = "canceled before any sub-step ran"
	}
	result.Duration = time.Since(started)
	metrics.ActionsExecuted.WithLabelValues(spec.ID, string(result.Status)).Inc()
	return result
}

func (r *Registry) revert(ctx context.Context, spec Spec) ActionResult {
	started := time.Now()
	result := ActionResult{ActionID: spec.ID}

	result.SubSteps = r.runSteps(ctx, spec.ID, spec.Revert)
	result.Status = aggregate(result.SubSteps)
	if result.Status == StatusSkipped && len(result.SubSteps) > 0 {
		result.Reason = "canceled before any sub-step ran"
	}
	result.Duration = time.Since(started)
	metrics.ActionsExecuted.WithLabelValues(spec.ID, "revert_"+string(result.Status)).Inc()
	return result
}

// runSteps executes sub-steps strictly in declared order. A failure is
// recorded and never stops later sub-steps; cancellation takes effect only
// between sub-steps, with the remainder recorded as skipped.
func (r *Registry) runSteps(ctx context.Context, actionID string, steps []SubStep) []SubStepResult {
	results := make([]SubStepResult, 0, len(steps))
	for _, step := range steps {
		if cause := ctx.Err(); cause != nil {
			results = append(results, SubStepResult{
				Name:   step.Name,
				Status: StatusSkipped,
				Detail: "canceled: " + cause.Error(),
			})
			continue
		}

		if err := runOp(ctx, step.Do); err != nil {
			metrics.SubStepFailures.WithLabelValues(actionID, step.Name).Inc()
			results = append(results, SubStepResult{
				Name:   step.Name,
				Status: StatusFailure,
				Detail: fmt.Sprintf("%s: %v", step.Name, err),
			})
			continue
		}
		results = append(results, SubStepResult{Name: step.Name, Status: StatusSuccess})
	}
	return results
}

// runOp is the sub-step boundary: panics are converted into errors here so
// nothing escapes the result structure.
func runOp(ctx context.Context, op Op) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return op(ctx)
}

// holds evaluates one precondition, treating a panicking predicate as
// unmet rather than letting it escape.
func holds(pre Precondition, snap *facts.Snapshot) (ok bool, reason string) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			reason = fmt.Sprintf("precondition %s: panic: %v", pre.Describe(), rec)
		}
	}()
	return pre.Holds(snap)
}

func (r *Registry) logAction(ctx context.Context, result ActionResult) {
	if r.audit == nil {
		return
	}
	// Best effort: a broken audit sink must not change execution outcomes.
	_ = r.audit.LogAction(ctx, result, r.configID)
}

func (r *Registry) logSystemError(ctx context.Context, err error, actionID string) {
	if r.audit == nil {
		return
	}
	_ = r.audit.LogSystemError(ctx, err, actionID, r.configID)
}
