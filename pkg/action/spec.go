package action

import (
	"context"
	"fmt"

	"github.com/systune-io/systune/pkg/facts"
)

// Op is one injected system-mutating operation (set a setting, toggle a
// service, change a firewall profile). The registry never performs I/O
// itself; the concrete operations come from the caller, which keeps the
// core testable with fakes.
type Op func(ctx context.Context) error

// SubStep is the minimal atomic unit of an action's effect; the registry
// always runs a sub-step's Do. Do must be idempotent: running it twice
// leaves the system in the same state as running it once. Undo reverses
// Do's effect and may be nil when there is nothing to reverse — it is the
// composition hook a Spec's Revert sequence is typically built from, not
// something the registry invokes directly.
type SubStep struct {
	Name string
	Do   Op
	Undo Op
}

// Precondition gates whether an action may run against a snapshot.
// Implementations live outside the core (see internal/guard).
type Precondition interface {
	Describe() string
	// Holds reports whether the predicate is satisfied by the snapshot.
	// When it is not — including when the predicate could not be evaluated
	// at all — reason explains why.
	Holds(snap *facts.Snapshot) (ok bool, reason string)
}

// Spec is the static, declarative description of one idempotent
// system-modifying action.
type Spec struct {
	ID            string
	Description   string
	Preconditions []Precondition
	Apply         []SubStep
	Revert        []SubStep
}

func (s Spec) validate() error {
	if s.ID == "" {
		return fmt.Errorf("action spec has no id")
	}
	if err := validateSteps(s.ID, "apply", s.Apply); err != nil {
		return err
	}
	return validateSteps(s.ID, "revert", s.Revert)
}

func validateSteps(actionID, kind string, steps []SubStep) error {
	seen := make(map[string]bool, len(steps))
	for _, step := range steps {
		if step.Name == "" {
			return fmt.Errorf("action %q: unnamed %s sub-step", actionID, kind)
		}
		if seen[step.Name] {
			return fmt.Errorf("action %q: duplicate %s sub-step %q", actionID, kind, step.Name)
		}
		seen[step.Name] = true
		if step.Do == nil {
			return fmt.Errorf("action %q: %s sub-step %q has no operation", actionID, kind, step.Name)
		}
	}
	return nil
}

// Summary is the read-only view of a registered action, for menu and
// report rendering.
type Summary struct {
	ID          string
	Description string
}

// RestorePlan is the emergency-restore pseudo-action: the revert sequences
// of the named actions run in the declared order. The order is deployment
// configuration, not something the registry infers.
type RestorePlan struct {
	ID          string
	Description string
	Actions     []string
}
