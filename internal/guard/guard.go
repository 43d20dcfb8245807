// Package guard provides action.Precondition implementations: expression
// predicates compiled with expr-lang, plus simple fact comparisons.
package guard

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/systune-io/systune/pkg/action"
	"github.com/systune-io/systune/pkg/facts"
)

// exprPredicate evaluates a compiled boolean expression against the
// snapshot's resolved fact values.
type exprPredicate struct {
	source  string
	program *vm.Program
}

// Expr compiles source into a precondition. The expression sees every
// resolved fact by key; a fact that failed to probe is absent from the
// environment, which makes predicates referencing it unmet rather than
// silently satisfied.
func Expr(source string) (action.Precondition, error) {
	if source == "" {
		return nil, fmt.Errorf("guard: empty expression")
	}
	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("guard: compiling %q: %w", source, err)
	}
	return &exprPredicate{source: source, program: program}, nil
}

// MustExpr is Expr for static predicate tables; it panics on a compile
// error.
func MustExpr(source string) action.Precondition {
	pre, err := Expr(source)
	if err != nil {
		panic(err)
	}
	return pre
}

func (p *exprPredicate) Describe() string {
	return p.source
}

func (p *exprPredicate) Holds(snap *facts.Snapshot) (bool, string) {
	out, err := expr.Run(p.program, snap.Values())
	if err != nil {
		return false, fmt.Sprintf("predicate %q could not be evaluated: %v", p.source, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Sprintf("predicate %q returned %T, expected bool", p.source, out)
	}
	if !ok {
		return false, fmt.Sprintf("predicate %q not satisfied", p.source)
	}
	return true, ""
}

// factPredicate is a non-expression predicate over a single fact.
type factPredicate struct {
	desc string
	fn   func(snap *facts.Snapshot) (bool, string)
}

func (p *factPredicate) Describe() string { return p.desc }

func (p *factPredicate) Holds(snap *facts.Snapshot) (bool, string) {
	return p.fn(snap)
}

// FactTrue requires the named fact to be a resolved boolean true.
func FactTrue(key string) action.Precondition {
	desc := fmt.Sprintf("%s == true", key)
	return &factPredicate{
		desc: desc,
		fn: func(snap *facts.Snapshot) (bool, string) {
			fact, tracked := snap.Fact(key)
			if !tracked {
				return false, fmt.Sprintf("fact %q is not tracked", key)
			}
			if !fact.OK() {
				return false, fmt.Sprintf("fact %q unavailable: %v", key, fact.Err)
			}
			v, isBool := fact.Value.(bool)
			if !isBool {
				return false, fmt.Sprintf("fact %q is %T, expected bool", key, fact.Value)
			}
			if !v {
				return false, fmt.Sprintf("fact %q is false", key)
			}
			return true, ""
		},
	}
}

// FactEquals requires the named fact to be resolved and equal to want.
func FactEquals(key string, want any) action.Precondition {
	desc := fmt.Sprintf("%s == %v", key, want)
	return &factPredicate{
		desc: desc,
		fn: func(snap *facts.Snapshot) (bool, string) {
			fact, tracked := snap.Fact(key)
			if !tracked {
				return false, fmt.Sprintf("fact %q is not tracked", key)
			}
			if !fact.OK() {
				return false, fmt.Sprintf("fact %q unavailable: %v", key, fact.Err)
			}
			if fact.Value != want {
				return false, fmt.Sprintf("fact %q is %v, want %v", key, fact.Value, want)
			}
			return true, ""
		},
	}
}
