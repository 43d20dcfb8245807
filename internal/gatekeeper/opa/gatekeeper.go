// Package opa implements action.Gatekeeper on top of an OPA Rego policy.
package opa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/systune-io/systune/pkg/action"
)

// ErrPolicyLoad reports a policy file that could not be read or compiled.
var ErrPolicyLoad = fmt.Errorf("opa: policy could not be loaded")

// Gatekeeper reviews actions by evaluating a prepared Rego query with
// input {"action_id": ..., "facts": {...}}. The policy is expected to
// produce an object with an "allow" boolean and a "deny_reasons" array,
// and the gatekeeper defaults to deny when the result cannot be
// interpreted.
type Gatekeeper struct {
	bundleID string
	query    rego.PreparedEvalQuery
}

var _ action.Gatekeeper = (*Gatekeeper)(nil)

// NewFromFile loads and compiles the Rego policy at path and prepares the
// given query (e.g. "data.systune.response"). The sha256 of the policy
// file becomes the bundle id used for traceability.
func NewFromFile(ctx context.Context, path, query string) (*Gatekeeper, error) {
	policyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrPolicyLoad, path, err)
	}
	return New(ctx, filepath.Base(path), string(policyBytes), query)
}

// New compiles a policy module held in memory.
func New(ctx context.Context, moduleName, policy, query string) (*Gatekeeper, error) {
	compiler, err := ast.CompileModules(map[string]string{
		moduleName: policy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: compiling module %s: %v", ErrPolicyLoad, moduleName, err)
	}

	pq, err := rego.New(
		rego.Query(query),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: preparing query %q: %v", ErrPolicyLoad, query, err)
	}

	hash := sha256.Sum256([]byte(policy))
	return &Gatekeeper{
		bundleID: hex.EncodeToString(hash[:]),
		query:    pq,
	}, nil
}

// BundleID returns the sha256 of the loaded policy.
func (g *Gatekeeper) BundleID() string {
	return g.bundleID
}

// Review implements action.Gatekeeper.
func (g *Gatekeeper) Review(ctx context.Context, actionID string, factValues map[string]any) (action.Verdict, error) {
	input := map[string]any{
		"action_id": actionID,
		"facts":     factValues,
	}

	resultSet, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return action.Verdict{}, fmt.Errorf("opa: evaluation failed: %w", err)
	}
	if len(resultSet) == 0 || len(resultSet[0].Expressions) == 0 {
		return action.Verdict{}, fmt.Errorf("opa: policy result set is empty or malformed")
	}

	result, ok := resultSet[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return action.Verdict{}, fmt.Errorf("opa: unexpected result format %T", resultSet[0].Expressions[0].Value)
	}

	// Default deny when the result cannot be interpreted.
	verdict := action.Verdict{Allow: false}
	if allow, ok := result["allow"].(bool); ok {
		verdict.Allow = allow
	}
	if !verdict.Allow {
		if reasons, ok := result["deny_reasons"].([]interface{}); ok {
			for _, r := range reasons {
				if reason, ok := r.(string); ok {
					verdict.Reasons = append(verdict.Reasons, reason)
				}
			}
		}
	}
	return verdict, nil
}
