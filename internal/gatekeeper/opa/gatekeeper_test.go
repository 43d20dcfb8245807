package opa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPolicy = `package systune

import rego.v1

elevated_actions := {"disable_telemetry", "harden_firewall"}

deny_reasons contains "maintenance window is closed" if {
	not input.facts.maintenance_window
}

deny_reasons contains "process is not elevated" if {
	elevated_actions[input.action_id]
	not input.facts.is_elevated
}

default allow := false

allow if count(deny_reasons) == 0

response := {
	"allow": allow,
	"deny_reasons": deny_reasons,
}
`

func newTestGatekeeper(t *testing.T) *Gatekeeper {
	t.Helper()
	g, err := New(context.Background(), "actions.rego", testPolicy, "data.systune.response")
	require.NoError(t, err)
	return g
}

func TestReview(t *testing.T) {
	g := newTestGatekeeper(t)

	tests := []struct {
		name        string
		actionID    string
		facts       map[string]any
		wantAllow   bool
		wantReasons []string
	}{
		{
			name:      "allowed inside the window with elevation",
			actionID:  "disable_telemetry",
			facts:     map[string]any{"maintenance_window": true, "is_elevated": true},
			wantAllow: true,
		},
		{
			name:        "denied outside the window",
			actionID:    "trim_visual_effects",
			facts:       map[string]any{"maintenance_window": false, "is_elevated": true},
			wantAllow:   false,
			wantReasons: []string{"maintenance window is closed"},
		},
		{
			name:        "privileged action denied without elevation",
			actionID:    "harden_firewall",
			facts:       map[string]any{"maintenance_window": true, "is_elevated": false},
			wantAllow:   false,
			wantReasons: []string{"process is not elevated"},
		},
		{
			name:      "unprivileged action allowed without elevation",
			actionID:  "trim_visual_effects",
			facts:     map[string]any{"maintenance_window": true, "is_elevated": false},
			wantAllow: true,
		},
		{
			name:        "missing facts deny by default",
			actionID:    "disable_telemetry",
			facts:       map[string]any{},
			wantAllow:   false,
			wantReasons: []string{"maintenance window is closed", "process is not elevated"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := g.Review(context.Background(), tt.actionID, tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, verdict.Allow)
			if !tt.wantAllow {
				assert.ElementsMatch(t, tt.wantReasons, verdict.Reasons)
			}
		})
	}
}

func TestNewFromFile(t *testing.T) {
	t.Run("missing file fails with ErrPolicyLoad", func(t *testing.T) {
		_, err := NewFromFile(context.Background(), "does/not/exist.rego", "data.systune.response")
		assert.ErrorIs(t, err, ErrPolicyLoad)
	})
}

func TestNewRejectsBadPolicy(t *testing.T) {
	_, err := New(context.Background(), "broken.rego", "package systune\n\nallow if {", "data.systune.response")
	assert.ErrorIs(t, err, ErrPolicyLoad)
}

func TestBundleIDIsStable(t *testing.T) {
	a := newTestGatekeeper(t)
	b := newTestGatekeeper(t)
	assert.Equal(t, a.BundleID(), b.BundleID())
	assert.Len(t, a.BundleID(), 64)
}
