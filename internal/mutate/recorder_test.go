package mutate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderTracksMutations(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.SetSetting(ctx, "privacy", "telemetry_level", "0"))
	require.NoError(t, r.SetServiceStartup(ctx, "telemetry", StartupDisabled))
	require.NoError(t, r.SetFirewallProfile(ctx, "public", true))
	require.NoError(t, r.SetResolver(ctx, []string{"1.1.1.1"}))
	require.NoError(t, r.FlushResolverCache(ctx))

	calls := r.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, Call{Op: "set_setting", Target: "privacy/telemetry_level", Value: "0"}, calls[0])
	assert.Equal(t, 1, r.CallCount("flush_resolver_cache", ""))

	value, err := r.GetSetting(ctx, "privacy", "telemetry_level")
	require.NoError(t, err)
	assert.Equal(t, "0", value)
}

func TestRecorderDefaults(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	mode, err := r.GetServiceStartup(ctx, "never_touched")
	require.NoError(t, err)
	assert.Equal(t, StartupAutomatic, mode)

	enabled, err := r.GetFirewallProfile(ctx, "never_touched")
	require.NoError(t, err)
	assert.True(t, enabled)

	servers, err := r.GetResolver(ctx)
	require.NoError(t, err)
	assert.Empty(t, servers)
}

func TestRecorderFailOn(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	cause := errors.New("access denied")

	t.Run("exact target", func(t *testing.T) {
		r.FailOn("set_service_startup", "telemetry", cause)

		err := r.SetServiceStartup(ctx, "telemetry", StartupDisabled)
		assert.ErrorIs(t, err, cause)
		assert.NoError(t, r.SetServiceStartup(ctx, "other", StartupManual))
	})

	t.Run("wildcard target", func(t *testing.T) {
		r.FailOn("set_setting", "", cause)

		err := r.SetSetting(ctx, "any", "thing", "1")
		assert.ErrorIs(t, err, cause)
	})
}

func TestJournalRecordOnce(t *testing.T) {
	j := NewJournal()

	j.RecordOnce("setting:privacy/telemetry_level", "3")
	j.RecordOnce("setting:privacy/telemetry_level", "0") // second write must not stick

	v, ok := j.Lookup("setting:privacy/telemetry_level")
	require.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, 1, j.Len())

	_, ok = j.Lookup("never_recorded")
	assert.False(t, ok)
}
