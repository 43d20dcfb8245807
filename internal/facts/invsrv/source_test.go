package invsrv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systune-io/systune/internal/facts/invsrv_mock"
)

func TestCollect(t *testing.T) {
	server := invsrv_mock.NewServer()
	defer server.Close()
	server.SetFact("test-host", "asset_tag", "TST-0001")

	src := New("asset_tag", server.URL(), "test-host", time.Minute, "Asset tag")
	assert.Equal(t, "asset_tag", src.Describe().Key)

	v, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TST-0001", v)
}

func TestCollectCachesWithinTTL(t *testing.T) {
	server := invsrv_mock.NewServer()
	defer server.Close()
	server.SetFact("test-host", "patch_ring", "canary")

	src := New("patch_ring", server.URL(), "test-host", time.Minute, "Patch ring")

	for i := 0; i < 3; i++ {
		v, err := src.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "canary", v)
	}
	assert.Equal(t, 1, server.Hits(), "repeated collects within the TTL must hit the cache")
}

func TestCollectRefetchesAfterExpiry(t *testing.T) {
	server := invsrv_mock.NewServer()
	defer server.Close()
	server.SetFact("test-host", "patch_ring", "canary")

	src := New("patch_ring", server.URL(), "test-host", time.Nanosecond, "Patch ring")

	_, err := src.Collect(context.Background())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	server.SetFact("test-host", "patch_ring", "stable")
	v, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stable", v)
	assert.Equal(t, 2, server.Hits())
}

func TestCollectErrors(t *testing.T) {
	t.Run("unknown fact returns an error", func(t *testing.T) {
		server := invsrv_mock.NewServer()
		defer server.Close()

		src := New("missing", server.URL(), "test-host", time.Minute, "Missing fact")
		_, err := src.Collect(context.Background())
		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("unreachable service returns an error", func(t *testing.T) {
		src := New("asset_tag", "http://127.0.0.1:1", "test-host", time.Minute, "Asset tag")
		_, err := src.Collect(context.Background())
		assert.Error(t, err)
	})
}
