package hostinfo

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostname(t *testing.T) {
	src := Hostname()
	assert.Equal(t, "hostname", src.Describe().Key)

	v, err := src.Collect(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}

func TestOperatingSystem(t *testing.T) {
	v, err := OperatingSystem().Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runtime.GOOS, v)
}

func TestCPUCount(t *testing.T) {
	v, err := CPUCount().Collect(context.Background())
	require.NoError(t, err)
	assert.Greater(t, v.(int), 0)
}

func TestReadDMI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sys_vendor"), []byte("VMware, Inc.\n"), 0o644))

	orig := dmiPath
	dmiPath = dir
	t.Cleanup(func() { dmiPath = orig })

	t.Run("reads and trims the field", func(t *testing.T) {
		v, err := SystemManufacturer().Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "VMware, Inc.", v)
	})

	t.Run("missing field reads as unknown", func(t *testing.T) {
		v, err := SystemModel().Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "unknown", v)
	})
}

func TestAllKeysAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, src := range All() {
		key := src.Describe().Key
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
	assert.Len(t, seen, 7)
}
