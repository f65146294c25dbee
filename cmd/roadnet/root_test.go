package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LdDl/roadnet"
)

func TestParseModes(t *testing.T) {
	modes, err := parseModes([]string{"foot", "car"})
	require.NoError(t, err)
	assert.Equal(t, []roadnet.Mode{roadnet.MODE_WALK, roadnet.MODE_CAR}, modes)

	_, err = parseModes(nil)
	assert.ErrorIs(t, err, roadnet.ErrNoModes)

	_, err = parseModes([]string{"walk", "plane"})
	assert.ErrorIs(t, err, roadnet.ErrUnknownMode)
}

func TestResolveConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(fname, []byte("enable_car: false\ncollapse_distance_m: 5\nflush_threshold: 10\n"), 0o644))

	require.NoError(t, extractCmd.Flags().Set("config", fname))
	require.NoError(t, extractCmd.Flags().Set("flush-threshold", "20"))
	defer func() {
		configPath = ""
		cfg = roadnet.DefaultConfig()
	}()

	resolved, err := resolveConfig(extractCmd)
	require.NoError(t, err)
	assert.False(t, resolved.EnableCar)
	assert.True(t, resolved.EnableWalk)
	assert.Equal(t, 5.0, resolved.CollapseDistance)
	// explicit flag wins over the file
	assert.Equal(t, 20, resolved.FlushThreshold)
}
