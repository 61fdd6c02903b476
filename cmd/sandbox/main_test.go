package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/sentinel/prefabs"
	"github.com/milk9111/sentinel/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPrefabDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := prefabs.Dir
	prefabs.Dir = dir
	t.Cleanup(func() { prefabs.Dir = prev })
	return dir
}

func TestCheckEmbeddedPrefabs(t *testing.T) {
	withPrefabDir(t)
	require.NoError(t, check())
}

func TestCheckReportsBrokenOverride(t *testing.T) {
	dir := withPrefabDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "archer.yaml"), []byte("name: archer\nkind: ranged\nhealth:\n  max: 10\n"), 0o644))

	err := check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestLoopStopsAtTickBudget(t *testing.T) {
	withPrefabDir(t)

	s, err := sim.New("")
	require.NoError(t, err)

	changes := make(chan prefabs.Change)
	require.NoError(t, loop(context.Background(), s, runOptions{ticks: 30}, changes))
	assert.Equal(t, uint64(30), s.Tick())
}

func TestLoopStopsOnCancel(t *testing.T) {
	withPrefabDir(t)

	s, err := sim.New("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = loop(ctx, s, runOptions{}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), s.Tick())
}

func TestRunWithoutWatch(t *testing.T) {
	withPrefabDir(t)
	require.NoError(t, run(context.Background(), runOptions{ticks: 5}))
}
