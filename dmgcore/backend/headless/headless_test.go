package headless_test

import (
	"os"
	"testing"

	"github.com/kalleberg/dmgcore/dmgcore/backend"
	"github.com/kalleberg/dmgcore/dmgcore/backend/headless"
	"github.com/kalleberg/dmgcore/dmgcore/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadlessBackendQuitsAfterMaxFrames(t *testing.T) {
	h := headless.New(3, headless.SnapshotConfig{})
	require.NoError(t, h.Init(backend.Config{Title: "Test"}))

	frame := video.NewFrameBuffer()
	for i := 0; i < 3; i++ {
		events, err := h.Update(frame)
		require.NoError(t, err)

		if i < 2 {
			assert.Empty(t, events)
		} else {
			require.Len(t, events, 1)
			assert.Equal(t, backend.Quit, events[0].Kind)
		}
	}

	assert.NoError(t, h.Cleanup())
}

func TestHeadlessBackendSavesSnapshotsAtInterval(t *testing.T) {
	dir := t.TempDir()
	snapshot := headless.SnapshotConfig{Enabled: true, Interval: 2, Directory: dir, ROMName: "game"}
	h := headless.New(4, snapshot)
	require.NoError(t, h.Init(backend.Config{}))

	frame := video.NewFrameBuffer()
	for i := 0; i < 4; i++ {
		_, err := h.Update(frame)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // snapshots at frame 2 and frame 4
}

func TestCreateSnapshotConfigDisabledWhenIntervalIsZero(t *testing.T) {
	cfg, err := headless.CreateSnapshotConfig(0, "", "game.gb")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestCreateSnapshotConfigDerivesROMName(t *testing.T) {
	dir := t.TempDir()
	cfg, err := headless.CreateSnapshotConfig(5, dir, "/roms/tetris.gb")
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "tetris", cfg.ROMName)
}
