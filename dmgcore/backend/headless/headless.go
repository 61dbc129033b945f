// Package headless implements backend.Backend for batch runs and tests:
// no window, no input, just frame counting and optional PNG snapshots.
package headless

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kalleberg/dmgcore/dmgcore/backend"
	"github.com/kalleberg/dmgcore/dmgcore/video"
)

// SnapshotConfig controls periodic PNG dumps of the framebuffer.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int
	Directory string
	ROMName   string
}

// CreateSnapshotConfig builds a SnapshotConfig from CLI-style parameters,
// creating the output directory (a temp one if none is given).
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	cfg := SnapshotConfig{Enabled: interval > 0, Interval: interval}
	if !cfg.Enabled {
		return cfg, nil
	}

	if directory == "" {
		dir, err := os.MkdirTemp("", "dmgcore-snapshots-*")
		if err != nil {
			return cfg, fmt.Errorf("creating snapshot directory: %w", err)
		}
		cfg.Directory = dir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return cfg, fmt.Errorf("creating snapshot directory: %w", err)
		}
		cfg.Directory = directory
	}

	cfg.ROMName = strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	return cfg, nil
}

// Backend runs for a fixed number of frames then reports Quit.
type Backend struct {
	maxFrames  int
	frameCount int
	snapshot   SnapshotConfig
}

// New creates a headless backend that quits after maxFrames Update calls.
func New(maxFrames int, snapshot SnapshotConfig) *Backend {
	return &Backend{maxFrames: maxFrames, snapshot: snapshot}
}

func (h *Backend) Init(config backend.Config) error {
	slog.Info("running headless", "frames", h.maxFrames,
		"snapshot_interval", h.snapshot.Interval, "snapshot_dir", h.snapshot.Directory)
	return nil
}

func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	h.frameCount++

	if h.snapshot.Enabled && h.frameCount%h.snapshot.Interval == 0 {
		if err := h.saveSnapshot(frame); err != nil {
			slog.Error("saving snapshot", "frame", h.frameCount, "error", err)
		}
	}

	if h.frameCount%10 == 0 {
		slog.Info("frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount >= h.maxFrames {
		if h.snapshot.Enabled && h.frameCount%h.snapshot.Interval != 0 {
			if err := h.saveSnapshot(frame); err != nil {
				slog.Error("saving final snapshot", "error", err)
			}
		}
		slog.Info("headless run complete", "frames", h.frameCount)
		return []backend.InputEvent{{Kind: backend.Quit}}, nil
	}

	return nil, nil
}

func (h *Backend) Cleanup() error { return nil }

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) error {
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			r, g, b := frame.GetPixel(x, y)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
		}
	}

	name := fmt.Sprintf("%s_frame_%d.png", h.snapshot.ROMName, h.frameCount)
	path := filepath.Join(h.snapshot.Directory, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	return png.Encode(f, img)
}
