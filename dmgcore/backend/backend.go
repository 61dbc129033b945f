// Package backend defines the platform-rendering contract the emulator
// drives every frame, plus the three concrete implementations it ships
// (headless, terminal, sdl2).
package backend

import (
	"github.com/kalleberg/dmgcore/dmgcore/memory"
	"github.com/kalleberg/dmgcore/dmgcore/video"
)

// EventKind distinguishes the three things a backend can report per poll.
type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	Quit
)

// InputEvent is a single platform input translated into Game Boy terms.
// Key is only meaningful for KeyDown/KeyUp.
type InputEvent struct {
	Kind EventKind
	Key  memory.JoypadKey
}

// Config configures a backend at Init time. Fields a given backend can't
// honor (e.g. Scale on headless) are silently ignored.
type Config struct {
	Title string
	Scale int
}

// Backend represents one platform target: it renders a framebuffer and
// reports input for the frame that just finished.
type Backend interface {
	// Init prepares the backend for Update calls.
	Init(config Config) error

	// Update renders frame and returns any input collected since the
	// previous call, oldest first.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases platform resources.
	Cleanup() error
}
