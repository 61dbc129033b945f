//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/kalleberg/dmgcore/dmgcore/backend"
	"github.com/kalleberg/dmgcore/dmgcore/video"
)

// Backend is a stand-in used when the sdl2 build tag is not set (SDL2
// system libraries are frequently unavailable outside a dev machine).
type Backend struct{}

// New creates a stub SDL2 backend; Init always fails.
func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error {
	return fmt.Errorf("sdl2 backend not available: build with -tags sdl2")
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, fmt.Errorf("sdl2 backend not available")
}

func (s *Backend) Cleanup() error {
	return nil
}
