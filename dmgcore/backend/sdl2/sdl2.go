//go:build sdl2

// Package sdl2 implements backend.Backend with a real SDL2 window and
// texture blit. Build with -tags sdl2; without the tag, stub.go provides
// a fallback that reports SDL2 is unavailable (SDL2 system libraries
// are often missing on CI/build machines).
package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/kalleberg/dmgcore/dmgcore/backend"
	"github.com/kalleberg/dmgcore/dmgcore/memory"
	"github.com/kalleberg/dmgcore/dmgcore/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	pixelScale   = 3
	windowWidth  = video.FramebufferWidth * pixelScale
	windowHeight = video.FramebufferHeight * pixelScale
	bytesPerPixel = 4
)

// Backend is the real SDL2 renderer.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool

	pixelBuffer []byte
	eventBuf    []backend.InputEvent
}

// New creates an SDL2 backend.
func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initializing SDL2: %w", err)
	}

	title := config.Title
	if title == "" {
		title = "dmgcore"
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		windowWidth, windowHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("creating window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("creating renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth, video.FramebufferHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("creating texture: %w", err)
	}
	s.texture = texture

	s.pixelBuffer = make([]byte, video.FramebufferWidth*video.FramebufferHeight*bytesPerPixel)
	s.running = true

	slog.Info("sdl2 backend initialized", "width", windowWidth, "height", windowHeight)
	return nil
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	s.eventBuf = s.eventBuf[:0]

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.eventBuf = append(s.eventBuf, s.handleEvent(ev)...)
	}

	if !s.running {
		return s.eventBuf, nil
	}

	s.renderFrame(frame)

	return s.eventBuf, nil
}

func (s *Backend) Cleanup() error {
	slog.Info("cleaning up sdl2 backend")
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

func (s *Backend) handleEvent(evt sdl.Event) []backend.InputEvent {
	switch e := evt.(type) {
	case *sdl.QuitEvent:
		s.running = false
		return []backend.InputEvent{{Kind: backend.Quit}}
	case *sdl.KeyboardEvent:
		if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
			s.running = false
			return []backend.InputEvent{{Kind: backend.Quit}}
		}
		key, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return nil
		}
		if e.Type == sdl.KEYDOWN {
			return []backend.InputEvent{{Kind: backend.KeyDown, Key: key}}
		}
		return []backend.InputEvent{{Kind: backend.KeyUp, Key: key}}
	}
	return nil
}

var keyMapping = map[sdl.Keycode]memory.JoypadKey{
	sdl.K_UP:     memory.JoypadUp,
	sdl.K_DOWN:   memory.JoypadDown,
	sdl.K_LEFT:   memory.JoypadLeft,
	sdl.K_RIGHT:  memory.JoypadRight,
	sdl.K_RETURN: memory.JoypadStart,
	sdl.K_a:      memory.JoypadA,
	sdl.K_s:      memory.JoypadB,
	sdl.K_q:      memory.JoypadSelect,
	sdl.K_w:      memory.JoypadStart,
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) {
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			r, g, b := frame.GetPixel(x, y)
			idx := (y*video.FramebufferWidth + x) * bytesPerPixel
			// RGBA8888, little-endian: alpha first byte, red last byte.
			s.pixelBuffer[idx] = 0xFF
			s.pixelBuffer[idx+1] = b
			s.pixelBuffer[idx+2] = g
			s.pixelBuffer[idx+3] = r
		}
	}

	s.texture.Update(nil, unsafe.Pointer(&s.pixelBuffer[0]), video.FramebufferWidth*bytesPerPixel)
	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}
