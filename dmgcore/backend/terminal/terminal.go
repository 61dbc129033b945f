// Package terminal implements backend.Backend over a tcell screen: two
// vertically-stacked DMG pixels are packed into one terminal cell using
// Unicode half-block glyphs.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/kalleberg/dmgcore/dmgcore/backend"
	"github.com/kalleberg/dmgcore/dmgcore/backend/terminal/render"
	"github.com/kalleberg/dmgcore/dmgcore/memory"
	"github.com/kalleberg/dmgcore/dmgcore/video"
	"golang.org/x/term"
)

const (
	width          = video.FramebufferWidth
	height         = video.FramebufferHeight
	minTermWidth   = width + 2
	minTermHeight  = height/2 + 3
	maxLogLines    = 200
	visibleLogLine = 6
)

// Backend renders the emulator framebuffer to a terminal via tcell.
type Backend struct {
	screen    tcell.Screen
	running   bool
	logBuffer *render.LogBuffer
	eventBuf  []backend.InputEvent
}

// New creates a terminal backend.
func New() *Backend {
	return &Backend{}
}

// Init opens the tcell screen. It first checks the controlling terminal is
// a real tty of adequate size via golang.org/x/term, since tcell itself
// gives a much less actionable error for "too small"/non-tty cases.
func (t *Backend) Init(config backend.Config) error {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if w < minTermWidth || h < minTermHeight {
				return fmt.Errorf("terminal too small: need at least %dx%d, have %dx%d", minTermWidth, minTermHeight, w, h)
			}
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}

	t.screen = screen
	t.running = true
	t.logBuffer = render.NewLogBuffer(maxLogLines)

	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelInfo)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleSignals()

	return nil
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	<-signals
	t.running = false
	t.eventBuf = append(t.eventBuf, backend.InputEvent{Kind: backend.Quit})
}

// Update polls pending key events, renders the frame, and returns any
// input collected since the previous call.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	events := t.eventBuf
	t.eventBuf = nil

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			events = append(events, t.translateKey(ev)...)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	for _, e := range events {
		if e.Kind == backend.Quit {
			t.running = false
		}
	}

	if !t.running {
		return events, nil
	}

	t.render(frame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

var keyMapping = map[tcell.Key]memory.JoypadKey{
	tcell.KeyUp:    memory.JoypadUp,
	tcell.KeyDown:  memory.JoypadDown,
	tcell.KeyLeft:  memory.JoypadLeft,
	tcell.KeyRight: memory.JoypadRight,
	tcell.KeyEnter: memory.JoypadStart,
}

var runeMapping = map[rune]memory.JoypadKey{
	'z': memory.JoypadA,
	'x': memory.JoypadB,
	'a': memory.JoypadStart,
	's': memory.JoypadSelect,
}

// translateKey maps a key event to game input (both a KeyDown and, since
// tcell reports discrete presses rather than up/down pairs, an immediate
// matching KeyUp so buttons don't stay latched).
func (t *Backend) translateKey(ev *tcell.EventKey) []backend.InputEvent {
	if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
		return []backend.InputEvent{{Kind: backend.Quit}}
	}

	if key, ok := keyMapping[ev.Key()]; ok {
		return []backend.InputEvent{{Kind: backend.KeyDown, Key: key}, {Kind: backend.KeyUp, Key: key}}
	}

	if ev.Key() == tcell.KeyRune {
		if key, ok := runeMapping[ev.Rune()]; ok {
			if ev.Rune() == 'q' {
				return []backend.InputEvent{{Kind: backend.Quit}}
			}
			return []backend.InputEvent{{Kind: backend.KeyDown, Key: key}, {Kind: backend.KeyUp, Key: key}}
		}
	}

	return nil
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("terminal too small, need %dx%d", minTermWidth, minTermHeight)
		for i, ch := range msg {
			t.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		return
	}

	t.screen.Clear()
	t.drawGameBoy(frame)
	t.drawLogs(width+2, 1, termWidth-width-2, termHeight)
}

func (t *Backend) drawGameBoy(frame *video.FrameBuffer) {
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			tr, tg, tb := frame.GetPixel(x, y)
			topShade := render.PixelToShade(tr, tg, tb)

			bottomShade := 0
			if y+1 < height {
				br, bg, bb := frame.GetPixel(x, y+1)
				bottomShade = render.PixelToShade(br, bg, bb)
			}

			char := render.GetHalfBlockChar(topShade, bottomShade)
			fg, bg := shadeColors[topShade], shadeColors[bottomShade]
			style := tcell.StyleDefault.Foreground(fg).Background(bg)

			t.screen.SetContent(x, y/2+1, char, nil, style)
		}
	}
}

var shadeColors = []tcell.Color{
	tcell.ColorWhite,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlack,
}

func (t *Backend) drawLogs(startX, startY, w, termHeight int) {
	if w <= 0 || startY >= termHeight {
		return
	}

	available := termHeight - startY - 1
	if available <= 0 {
		return
	}
	if available > visibleLogLine {
		available = visibleLogLine
	}

	for i, entry := range t.logBuffer.GetRecent(available) {
		y := startY + i
		if y >= termHeight-1 {
			break
		}

		line := render.FormatLogEntry(entry)
		if len(line) > w {
			line = line[:w]
		}

		x := startX
		for _, ch := range line {
			if x >= startX+w {
				break
			}
			t.screen.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(tcell.ColorBlue))
			x++
		}
	}
}
