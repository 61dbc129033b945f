package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kalleberg/dmgcore/dmgcore"
	"github.com/kalleberg/dmgcore/dmgcore/backend"
	"github.com/kalleberg/dmgcore/dmgcore/backend/headless"
	"github.com/kalleberg/dmgcore/dmgcore/backend/sdl2"
	"github.com/kalleberg/dmgcore/dmgcore/backend/terminal"
	"github.com/kalleberg/dmgcore/dmgcore/timing"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Description = "A Game Boy (DMG) emulator core"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Rendering backend: terminal, sdl2, headless",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Shorthand for --backend headless",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run before exiting (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save a PNG snapshot every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory for headless snapshots (default: a temp directory)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn, or error",
			Value: "info",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if err := configureLogging(c.String("log-level")); err != nil {
		return err
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := dmgcore.NewWithFile(romPath)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	backendName := c.String("backend")
	if c.Bool("headless") {
		backendName = "headless"
	}

	b, err := selectBackend(backendName, c, romPath)
	if err != nil {
		return err
	}

	return runLoop(emu, b, c)
}

func selectBackend(name string, c *cli.Context, romPath string) (backend.Backend, error) {
	switch name {
	case "headless":
		if c.Int("frames") <= 0 {
			return nil, errors.New("headless backend requires --frames with a positive value")
		}
		snapshot, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, err
		}
		return headless.New(c.Int("frames"), snapshot), nil
	case "sdl2":
		return sdl2.New(), nil
	case "terminal":
		return terminal.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func runLoop(emu *dmgcore.Emulator, b backend.Backend, c *cli.Context) error {
	if err := b.Init(backend.Config{Title: "dmgcore"}); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer b.Cleanup()

	maxFrames := c.Int("frames")

	// Headless runs want to finish as fast as possible; interactive
	// backends pace themselves to the real DMG frame rate.
	var limiter timing.Limiter = timing.NewNoOpLimiter()
	if ticker, ok := interactiveLimiter(c); ok {
		limiter = ticker
		defer ticker.Stop()
	}

	for frame := 0; maxFrames <= 0 || frame < maxFrames; frame++ {
		emu.StepFrame()
		limiter.WaitForNextFrame()

		events, err := b.Update(emu.GetCurrentFrame())
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}

		quit := false
		for _, ev := range events {
			switch ev.Kind {
			case backend.Quit:
				quit = true
			case backend.KeyDown:
				emu.HandleKeyPress(ev.Key)
			case backend.KeyUp:
				emu.HandleKeyRelease(ev.Key)
			}
		}
		if quit {
			break
		}
	}

	return nil
}

// interactiveLimiter returns a real-time frame limiter for every backend
// except headless, which should run as fast as possible.
func interactiveLimiter(c *cli.Context) (*timing.TickerLimiter, bool) {
	backendName := c.String("backend")
	if c.Bool("headless") {
		backendName = "headless"
	}
	if backendName == "headless" {
		return nil, false
	}
	return timing.NewTickerLimiter(), true
}

func configureLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}
