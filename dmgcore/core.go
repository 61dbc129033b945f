// Package dmgcore is the root package of the emulator core: it wires the
// CPU, MMU, and GPU together into the frame-stepping sequencer frontends
// drive.
package dmgcore

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kalleberg/dmgcore/dmgcore/cpu"
	"github.com/kalleberg/dmgcore/dmgcore/memory"
	"github.com/kalleberg/dmgcore/dmgcore/video"
)

// cyclesPerFrame is the number of T-cycles in one DMG frame: 154 scanlines
// of 456 T-cycles each.
const cyclesPerFrame = 154 * 456

// Emulator is the root struct and entry point for running the emulation.
// It is strictly single-threaded and synchronous: every public method runs
// to completion without blocking or suspending.
type Emulator struct {
	cpu *cpu.CPU
	gpu *video.GPU
	mem *memory.MMU

	frameCount uint64
}

func (e *Emulator) init(mem *memory.MMU) {
	e.cpu = cpu.New(mem)
	e.gpu = video.NewGpu(mem)
	e.mem = mem
}

// New creates a new emulator instance with no cartridge loaded.
func New() *Emulator {
	e := &Emulator{}
	e.init(memory.NewWithCartridge(memory.NewCartridge()))
	return e
}

// NewWithFile creates a new emulator instance and loads the ROM file at
// path into it. Returns an error without starting emulation if the file
// can't be read or the cartridge header names an unsupported MBC.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file: %w", err)
	}

	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	slog.Info("loaded ROM", "title", cart.Title(), "size", len(data))

	e := &Emulator{}
	e.init(memory.NewWithCartridge(cart))
	return e, nil
}

// StepFrame runs the CPU, timer, and PPU forward by one frame (70224
// T-cycles), the cooperative sequencer the spec calls step_frame. It steps
// whole instructions until at least that many T-cycles have run, so the last
// instruction can overrun the frame boundary; the overrun is not carried
// into the next frame.
// Within the loop each instruction's CPU write is immediately visible to
// the timer/PPU tick that follows it, and interrupt flags they raise are
// honored before the next fetch.
func (e *Emulator) StepFrame() {
	total := 0
	for total < cyclesPerFrame {
		mCycles := e.cpu.Step()
		tCycles := mCycles * 4

		e.mem.Tick(tCycles)
		e.gpu.Tick(tCycles)

		total += tCycles
	}
	e.frameCount++
}

// GetCurrentFrame returns the framebuffer as it stood after the last
// StepFrame call.
func (e *Emulator) GetCurrentFrame() *video.FrameBuffer {
	return e.gpu.GetFrameBuffer()
}

func (e *Emulator) HandleKeyPress(key memory.JoypadKey) {
	e.mem.HandleKeyPress(key)
}

func (e *Emulator) HandleKeyRelease(key memory.JoypadKey) {
	e.mem.HandleKeyRelease(key)
}

func (e *Emulator) GetCPU() *cpu.CPU {
	return e.cpu
}

func (e *Emulator) GetMMU() *memory.MMU {
	return e.mem
}

func (e *Emulator) FrameCount() uint64 {
	return e.frameCount
}
