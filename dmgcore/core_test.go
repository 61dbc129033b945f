package dmgcore

import (
	"os"
	"testing"

	"github.com/kalleberg/dmgcore/dmgcore/memory"
	"github.com/kalleberg/dmgcore/dmgcore/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasPowerOnState(t *testing.T) {
	e := New()

	assert.Equal(t, uint16(0x0100), e.GetCPU().PC())
	assert.True(t, e.GetCPU().IME())
	assert.Equal(t, uint64(0), e.FrameCount())
}

func TestNewWithFileRejectsMissingPath(t *testing.T) {
	_, err := NewWithFile("../does/not/exist.gb")
	require.Error(t, err)
}

func TestNewWithFileRejectsTooShortHeader(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/short.gb"
	require.NoError(t, os.WriteFile(path, make([]byte, 16), 0o644))

	_, err := NewWithFile(path)
	assert.Error(t, err)
}

func TestStepFrameAdvancesFrameCount(t *testing.T) {
	e := New()

	e.StepFrame()

	assert.Equal(t, uint64(1), e.FrameCount())
}

func TestStepFrameProducesAFullFramebuffer(t *testing.T) {
	e := New()

	e.StepFrame()
	fb := e.GetCurrentFrame()

	require.NotNil(t, fb)
	assert.Len(t, fb.Bytes(), video.FramebufferWidth*video.FramebufferHeight*3)
}

func TestStepFrameConsumesExactlyOneFrameOfCycles(t *testing.T) {
	e := New()
	startPC := e.GetCPU().PC()

	e.StepFrame()

	// The cartridge is blank, so the CPU executes the zero-valued bytes (NOPs)
	// in the ROM window. Each NOP is one M-cycle (4 T-cycles), so exactly one
	// frame of cycles advances PC by cyclesPerFrame/4.
	assert.Equal(t, startPC+uint16(cyclesPerFrame/4), e.GetCPU().PC())
}

func TestHandleKeyPressAndReleaseDoNotPanic(t *testing.T) {
	e := New()

	assert.NotPanics(t, func() {
		e.HandleKeyPress(memory.JoypadRight)
		e.HandleKeyRelease(memory.JoypadRight)
	})
}
