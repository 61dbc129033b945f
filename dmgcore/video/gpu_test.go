package video

import (
	"testing"

	"github.com/kalleberg/dmgcore/dmgcore/addr"
	"github.com/kalleberg/dmgcore/dmgcore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGPU() (*GPU, *memory.MMU) {
	mmu := memory.New()
	mmu.Write(addr.LCDC, 0x91) // LCD on, BG on, unsigned tile data, tile map 0
	gpu := NewGpu(mmu)
	return gpu, mmu
}

func TestGPUModeTransitionsWithinOneScanline(t *testing.T) {
	gpu, mmu := newTestGPU()

	assert.Equal(t, oamReadMode, gpu.mode)

	gpu.Tick(oamScanCycles)
	assert.Equal(t, vramReadMode, gpu.mode)
	assert.Equal(t, byte(vramReadMode), mmu.Read(addr.STAT)&0x03)

	gpu.Tick(vramReadCycles)
	assert.Equal(t, hblankMode, gpu.mode)

	gpu.Tick(hblankCycles)
	assert.Equal(t, oamReadMode, gpu.mode)
	assert.Equal(t, byte(1), mmu.Read(addr.LY))
}

func TestGPUEntersVBlankAtLine144AndRequestsInterrupt(t *testing.T) {
	gpu, mmu := newTestGPU()

	for line := 0; line < 144; line++ {
		gpu.Tick(scanlineCycles)
	}

	assert.Equal(t, vblankMode, gpu.mode)
	assert.Equal(t, byte(144), mmu.Read(addr.LY))
	assert.True(t, mmu.ReadBit(0, addr.IF)) // VBlank interrupt flag set
}

func TestGPUVBlankLastsTenLinesThenWrapsToOAM(t *testing.T) {
	gpu, mmu := newTestGPU()

	for line := 0; line < 144; line++ {
		gpu.Tick(scanlineCycles)
	}
	for line := 0; line < 10; line++ {
		gpu.Tick(scanlineCycles)
	}

	assert.Equal(t, oamReadMode, gpu.mode)
	assert.Equal(t, byte(0), mmu.Read(addr.LY))
}

func TestGPULYCComparisonSetsStatAndRequestsInterrupt(t *testing.T) {
	gpu, mmu := newTestGPU()
	mmu.Write(addr.LYC, 1)
	mmu.Write(addr.STAT, 0x40) // enable LYC=LY interrupt

	gpu.Tick(scanlineCycles) // line 0 -> 1

	require.Equal(t, byte(1), mmu.Read(addr.LY))
	assert.True(t, mmu.ReadBit(2, addr.STAT))
	assert.True(t, mmu.ReadBit(1, addr.IF)) // LCD STAT interrupt flag
}

func TestGPUDrawsBackgroundPixelsFromTileData(t *testing.T) {
	gpu, mmu := newTestGPU()

	// tile 0 in the unsigned tile data area, row 0 all color-index-3 pixels
	mmu.Write(0x8000, 0xFF)
	mmu.Write(0x8001, 0xFF)
	mmu.Write(addr.BGP, 0b11_10_01_00) // identity-ish palette mapping

	gpu.Tick(oamScanCycles)
	gpu.Tick(vramReadCycles)

	r, g, b := gpu.GetFrameBuffer().GetPixel(0, 0)
	assert.Equal(t, [3]byte{0x00, 0x00, 0x00}, [3]byte{r, g, b}) // shade for index 3
}
