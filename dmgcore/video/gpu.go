package video

import (
	"github.com/kalleberg/dmgcore/dmgcore/addr"
	"github.com/kalleberg/dmgcore/dmgcore/bit"
	"github.com/kalleberg/dmgcore/dmgcore/memory"
)

// GpuMode represents the PPU's current rendering stage. These values match
// the STAT register bits 1-0.
type GpuMode int

const (
	hblankMode   GpuMode = 0
	vblankMode   GpuMode = 1
	oamReadMode  GpuMode = 2
	vramReadMode GpuMode = 3
)

// Per-scanline cycle budget: OAM scan, then pixel transfer, then HBlank,
// totalling 456 T-cycles. VBlank spans 10 scanlines at the same budget.
const (
	oamScanCycles  = 80
	vramReadCycles = 172
	hblankCycles   = 204
	scanlineCycles = oamScanCycles + vramReadCycles + hblankCycles

	visibleLines = 144
	totalLines   = 154
)

// GPU drives the DMG's mode FSM (OAM scan -> pixel transfer -> HBlank,
// repeated for 144 visible lines, followed by a 10-line VBlank) and
// renders background, window, and sprite layers into a FrameBuffer.
type GPU struct {
	mmu         *memory.MMU
	framebuffer *FrameBuffer
	oam         *OAM

	bgColorIndex []byte // per-pixel bg/window color index (0-3), for sprite priority

	mode           GpuMode
	line           int
	cycles         int
	scanlineDrawn  bool
	windowLine     int
	displayEnabled bool
}

func NewGpu(mmu *memory.MMU) *GPU {
	return &GPU{
		mmu:            mmu,
		framebuffer:    NewFrameBuffer(),
		oam:            NewOAM(mmu),
		bgColorIndex:   make([]byte, FramebufferWidth*FramebufferHeight),
		mode:           oamReadMode,
		displayEnabled: true,
	}
}

func (g *GPU) GetFrameBuffer() *FrameBuffer {
	return g.framebuffer
}

// Tick advances the PPU by the given number of T-cycles, transitioning
// between modes and rendering a scanline once per line as VRAM-read mode
// is entered.
func (g *GPU) Tick(cycles int) {
	if g.readLCDCVariable(lcdDisplayEnable) == 0 {
		if g.displayEnabled {
			g.onDisplayDisabled()
		}
		g.displayEnabled = false
		return
	}
	g.displayEnabled = true

	g.cycles += cycles

	// A loop, not a single check: a caller ticking by more than one mode's
	// budget in a single call (e.g. frame-skipping, tests) must still walk
	// through every transition in order instead of losing cycles.
	for {
		switch g.mode {
		case oamReadMode:
			if g.cycles < oamScanCycles {
				return
			}
			g.cycles -= oamScanCycles
			g.scanlineDrawn = false
			g.setMode(vramReadMode)
		case vramReadMode:
			if !g.scanlineDrawn {
				g.drawScanline()
				g.scanlineDrawn = true
			}
			if g.cycles < vramReadCycles {
				return
			}
			g.cycles -= vramReadCycles
			g.setMode(hblankMode)
			if g.mmu.ReadBit(statHblankIrq, addr.STAT) {
				g.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		case hblankMode:
			if g.cycles < hblankCycles {
				return
			}
			g.cycles -= hblankCycles
			g.advanceLine()
		case vblankMode:
			if g.cycles < scanlineCycles {
				return
			}
			g.cycles -= scanlineCycles
			g.advanceLine()
		}
	}
}

// onDisplayDisabled handles the LCDC display-enable 1->0 falling edge: the
// screen goes physically blank, so the framebuffer is cleared to white and
// the mode FSM parks at LY=0/HBlank, ready to restart cleanly whenever the
// display is re-enabled.
func (g *GPU) onDisplayDisabled() {
	g.framebuffer.Clear()
	g.cycles = 0
	g.windowLine = 0
	g.setLY(0)
	g.setMode(hblankMode)
}

// advanceLine moves LY to the next scanline, switching between VBlank and
// the visible-line FSM at the boundaries.
func (g *GPU) advanceLine() {
	g.setLY(g.line + 1)

	switch {
	case g.line == visibleLines:
		g.windowLine = 0
		g.setMode(vblankMode)
		g.mmu.RequestInterrupt(addr.VBlankInterrupt)
		if g.mmu.ReadBit(statVblankIrq, addr.STAT) {
			g.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	case g.line == totalLines:
		g.setLY(0)
		g.setMode(oamReadMode)
		if g.mmu.ReadBit(statOamIrq, addr.STAT) {
			g.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	case g.line < visibleLines:
		g.setMode(oamReadMode)
		if g.mmu.ReadBit(statOamIrq, addr.STAT) {
			g.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	}
}

func (g *GPU) drawScanline() {
	g.drawBackground()
	g.drawWindow()
	g.drawSprites()
}

func (g *GPU) drawBackground() {
	lineBase := g.line * FramebufferWidth
	backgroundEnabled := g.readLCDCVariable(bgDisplay) == 1

	if !backgroundEnabled {
		palette := g.mmu.Read(addr.BGP)
		color0 := palette & 0x03
		for x := 0; x < FramebufferWidth; x++ {
			g.framebuffer.SetPixel(x, g.line, color0)
			g.bgColorIndex[lineBase+x] = 0
		}
		return
	}

	tilesAddr, useSigned := g.bgWindowTileArea()
	tileMapAddr := addr.TileMap1
	if g.readLCDCVariable(bgTileMapDisplaySelect) == 0 {
		tileMapAddr = addr.TileMap0
	}

	scrollX := g.mmu.Read(addr.SCX)
	scrollY := g.mmu.Read(addr.SCY)
	mapY := (g.line + int(scrollY)) & 0xFF
	mapRow := (mapY / 8) * 32
	tileRow := mapY % 8

	for x := 0; x < FramebufferWidth; x++ {
		mapX := (x + int(scrollX)) & 0xFF
		mapCol := mapX / 8
		tileCol := mapX % 8

		tileNumber := g.mmu.Read(tileMapAddr + uint16(mapRow+mapCol))
		tileAddr := resolveTileAddr(tilesAddr, useSigned, tileNumber, tileRow)

		low := g.mmu.Read(tileAddr)
		high := g.mmu.Read(tileAddr + 1)
		colorIndex := pixelFromPlanes(low, high, 7-tileCol)

		palette := g.mmu.Read(addr.BGP)
		shade := (palette >> (colorIndex * 2)) & 0x03

		g.framebuffer.SetPixel(x, g.line, shade)
		g.bgColorIndex[lineBase+x] = colorIndex
	}
}

func (g *GPU) drawWindow() {
	if g.readLCDCVariable(windowDisplayEnable) == 0 {
		return
	}

	wy := g.mmu.Read(addr.WY)
	wx := int(g.mmu.Read(addr.WX)) - 7

	if int(wy) > g.line || wx >= FramebufferWidth {
		return
	}

	tilesAddr, useSigned := g.bgWindowTileArea()
	tileMapAddr := addr.TileMap1
	if g.readLCDCVariable(windowTileMapSelect) == 0 {
		tileMapAddr = addr.TileMap0
	}

	mapRow := (g.windowLine / 8) * 32
	tileRow := g.windowLine % 8
	lineBase := g.line * FramebufferWidth

	for x := 0; x < FramebufferWidth; x++ {
		screenX := x
		windowX := screenX - wx
		if windowX < 0 {
			continue
		}

		mapCol := windowX / 8
		tileCol := windowX % 8

		tileNumber := g.mmu.Read(tileMapAddr + uint16(mapRow+mapCol))
		tileAddr := resolveTileAddr(tilesAddr, useSigned, tileNumber, tileRow)

		low := g.mmu.Read(tileAddr)
		high := g.mmu.Read(tileAddr + 1)
		colorIndex := pixelFromPlanes(low, high, 7-tileCol)

		palette := g.mmu.Read(addr.BGP)
		shade := (palette >> (colorIndex * 2)) & 0x03

		g.framebuffer.SetPixel(screenX, g.line, shade)
		g.bgColorIndex[lineBase+screenX] = colorIndex
	}

	g.windowLine++
}

// drawSprites renders sprites overlapping the current scanline using the
// reverse-OAM-index tie-break: sprites are painted from index 39 down to
// 0, so a lower OAM index always ends up on top.
func (g *GPU) drawSprites() {
	if g.readLCDCVariable(spriteDisplayEnable) != 1 {
		return
	}

	lineBase := g.line * FramebufferWidth

	for _, sprite := range g.oam.SpritesForScanline(g.line) {
		objPaletteAddr := addr.OBP0
		if sprite.PaletteOBP1 {
			objPaletteAddr = addr.OBP1
		}

		tileRow := g.line - sprite.Y
		if sprite.FlipY {
			tileRow = sprite.Height - 1 - tileRow
		}

		tileIndex := sprite.TileIndex
		if sprite.Height == 16 {
			tileIndex &^= 0x01
		}
		tileAddr := addr.TileData0 + uint16(int(tileIndex)*16+tileRow*2)

		low := g.mmu.Read(tileAddr)
		high := g.mmu.Read(tileAddr + 1)

		for px := 0; px < 8; px++ {
			screenX := sprite.X + px
			if screenX < 0 || screenX >= FramebufferWidth {
				continue
			}

			bitIndex := 7 - px
			if sprite.FlipX {
				bitIndex = px
			}
			colorIndex := pixelFromPlanes(low, high, bitIndex)
			if colorIndex == 0 {
				continue // sprite color 0 is always transparent
			}

			if sprite.BehindBG && g.bgColorIndex[lineBase+screenX] != 0 {
				continue
			}

			palette := g.mmu.Read(objPaletteAddr)
			shade := (palette >> (colorIndex * 2)) & 0x03
			g.framebuffer.SetPixel(screenX, g.line, shade)
		}
	}
}

// bgWindowTileArea resolves LCDC bit 4 into the tile-data base address and
// whether tile numbers are interpreted as signed (0x9000-relative).
func (g *GPU) bgWindowTileArea() (base uint16, signed bool) {
	if g.readLCDCVariable(bgWindowTileDataSelect) == 1 {
		return addr.TileData0, false
	}
	return addr.TileData2, true
}

func resolveTileAddr(base uint16, signed bool, tileNumber uint8, tileRow int) uint16 {
	if signed {
		offset := int(int8(tileNumber)) * 16
		return uint16(int(base) + offset + tileRow*2)
	}
	return base + uint16(int(tileNumber)*16+tileRow*2)
}

func pixelFromPlanes(low, high byte, bitIndex int) byte {
	idx := uint8(bitIndex)
	pixel := byte(0)
	if bit.IsSet(idx, low) {
		pixel |= 1
	}
	if bit.IsSet(idx, high) {
		pixel |= 2
	}
	return pixel
}

// LCD Stat (Status) Register bit values.
type statFlag = uint8

const (
	statLycIrq       statFlag = 6
	statOamIrq       statFlag = 5
	statVblankIrq    statFlag = 4
	statHblankIrq    statFlag = 3
	statLycCondition statFlag = 2
)

// LCDC (LCD Control) Register bit values.
type lcdcFlag = uint8

const (
	lcdDisplayEnable       lcdcFlag = 7
	windowTileMapSelect    lcdcFlag = 6
	windowDisplayEnable    lcdcFlag = 5
	bgWindowTileDataSelect lcdcFlag = 4
	bgTileMapDisplaySelect lcdcFlag = 3
	spriteSize             lcdcFlag = 2
	spriteDisplayEnable    lcdcFlag = 1
	bgDisplay              lcdcFlag = 0
)

func (g *GPU) readLCDCVariable(flag lcdcFlag) byte {
	if bit.IsSet(flag, g.mmu.Read(addr.LCDC)) {
		return 1
	}
	return 0
}

func (g *GPU) compareLYToLYC() {
	ly := g.mmu.Read(addr.LY)
	lyc := g.mmu.Read(addr.LYC)
	stat := g.mmu.Read(addr.STAT)

	if ly == lyc {
		stat = bit.Set(statLycCondition, stat)
		if bit.IsSet(statLycIrq, stat) {
			g.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		stat = bit.Reset(statLycCondition, stat)
	}

	g.mmu.Write(addr.STAT, stat)
}

func (g *GPU) setMode(mode GpuMode) {
	g.mode = mode
	stat := g.mmu.Read(addr.STAT)
	stat = stat&0xFC | byte(mode)
	g.mmu.Write(addr.STAT, stat)
}

func (g *GPU) setLY(line int) {
	g.line = line
	g.mmu.Write(addr.LY, byte(g.line))
	g.compareLYToLYC()
}
