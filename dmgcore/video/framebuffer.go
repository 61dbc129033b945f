package video

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	bytesPerPixel     = 3
)

// shadeTable maps a 2-bit DMG color index to its RGB triplet, darkest last.
var shadeTable = [4][3]byte{
	{0xFF, 0xFF, 0xFF},
	{0xC0, 0xC0, 0xC0},
	{0x60, 0x60, 0x60},
	{0x00, 0x00, 0x00},
}

// FrameBuffer is a 160x144 RGB image, 3 bytes per pixel, matching the
// literal DMG 4-shade grayscale palette.
type FrameBuffer struct {
	pixels []byte
}

// NewFrameBuffer creates a framebuffer initialized to the lightest shade.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{
		pixels: make([]byte, FramebufferWidth*FramebufferHeight*bytesPerPixel),
	}
	fb.Clear()
	return fb
}

// SetPixel stores the shade (0-3) at (x, y) as its RGB triplet.
func (fb *FrameBuffer) SetPixel(x, y int, colorIndex byte) {
	offset := (y*FramebufferWidth + x) * bytesPerPixel
	shade := shadeTable[colorIndex&0x03]
	fb.pixels[offset] = shade[0]
	fb.pixels[offset+1] = shade[1]
	fb.pixels[offset+2] = shade[2]
}

// GetPixel returns the RGB triplet stored at (x, y).
func (fb *FrameBuffer) GetPixel(x, y int) (r, g, b byte) {
	offset := (y*FramebufferWidth + x) * bytesPerPixel
	return fb.pixels[offset], fb.pixels[offset+1], fb.pixels[offset+2]
}

// Clear resets every pixel to the lightest shade (index 0), matching the
// screen state of a powered-off LCD.
func (fb *FrameBuffer) Clear() {
	for i := 0; i < len(fb.pixels); i += bytesPerPixel {
		fb.pixels[i] = shadeTable[0][0]
		fb.pixels[i+1] = shadeTable[0][1]
		fb.pixels[i+2] = shadeTable[0][2]
	}
}

// Bytes returns the raw 160x144x3 RGB buffer.
func (fb *FrameBuffer) Bytes() []byte {
	return fb.pixels
}
