package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameBufferShadeTable(t *testing.T) {
	fb := NewFrameBuffer()

	fb.SetPixel(0, 0, 0)
	r, g, b := fb.GetPixel(0, 0)
	assert.Equal(t, [3]byte{0xFF, 0xFF, 0xFF}, [3]byte{r, g, b})

	fb.SetPixel(1, 0, 3)
	r, g, b = fb.GetPixel(1, 0)
	assert.Equal(t, [3]byte{0x00, 0x00, 0x00}, [3]byte{r, g, b})
}

func TestFrameBufferClear(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetPixel(5, 5, 3)
	fb.Clear()

	r, g, b := fb.GetPixel(5, 5)
	assert.Equal(t, [3]byte{0xFF, 0xFF, 0xFF}, [3]byte{r, g, b})
}

func TestFrameBufferBytesLength(t *testing.T) {
	fb := NewFrameBuffer()
	assert.Len(t, fb.Bytes(), FramebufferWidth*FramebufferHeight*3)
}
