// Package render holds rendering helpers shared by the terminal backend.
package render

import "github.com/lucasb-eyer/go-colorful"

// shadePalette holds the four DMG grayscale shades as colorful.Color, used
// to find the nearest shade for an arbitrary RGB triplet via Lab distance.
var shadePalette = []colorful.Color{
	colorful.Color{R: 1.0, G: 1.0, B: 1.0},       // white
	colorful.Color{R: 0.75, G: 0.75, B: 0.75},    // light gray
	colorful.Color{R: 0.375, G: 0.375, B: 0.375}, // dark gray
	colorful.Color{R: 0, G: 0, B: 0},             // black
}

// PixelToShade maps an RGB triplet to the nearest of the 4 DMG shades
// (0 = white, 3 = black) using perceptual (Lab) distance via go-colorful.
func PixelToShade(r, g, b byte) int {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}

	best, bestDist := 0, -1.0
	for i, shade := range shadePalette {
		d := c.DistanceLab(shade)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// GetHalfBlockChar returns the half-block glyph that best represents a
// vertically stacked pair of shades within one terminal cell.
func GetHalfBlockChar(topShade, bottomShade int) rune {
	switch {
	case topShade == bottomShade:
		return '█'
	case topShade == 0 && bottomShade != 0:
		return '▄'
	case topShade != 0 && bottomShade == 0:
		return '▀'
	default:
		return '▀'
	}
}
