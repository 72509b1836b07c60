package images

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const goldenAngle = 137.50776405003785

// Fixed colors for non-class overlays.
var (
	ColorCanvas  = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
	ColorHover   = color.RGBA{R: 0xff, G: 0xd6, B: 0x0a, A: 0xff}
	ColorDrawing = color.RGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0xff}
	ColorCaption = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorUnknown = color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
)

// ClassColor returns a stable color for class i. Consecutive ids are spread
// around the hue circle by the golden angle.
func ClassColor(i int) color.RGBA {
	if i < 0 {
		return colorUnknown
	}
	c := classHSV(i)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// ClassHex returns ClassColor as a "#rrggbb" string for Tk widgets.
func ClassHex(i int) string {
	if i < 0 {
		c, _ := colorful.MakeColor(colorUnknown)
		return c.Hex()
	}
	return classHSV(i).Hex()
}

func classHSV(i int) colorful.Color {
	h := math.Mod(float64(i)*goldenAngle, 360)
	return colorful.Hsv(h, 0.75, 0.95).Clamped()
}
