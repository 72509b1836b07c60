package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes for a Tk photo. Fast compression is
// used since the canvas is re-encoded on every pointer move. Errors yield nil.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return nil
	}
	return buf.Bytes()
}

// Placeholder returns a flat image used before any dataset image is open.
func Placeholder(w, h int, c color.Color) image.Image {
	return imaging.New(max(1, w), max(1, h), c)
}
