// Package imaging prepares plate photographs for text recognition.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// binarizeThreshold is the channel-average cutoff between black and white.
const binarizeThreshold = 120

// Binarize decodes src, applies a global binary threshold and re-encodes
// the result as JPEG at the original dimensions. Every pixel whose channel
// average exceeds the threshold becomes pure white, everything else pure
// black, which sharpens text edges for recognition.
func Binarize(src []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out := binarize(img, binarizeThreshold)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			avg := uint8((r + g + bb) / 3 >> 8)
			var v uint8
			if avg > threshold {
				v = 255
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
