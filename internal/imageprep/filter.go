package imageprep

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultContrast is the contrast factor applied before OCR
const DefaultContrast = 1.5

// Luminance weights of a zero-saturation color matrix.
const (
	lumR = 0.213
	lumG = 0.715
	lumB = 0.072
)

// PreprocessForOCR converts img to grayscale and boosts its contrast.
// img is not modified.
func PreprocessForOCR(img image.Image) image.Image {
	return AdjustContrast(Desaturate(img), DefaultContrast)
}

// Desaturate returns a grayscale copy of img. Alpha is preserved.
func Desaturate(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		y := clamp8(lumR*float64(c.R) + lumG*float64(c.G) + lumB*float64(c.B))
		return color.NRGBA{R: y, G: y, B: y, A: c.A}
	})
}

// AdjustContrast returns a copy of img with the R, G and B channels scaled by
// factor. Alpha is left untouched.
func AdjustContrast(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clamp8(float64(c.R) * factor),
			G: clamp8(float64(c.G) * factor),
			B: clamp8(float64(c.B) * factor),
			A: c.A,
		}
	})
}

func clamp8(v float64) uint8 {
	return uint8(math.Min(255, math.Max(0, math.Round(v))))
}
