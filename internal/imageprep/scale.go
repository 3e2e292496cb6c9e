package imageprep

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension is the longest side fed to the OCR engine
const DefaultMaxDimension = 640

// ErrInvalidDimensions is returned when a source or target size is not positive
var ErrInvalidDimensions = errors.New("invalid image dimensions")

// ScaleImage returns a copy of img whose longer side equals maxDimension,
// keeping the aspect ratio. Square images become maxDimension on both sides.
// If scaling fails the failure is logged and img is returned unchanged.
func ScaleImage(img image.Image, maxDimension int) image.Image {
	scaled, err := scale(img, maxDimension)
	if err != nil {
		slog.Error("Scale image is unsuccessful, try to resize it", "max_dimension", maxDimension, "error", err)
		return img
	}
	return scaled
}

// targetSize computes the scaled width and height, truncating the shorter side
func targetSize(width, height, maxDimension int) (int, int) {
	switch {
	case height > width:
		return int(float32(maxDimension) * float32(width) / float32(height)), maxDimension
	case width > height:
		return maxDimension, int(float32(maxDimension) * float32(height) / float32(width))
	default:
		return maxDimension, maxDimension
	}
}

func scale(img image.Image, maxDimension int) (out image.Image, err error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("source %dx%d: %w", b.Dx(), b.Dy(), ErrInvalidDimensions)
	}

	w, h := targetSize(b.Dx(), b.Dy(), maxDimension)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("target %dx%d: %w", w, h, ErrInvalidDimensions)
	}

	// Allocation of a huge target panics inside the image package
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("scaling to %dx%d: %v", w, h, r)
		}
	}()

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// Unfiltered, like a plain bitmap resample
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}
