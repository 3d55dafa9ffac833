// Package nfnt provides a Resizer backed by github.com/nfnt/resize, as an
// alternative to the default imaging-based resampler.
package nfnt

import (
	"image"

	"github.com/nfnt/resize"
)

// Resizer resamples with nfnt's Lanczos3 kernel.
type Resizer struct{}

// New returns the nfnt-backed resizer.
func New() *Resizer {
	return &Resizer{}
}

// Resize scales img to width x height.
func (r *Resizer) Resize(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}
