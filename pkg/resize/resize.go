// Package resize abstracts the high-quality resampler used for prescaling
// and for feature-map downsampling, so the analysis core carries no direct
// dependency on one resampling library.
package resize

import (
	"image"

	"github.com/disintegration/imaging"
)

// Resizer scales an image to the given dimensions.
type Resizer interface {
	Resize(img image.Image, width, height int) image.Image
}

// Lanczos is the default Resizer, backed by disintegration/imaging's
// Lanczos filter.
type Lanczos struct{}

// NewLanczos returns the default Lanczos resizer.
func NewLanczos() *Lanczos {
	return &Lanczos{}
}

// Resize scales img to width x height.
func (l *Lanczos) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}
