// Package features computes the per-pixel importance signals used by the
// crop scorer: edge detail, skin-tone likeness and color saturation. The
// three signals are packed into the R, G and B channels of a single buffer
// the same size as the analyzed image.
package features

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Config holds the tunable parameters of the feature extractor.
type Config struct {
	// SkinColor is the reference skin tone as an RGB direction vector.
	SkinColor [3]float64

	SkinThreshold     float64
	SkinBrightnessMin float64
	SkinBrightnessMax float64

	SaturationThreshold     float64
	SaturationBrightnessMin float64
	SaturationBrightnessMax float64
}

// DefaultConfig returns the extractor defaults.
func DefaultConfig() Config {
	return Config{
		SkinColor:               [3]float64{0.78, 0.57, 0.44},
		SkinThreshold:           0.8,
		SkinBrightnessMin:       0.2,
		SkinBrightnessMax:       1.0,
		SaturationThreshold:     0.4,
		SaturationBrightnessMin: 0.05,
		SaturationBrightnessMax: 0.9,
	}
}

// Buffer is a three-channel feature map. Channel packing is fixed:
// R = skin likeness, G = edge detail, B = saturation, each normalized to
// 0-255. The scorer consumes the packing verbatim.
type Buffer struct {
	img *image.NRGBA
}

// FromImage wraps an image as a feature buffer, converting to NRGBA if
// necessary. Used to rewrap the buffer after downsampling.
func FromImage(img image.Image) *Buffer {
	return &Buffer{img: imaging.Clone(img)}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.img.Bounds().Dx() }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.img.Bounds().Dy() }

// At returns the skin, detail and saturation channel values at (x, y).
func (b *Buffer) At(x, y int) (skin, detail, saturation uint8) {
	i := y*b.img.Stride + x*4
	return b.img.Pix[i], b.img.Pix[i+1], b.img.Pix[i+2]
}

// Image exposes the underlying pixel data, e.g. for downsampling or for
// debug output.
func (b *Buffer) Image() image.Image { return b.img }

// Channel identifies one plane of the feature buffer.
type Channel int

// Feature buffer planes.
const (
	ChannelSkin Channel = iota
	ChannelDetail
	ChannelSaturation
)

// ChannelImage renders a single feature plane as a grayscale image.
func (b *Buffer) ChannelImage(c Channel) *image.Gray {
	w, h := b.Width(), b.Height()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = b.img.Pix[y*b.img.Stride+x*4+int(c)]
		}
	}
	return out
}

// Extractor computes feature buffers from images.
type Extractor struct {
	config Config
}

// New creates an Extractor with default configuration.
func New() *Extractor {
	return &Extractor{config: DefaultConfig()}
}

// NewWithConfig creates an Extractor with custom configuration.
func NewWithConfig(config Config) *Extractor {
	return &Extractor{config: config}
}

// Extract computes the feature buffer for an image. It is a pure function
// over the pixel data and cannot fail.
func (e *Extractor) Extract(img image.Image) *Buffer {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	lumas := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := pixelAt(src, x, y)
			lumas[y*w+x] = luma(r, g, b)
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := pixelAt(src, x, y)
			l := lumas[y*w+x]
			brightness := l / 255.0

			var detail float64
			if x == 0 || x >= w-1 || y == 0 || y >= h-1 {
				detail = l
			} else {
				detail = l*4.0 -
					lumas[(y-1)*w+x] -
					lumas[y*w+x-1] -
					lumas[y*w+x+1] -
					lumas[(y+1)*w+x]
			}

			var skin float64
			if likeness := e.skinLikeness(r, g, b); likeness > e.config.SkinThreshold &&
				brightness >= e.config.SkinBrightnessMin && brightness <= e.config.SkinBrightnessMax {
				skin = (likeness - e.config.SkinThreshold) * (255.0 / (1.0 - e.config.SkinThreshold))
			}

			var sat float64
			if s := saturation(r, g, b); s > e.config.SaturationThreshold &&
				brightness >= e.config.SaturationBrightnessMin && brightness <= e.config.SaturationBrightnessMax {
				sat = (s - e.config.SaturationThreshold) * (255.0 / (1.0 - e.config.SaturationThreshold))
			}

			i := out.PixOffset(x, y)
			out.Pix[i] = uint8(clamp255(skin))
			out.Pix[i+1] = uint8(clamp255(detail))
			out.Pix[i+2] = uint8(clamp255(sat))
			out.Pix[i+3] = 255
		}
	}

	return &Buffer{img: out}
}

func pixelAt(img *image.NRGBA, x, y int) (r, g, b float64) {
	i := y*img.Stride + x*4
	return float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])
}

// luma computes the lightness sample used throughout the analysis. The
// coefficient assignment is intentional and part of the scoring contract;
// changing it changes which crop wins.
func luma(r, g, b float64) float64 {
	return 0.0722*r + 0.7152*g + 0.5126*b
}

// skinLikeness measures how closely the pixel's normalized RGB direction
// matches the reference skin vector. A black pixel compares the zero
// direction against the reference.
func (e *Extractor) skinLikeness(r, g, b float64) float64 {
	ref := e.config.SkinColor
	mag := math.Sqrt(r*r + g*g + b*b)

	var rd, gd, bd float64
	if mag == 0 {
		rd, gd, bd = -ref[0], -ref[1], -ref[2]
	} else {
		rd, gd, bd = r/mag-ref[0], g/mag-ref[1], b/mag-ref[2]
	}

	return 1.0 - math.Sqrt(rd*rd+gd*gd+bd*bd)
}

// saturation computes HSL saturation from 8-bit RGB components.
func saturation(r, g, b float64) float64 {
	maximum := math.Max(math.Max(r, g), b) / 255.0
	minimum := math.Min(math.Min(r, g), b) / 255.0

	if maximum == minimum {
		return 0
	}

	l := (maximum + minimum) / 2.0
	d := maximum - minimum

	if l > 0.5 {
		return d / (2.0 - maximum - minimum)
	}
	return d / (maximum + minimum)
}

func clamp255(v float64) float64 {
	return math.Min(math.Max(v, 0), 255)
}
