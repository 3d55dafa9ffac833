// Package candidates enumerates trial crop rectangles over a deterministic
// grid of scales and positions.
package candidates

import (
	"math"

	"github.com/menta2k/autocrop/pkg/types"
)

// Config holds the grid parameters.
type Config struct {
	// CropWidth and CropHeight are the crop dimensions at scale 1.0.
	// When zero, both default to the smaller image dimension.
	CropWidth  int
	CropHeight int

	// Step is the position increment in pixels.
	Step int

	// ScaleStep, MinScale and MaxScale define the scale sweep.
	ScaleStep float64
	MinScale  float64
	MaxScale  float64
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		Step:      8,
		ScaleStep: 0.1,
		MinScale:  0.9,
		MaxScale:  1.0,
	}
}

// Generator produces candidate crops for an image size.
type Generator struct {
	config Config
}

// New creates a Generator with default configuration.
func New() *Generator {
	return &Generator{config: DefaultConfig()}
}

// NewWithConfig creates a Generator with custom configuration.
func NewWithConfig(config Config) *Generator {
	return &Generator{config: config}
}

// Generate enumerates candidates for an imageWidth x imageHeight image.
// Scales run in descending order, positions top-to-bottom then
// left-to-right; the selector's tie-break relies on exactly this order.
// An empty slice means no crop fits the image.
func (g *Generator) Generate(imageWidth, imageHeight int) []types.Candidate {
	cropW, cropH := g.config.CropWidth, g.config.CropHeight
	if cropW == 0 || cropH == 0 {
		minDim := imageWidth
		if imageHeight < minDim {
			minDim = imageHeight
		}
		if cropW == 0 {
			cropW = minDim
		}
		if cropH == 0 {
			cropH = minDim
		}
	}

	var out []types.Candidate
	for _, scale := range g.scales() {
		w := int(math.Floor(float64(cropW) * scale))
		h := int(math.Floor(float64(cropH) * scale))
		if w <= 0 || h <= 0 {
			continue
		}
		for y := 0; y+h <= imageHeight; y += g.config.Step {
			for x := 0; x+w <= imageWidth; x += g.config.Step {
				out = append(out, types.Candidate{
					Rect: types.CropRect{X: x, Y: y, Width: w, Height: h},
				})
			}
		}
	}
	return out
}

// scales returns every multiple of ScaleStep between MinScale and MaxScale
// inclusive, largest first. The epsilon absorbs accumulated float error so
// MinScale itself is not dropped.
func (g *Generator) scales() []float64 {
	var out []float64
	for s := g.config.MaxScale; s >= g.config.MinScale-1e-9; s -= g.config.ScaleStep {
		out = append(out, s)
	}
	return out
}
