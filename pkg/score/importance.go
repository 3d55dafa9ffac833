package score

import (
	"math"

	"github.com/menta2k/autocrop/pkg/types"
)

// ImportanceConfig holds the spatial weighting parameters.
type ImportanceConfig struct {
	// EdgeRadius and EdgeWeight control the penalty band along the crop's
	// outer edge. EdgeWeight is negative.
	EdgeRadius float64
	EdgeWeight float64

	// OutsideImportance is the constant weight applied to pixels outside
	// the candidate rectangle, typically negative.
	OutsideImportance float64

	// RuleOfThirds enables the compositional boost near the thirds lines.
	RuleOfThirds bool
}

// DefaultImportanceConfig returns the importance field defaults.
func DefaultImportanceConfig() ImportanceConfig {
	return ImportanceConfig{
		EdgeRadius:        0.4,
		EdgeWeight:        -20.0,
		OutsideImportance: -0.5,
		RuleOfThirds:      true,
	}
}

// ImportanceField weighs how desirable it is for a pixel's content to sit
// at a given position relative to a candidate crop: maximal near the crop
// center, reduced toward the edge band, boosted along the thirds lines and
// penalized outside the rectangle.
type ImportanceField struct {
	config ImportanceConfig
}

// NewImportanceField creates a field with the given configuration.
func NewImportanceField(config ImportanceConfig) *ImportanceField {
	return &ImportanceField{config: config}
}

// At returns the importance of position (x, y) relative to the crop.
func (f *ImportanceField) At(crop types.CropRect, x, y int) float64 {
	if !crop.Contains(x, y) {
		return f.config.OutsideImportance
	}

	tx := float64(x-crop.X) / float64(crop.Width)
	ty := float64(y-crop.Y) / float64(crop.Height)

	px := math.Abs(0.5-tx) * 2.0
	py := math.Abs(0.5-ty) * 2.0

	dx := math.Max(px-1.0+f.config.EdgeRadius, 0.0)
	dy := math.Max(py-1.0+f.config.EdgeRadius, 0.0)
	d := (dx*dx + dy*dy) * f.config.EdgeWeight

	s := 1.41 - math.Sqrt(px*px+py*py)
	if f.config.RuleOfThirds {
		s += (math.Max(0.0, s+d+0.5) * 1.2) * (thirds(px) + thirds(py))
	}

	return s + d
}

// thirds is a periodic bump that peaks at the 1/3 and 2/3 lines and
// vanishes elsewhere.
func thirds(x float64) float64 {
	y := (math.Mod(x-(1.0/3.0)+1.0, 2.0)*0.5 - 0.5) * 16.0
	return math.Max(1.0-y*y, 0.0)
}
