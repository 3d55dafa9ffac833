package analyzer

import (
	"math"

	"github.com/menta2k/autocrop/pkg/types"
)

// Dimension arithmetic guard. Images and crops beyond this are rejected as
// overflow rather than analyzed.
const maxDimension = math.MaxInt32 / 2

// workingState holds every value derived from the caller's Configuration
// for a single analysis. The configuration itself is never written to.
type workingState struct {
	// scale maps the target size onto the original image.
	scale float64

	// prescale is the working-image shrink factor; 1 means no prescaling.
	prescale float64

	// cropWidth and cropHeight are the crop dimensions at scale 1.0 in
	// working-image coordinates. Zero means the square default.
	cropWidth  int
	cropHeight int

	// minScale is the adjusted lower bound of the scale sweep, raised so
	// no candidate would require upscaling beyond native resolution.
	minScale float64
}

// resolve computes the working state for an imageWidth x imageHeight image
// under the given configuration.
func resolve(config Config, imageWidth, imageHeight int) (workingState, error) {
	if imageWidth <= 0 || imageHeight <= 0 {
		return workingState{}, ErrInvalidInput
	}
	if config.Width < 0 || config.Height < 0 || config.CropWidth < 0 || config.CropHeight < 0 {
		return workingState{}, ErrInvalidInput
	}
	if imageWidth > maxDimension || imageHeight > maxDimension ||
		config.Width > maxDimension || config.Height > maxDimension ||
		config.CropWidth > maxDimension || config.CropHeight > maxDimension ||
		int64(imageWidth)*int64(imageHeight) > math.MaxInt32 {
		return workingState{}, ErrNumericOverflow
	}

	ws := workingState{
		scale:      1,
		prescale:   1,
		cropWidth:  config.CropWidth,
		cropHeight: config.CropHeight,
		minScale:   config.MinScale,
	}

	if config.Width == 0 || config.Height == 0 {
		return ws, nil
	}

	ws.scale = math.Min(
		float64(imageWidth)/float64(config.Width),
		float64(imageHeight)/float64(config.Height),
	)
	ws.cropWidth = int(math.Floor(float64(config.Width) * ws.scale))
	ws.cropHeight = int(math.Floor(float64(config.Height) * ws.scale))

	// Keep candidates from needing upscaling beyond native resolution.
	ws.minScale = math.Min(config.MaxScale, math.Max(1.0/ws.scale, config.MinScale))

	if config.Prescale {
		if f := 1.0 / ws.scale / ws.minScale; f < 1.0 {
			ws.prescale = f
		}
	}

	return ws, nil
}

// applyPrescale shrinks the crop dimensions into prescaled coordinates.
func (ws *workingState) applyPrescale() {
	ws.cropWidth = int(math.Floor(float64(ws.cropWidth) * ws.prescale))
	ws.cropHeight = int(math.Floor(float64(ws.cropHeight) * ws.prescale))
}

// unscaleRect maps a rectangle from prescaled coordinates back to the
// original image.
func (ws *workingState) unscaleRect(r types.CropRect) types.CropRect {
	if ws.prescale == 1 {
		return r
	}
	return types.CropRect{
		X:      int(math.Floor(float64(r.X) / ws.prescale)),
		Y:      int(math.Floor(float64(r.Y) / ws.prescale)),
		Width:  int(math.Floor(float64(r.Width) / ws.prescale)),
		Height: int(math.Floor(float64(r.Height) / ws.prescale)),
	}
}
