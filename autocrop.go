// Package autocrop finds the sub-rectangle of an image that best preserves
// its important visual content when cropping to a target size or aspect
// ratio, e.g. for automatic thumbnail generation.
//
// The analysis builds per-pixel importance signals (edge detail, skin-tone
// likeness, color saturation), enumerates candidate crop rectangles across
// scales and positions, scores each candidate against a compositional
// weighting field with a rule-of-thirds bias, and selects the best-scoring
// candidate. Large images are prescaled before analysis and all results
// are mapped back to original-image coordinates.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/menta2k/autocrop"
//	)
//
//	func main() {
//		cropper := autocrop.New()
//
//		img, err := cropper.LoadImage("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Find and extract the best 250x250 crop
//		result, err := cropper.CropToSize(context.Background(), img, 250, 250)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := cropper.SaveImage(result.Image, "thumb.jpg"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of four main components:
//
// 1. Features (pkg/features): per-pixel detail, skin and saturation signals
// 2. Candidates (pkg/candidates): deterministic scale/position enumeration
// 3. Score (pkg/score): importance field, candidate scoring, selection
// 4. Analyzer (pkg/analyzer): prescaling and pipeline orchestration
//
// Image IO and crop extraction live in pkg/processing; resampling is
// abstracted behind pkg/resize so callers can swap the resampler.
package autocrop

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/menta2k/autocrop/pkg/analyzer"
	"github.com/menta2k/autocrop/pkg/processing"
	"github.com/menta2k/autocrop/pkg/resize"
	"github.com/menta2k/autocrop/pkg/types"
)

// Version of the autocrop library
const Version = "1.0.0"

// ImageCropper provides a high-level interface for crop analysis and
// extraction.
type ImageCropper struct {
	config    analyzer.Config
	processor *processing.Processor
	resizer   resize.Resizer
	logger    *log.Logger
	sink      analyzer.DebugSink
}

// New creates an ImageCropper with default configuration.
func New() *ImageCropper {
	return NewWithConfig(analyzer.DefaultConfig())
}

// NewWithConfig creates an ImageCropper with custom configuration.
func NewWithConfig(config analyzer.Config) *ImageCropper {
	return &ImageCropper{
		config:    config,
		processor: processing.NewProcessor(),
		resizer:   resize.NewLanczos(),
	}
}

// SetResizer replaces the resampler used during analysis.
func (c *ImageCropper) SetResizer(r resize.Resizer) {
	c.resizer = r
}

// SetLogger installs a logger for analysis diagnostics.
func (c *ImageCropper) SetLogger(l *log.Logger) {
	c.logger = l
}

// SetDebugSink installs a sink for intermediate debug images.
func (c *ImageCropper) SetDebugSink(sink analyzer.DebugSink) {
	c.sink = sink
}

// CropResult pairs the extracted image with the analysis that produced it.
type CropResult struct {
	Image    image.Image
	Crop     types.Candidate
	Analysis types.Result
}

// LoadImage loads an image from a file path or http(s) URL.
func (c *ImageCropper) LoadImage(source string) (image.Image, error) {
	return c.processor.LoadImageSmart(source)
}

// SaveImage saves an image as JPEG with default quality. Use the
// processing package directly for other formats.
func (c *ImageCropper) SaveImage(img image.Image, path string) error {
	return c.processor.SaveImage(img, path, "jpg", 90, false)
}

// Analyze runs the crop analysis for the configured target size and
// returns every scored candidate plus the top crop.
func (c *ImageCropper) Analyze(ctx context.Context, img image.Image) (types.Result, error) {
	return c.newAnalyzer(c.config).Analyze(ctx, img)
}

// FindBestCrop returns the best crop rectangle for a width x height
// target, in original-image coordinates.
func (c *ImageCropper) FindBestCrop(ctx context.Context, img image.Image, width, height int) (types.CropRect, error) {
	config := c.config
	config.Width = width
	config.Height = height
	return c.newAnalyzer(config).FindBestCrop(ctx, img)
}

// CropToSize analyzes the image for a width x height target, extracts the
// winning rectangle and resamples it to exactly that size.
func (c *ImageCropper) CropToSize(ctx context.Context, img image.Image, width, height int) (CropResult, error) {
	config := c.config
	config.Width = width
	config.Height = height

	result, err := c.newAnalyzer(config).Analyze(ctx, img)
	if err != nil {
		return CropResult{}, fmt.Errorf("crop analysis failed: %w", err)
	}

	cropped, err := c.processor.ExtractCrop(img, result.TopCrop.Rect, width, height)
	if err != nil {
		return CropResult{}, fmt.Errorf("extracting crop: %w", err)
	}

	return CropResult{Image: cropped, Crop: result.TopCrop, Analysis: result}, nil
}

// CropToAspectRatio analyzes the image for the given aspect ratio and
// extracts the winning rectangle at its native resolution. The ratio is
// scaled up to the largest target that fits the image, so the analysis
// runs at full working resolution.
func (c *ImageCropper) CropToAspectRatio(ctx context.Context, img image.Image, ratioWidth, ratioHeight int) (CropResult, error) {
	if ratioWidth <= 0 || ratioHeight <= 0 {
		return CropResult{}, fmt.Errorf("aspect ratio %d:%d: %w", ratioWidth, ratioHeight, analyzer.ErrInvalidInput)
	}
	bounds := img.Bounds()
	k := math.Min(
		float64(bounds.Dx())/float64(ratioWidth),
		float64(bounds.Dy())/float64(ratioHeight),
	)

	config := c.config
	config.Width = int(float64(ratioWidth) * k)
	config.Height = int(float64(ratioHeight) * k)

	result, err := c.newAnalyzer(config).Analyze(ctx, img)
	if err != nil {
		return CropResult{}, fmt.Errorf("crop analysis failed: %w", err)
	}

	cropped, err := c.processor.ExtractCrop(img, result.TopCrop.Rect, 0, 0)
	if err != nil {
		return CropResult{}, fmt.Errorf("extracting crop: %w", err)
	}

	return CropResult{Image: cropped, Crop: result.TopCrop, Analysis: result}, nil
}

func (c *ImageCropper) newAnalyzer(config analyzer.Config) *analyzer.Analyzer {
	a := analyzer.NewWithConfig(config)
	a.SetResizer(c.resizer)
	if c.logger != nil {
		a.SetLogger(c.logger)
	}
	if c.sink != nil {
		a.SetDebugSink(c.sink)
	}
	return a
}

// GetVersion returns the library version.
func GetVersion() string {
	return Version
}
