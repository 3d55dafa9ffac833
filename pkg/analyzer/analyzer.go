// Package analyzer orchestrates the crop analysis pipeline: prescaling,
// feature extraction, candidate enumeration, scoring and selection, with
// all results mapped back to original-image coordinates.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math"

	"github.com/menta2k/autocrop/pkg/candidates"
	"github.com/menta2k/autocrop/pkg/features"
	"github.com/menta2k/autocrop/pkg/resize"
	"github.com/menta2k/autocrop/pkg/score"
	"github.com/menta2k/autocrop/pkg/types"
)

// Config holds every tunable parameter of the analysis. It is treated as
// immutable: the analyzer computes derived working values into separate
// state and never writes back into the configuration.
type Config struct {
	// Width and Height are the target crop size. Zero means unset; when
	// both are set the analyzer scales and prescales accordingly.
	Width  int `json:"width"`
	Height int `json:"height"`

	// CropWidth and CropHeight set explicit crop dimensions, used only
	// when Width/Height are unset. Zero means a square crop of the
	// smaller image dimension.
	CropWidth  int `json:"crop_width"`
	CropHeight int `json:"crop_height"`

	DetailWeight float64 `json:"detail_weight"`

	SkinColor         [3]float64 `json:"skin_color"`
	SkinBias          float64    `json:"skin_bias"`
	SkinBrightnessMin float64    `json:"skin_brightness_min"`
	SkinBrightnessMax float64    `json:"skin_brightness_max"`
	SkinThreshold     float64    `json:"skin_threshold"`
	SkinWeight        float64    `json:"skin_weight"`

	SaturationBrightnessMin float64 `json:"saturation_brightness_min"`
	SaturationBrightnessMax float64 `json:"saturation_brightness_max"`
	SaturationThreshold     float64 `json:"saturation_threshold"`
	SaturationBias          float64 `json:"saturation_bias"`
	SaturationWeight        float64 `json:"saturation_weight"`

	ScoreDownSample int     `json:"score_down_sample"`
	Step            int     `json:"step"`
	ScaleStep       float64 `json:"scale_step"`
	MinScale        float64 `json:"min_scale"`
	MaxScale        float64 `json:"max_scale"`

	EdgeRadius        float64 `json:"edge_radius"`
	EdgeWeight        float64 `json:"edge_weight"`
	OutsideImportance float64 `json:"outside_importance"`
	RuleOfThirds      bool    `json:"rule_of_thirds"`

	Prescale bool `json:"prescale"`
	Debug    bool `json:"debug"`

	// MaxWorkers bounds the scoring worker pool; zero means one worker
	// per CPU.
	MaxWorkers int `json:"max_workers"`
}

// DefaultConfig returns the analysis defaults.
func DefaultConfig() Config {
	return Config{
		DetailWeight:            0.2,
		SkinColor:               [3]float64{0.78, 0.57, 0.44},
		SkinBias:                0.01,
		SkinBrightnessMin:       0.2,
		SkinBrightnessMax:       1.0,
		SkinThreshold:           0.8,
		SkinWeight:              1.8,
		SaturationBrightnessMin: 0.05,
		SaturationBrightnessMax: 0.9,
		SaturationThreshold:     0.4,
		SaturationBias:          0.2,
		SaturationWeight:        0.3,
		ScoreDownSample:         8,
		Step:                    8,
		ScaleStep:               0.1,
		MinScale:                0.9,
		MaxScale:                1.0,
		EdgeRadius:              0.4,
		EdgeWeight:              -20.0,
		OutsideImportance:       -0.5,
		RuleOfThirds:            true,
		Prescale:                true,
	}
}

// DebugSink receives intermediate images when debugging is enabled. Stages
// are "prescaled", "skin", "detail" and "saturation".
type DebugSink interface {
	DebugImage(stage string, img image.Image)
}

// Analyzer finds the best crop of an image for a target size.
type Analyzer struct {
	config  Config
	resizer resize.Resizer
	sink    DebugSink
	log     *log.Logger
}

// New creates an Analyzer with default configuration.
func New() *Analyzer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates an Analyzer with custom configuration.
func NewWithConfig(config Config) *Analyzer {
	return &Analyzer{
		config:  config,
		resizer: resize.NewLanczos(),
		log:     log.New(io.Discard, "", 0),
	}
}

// SetResizer replaces the resampler used for prescaling and feature-map
// downsampling.
func (a *Analyzer) SetResizer(r resize.Resizer) {
	a.resizer = r
}

// SetDebugSink installs a sink for intermediate images. The sink is only
// invoked when Config.Debug is set.
func (a *Analyzer) SetDebugSink(sink DebugSink) {
	a.sink = sink
}

// SetLogger installs a logger for analysis diagnostics.
func (a *Analyzer) SetLogger(l *log.Logger) {
	if l != nil {
		a.log = l
	}
}

// Config returns a copy of the analyzer's configuration.
func (a *Analyzer) Config() Config {
	return a.config
}

// FindBestCrop analyzes the image and returns only the top crop rectangle
// in original-image coordinates.
func (a *Analyzer) FindBestCrop(ctx context.Context, img image.Image) (types.CropRect, error) {
	result, err := a.Analyze(ctx, img)
	if err != nil {
		return types.CropRect{}, err
	}
	return result.TopCrop.Rect, nil
}

// Analyze runs the full pipeline and returns every scored candidate plus
// the top crop, all in original-image coordinates. The context is polled
// between candidates; cancellation aborts the analysis.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image) (types.Result, error) {
	bounds := img.Bounds()
	imageWidth, imageHeight := bounds.Dx(), bounds.Dy()

	ws, err := resolve(a.config, imageWidth, imageHeight)
	if err != nil {
		return types.Result{}, fmt.Errorf("resolving analysis dimensions: %w", err)
	}

	working := img
	if ws.prescale < 1 {
		working = a.resizer.Resize(img,
			int(float64(imageWidth)*ws.prescale),
			int(float64(imageHeight)*ws.prescale))
		ws.applyPrescale()
		a.debugImage("prescaled", working)
	}
	workingWidth := working.Bounds().Dx()
	workingHeight := working.Bounds().Dy()

	a.log.Printf("original resolution: %dx%d", imageWidth, imageHeight)
	a.log.Printf("scale: %f, prescale: %f, cropw: %d, croph: %d, minscale: %f",
		ws.scale, ws.prescale, ws.cropWidth, ws.cropHeight, ws.minScale)

	extractor := features.NewWithConfig(features.Config{
		SkinColor:               a.config.SkinColor,
		SkinThreshold:           a.config.SkinThreshold,
		SkinBrightnessMin:       a.config.SkinBrightnessMin,
		SkinBrightnessMax:       a.config.SkinBrightnessMax,
		SaturationThreshold:     a.config.SaturationThreshold,
		SaturationBrightnessMin: a.config.SaturationBrightnessMin,
		SaturationBrightnessMax: a.config.SaturationBrightnessMax,
	})
	buf := extractor.Extract(working)
	a.debugImage("skin", buf.ChannelImage(features.ChannelSkin))
	a.debugImage("detail", buf.ChannelImage(features.ChannelDetail))
	a.debugImage("saturation", buf.ChannelImage(features.ChannelSaturation))

	scoreBuf := a.downsample(buf)

	generator := candidates.NewWithConfig(candidates.Config{
		CropWidth:  ws.cropWidth,
		CropHeight: ws.cropHeight,
		Step:       a.config.Step,
		ScaleStep:  a.config.ScaleStep,
		MinScale:   ws.minScale,
		MaxScale:   a.config.MaxScale,
	})
	cands := generator.Generate(workingWidth, workingHeight)
	a.log.Printf("candidates: %d", len(cands))

	scorer := score.NewWithConfig(score.Config{
		DetailWeight:     a.config.DetailWeight,
		SkinWeight:       a.config.SkinWeight,
		SkinBias:         a.config.SkinBias,
		SaturationWeight: a.config.SaturationWeight,
		SaturationBias:   a.config.SaturationBias,
		DownSample:       a.config.ScoreDownSample,
		MaxWorkers:       a.config.MaxWorkers,
		Importance: score.ImportanceConfig{
			EdgeRadius:        a.config.EdgeRadius,
			EdgeWeight:        a.config.EdgeWeight,
			OutsideImportance: a.config.OutsideImportance,
			RuleOfThirds:      a.config.RuleOfThirds,
		},
	})
	top, err := scorer.ScoreAll(ctx, scoreBuf, cands)
	if err != nil {
		if errors.Is(err, score.ErrNoCandidates) {
			return types.Result{}, fmt.Errorf("%dx%d crop in %dx%d image: %w",
				ws.cropWidth, ws.cropHeight, workingWidth, workingHeight, ErrNoCropFound)
		}
		return types.Result{}, fmt.Errorf("scoring candidates: %w", err)
	}

	for i := range cands {
		cands[i].Rect = ws.unscaleRect(cands[i].Rect)
	}
	top.Rect = ws.unscaleRect(top.Rect)

	return types.Result{Candidates: cands, TopCrop: top}, nil
}

// downsample shrinks the feature buffer for scoring. Dimensions round up
// so every full-resolution sample maps to a valid grid cell.
func (a *Analyzer) downsample(buf *features.Buffer) *features.Buffer {
	ds := a.config.ScoreDownSample
	if ds <= 1 {
		return buf
	}
	w := int(math.Ceil(float64(buf.Width()) / float64(ds)))
	h := int(math.Ceil(float64(buf.Height()) / float64(ds)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return features.FromImage(a.resizer.Resize(buf.Image(), w, h))
}

func (a *Analyzer) debugImage(stage string, img image.Image) {
	if a.config.Debug && a.sink != nil {
		a.sink.DebugImage(stage, img)
	}
}
