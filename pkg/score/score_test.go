package score

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/menta2k/autocrop/pkg/candidates"
	"github.com/menta2k/autocrop/pkg/features"
	"github.com/menta2k/autocrop/pkg/types"
)

// featureImage builds a width x height feature buffer with every channel
// zero except the pixels set through the returned setter.
func featureImage(width, height int) (*image.NRGBA, func(x, y int, skin, detail, sat uint8)) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	set := func(x, y int, skin, detail, sat uint8) {
		img.SetNRGBA(x, y, color.NRGBA{R: skin, G: detail, B: sat, A: 255})
	}
	return img, set
}

func TestNew(t *testing.T) {
	s := New()
	if s == nil {
		t.Fatal("New() returned nil")
	}

	if s.config.SkinWeight != 1.8 {
		t.Errorf("Expected skin weight 1.8, got %f", s.config.SkinWeight)
	}
}

func TestThirds(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{1.0 / 3.0, 1.0}, // peak on the thirds line
		{0.0, 0.0},
		{1.0, 0.0},
		{0.5, 0.0},
	}

	for _, tt := range tests {
		if got := thirds(tt.x); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("thirds(%f) = %f, expected %f", tt.x, got, tt.want)
		}
	}
}

func TestImportanceOutside(t *testing.T) {
	f := NewImportanceField(DefaultImportanceConfig())
	crop := types.CropRect{X: 10, Y: 10, Width: 50, Height: 50}

	for _, p := range [][2]int{{0, 0}, {9, 30}, {60, 30}, {30, 9}, {30, 60}, {200, 200}} {
		if got := f.At(crop, p[0], p[1]); got != -0.5 {
			t.Errorf("Importance at outside point (%d,%d) = %f, expected -0.5", p[0], p[1], got)
		}
	}
}

func TestImportanceCenter(t *testing.T) {
	f := NewImportanceField(DefaultImportanceConfig())
	crop := types.CropRect{X: 0, Y: 0, Width: 100, Height: 100}

	// The exact center sits clear of the edge band and the thirds lines.
	if got := f.At(crop, 50, 50); math.Abs(got-1.41) > 1e-9 {
		t.Errorf("Importance at center = %f, expected 1.41", got)
	}
}

func TestImportanceCornerPenalty(t *testing.T) {
	f := NewImportanceField(DefaultImportanceConfig())
	crop := types.CropRect{X: 0, Y: 0, Width: 100, Height: 100}

	got := f.At(crop, 0, 0)
	if got >= 0 {
		t.Errorf("Importance at corner = %f, expected a negative edge penalty", got)
	}
	if center := f.At(crop, 50, 50); got >= center {
		t.Errorf("Corner importance %f not below center importance %f", got, center)
	}
}

func TestImportanceRuleOfThirds(t *testing.T) {
	on := NewImportanceField(DefaultImportanceConfig())

	offCfg := DefaultImportanceConfig()
	offCfg.RuleOfThirds = false
	off := NewImportanceField(offCfg)

	crop := types.CropRect{X: 0, Y: 0, Width: 90, Height: 90}

	// (30, 45) lies on the vertical thirds line at the crop's mid-height.
	boosted := on.At(crop, 30, 45)
	plain := off.At(crop, 30, 45)
	if boosted <= plain {
		t.Errorf("Thirds-line importance %f not above unboosted %f", boosted, plain)
	}

	// Away from the thirds lines both fields agree.
	if a, b := on.At(crop, 45, 45), off.At(crop, 45, 45); math.Abs(a-b) > 1e-9 {
		t.Errorf("Center importance differs with rule of thirds: %f vs %f", a, b)
	}
}

func TestScoreZeroBuffer(t *testing.T) {
	img, _ := featureImage(10, 10)
	buf := features.FromImage(img)

	s := New()
	sc := s.Score(buf, types.CropRect{X: 0, Y: 0, Width: 40, Height: 40})
	if sc.Total != 0 || sc.Detail != 0 || sc.Skin != 0 || sc.Saturation != 0 {
		t.Errorf("Expected zero score on an empty buffer, got %+v", sc)
	}
}

func TestScoreDetailPlacement(t *testing.T) {
	// One bright detail sample at grid (2,2), full resolution (16,16).
	img, set := featureImage(10, 10)
	set(2, 2, 0, 255, 0)
	buf := features.FromImage(img)

	s := New()

	centered := s.Score(buf, types.CropRect{X: 0, Y: 0, Width: 32, Height: 32})
	if centered.Total <= 0 {
		t.Errorf("Expected positive score with detail at crop center, got %f", centered.Total)
	}

	missed := s.Score(buf, types.CropRect{X: 40, Y: 40, Width: 32, Height: 32})
	if missed.Total >= 0 {
		t.Errorf("Expected negative score with detail outside crop, got %f", missed.Total)
	}

	if centered.Total <= missed.Total {
		t.Errorf("Centered score %f not above missed score %f", centered.Total, missed.Total)
	}
}

func TestScoreSkinNeedsDetail(t *testing.T) {
	// Skin with no detail only contributes through the bias term.
	img, set := featureImage(10, 10)
	set(2, 2, 255, 0, 0)
	biasOnly := New().Score(features.FromImage(img), types.CropRect{X: 0, Y: 0, Width: 32, Height: 32})

	img2, set2 := featureImage(10, 10)
	set2(2, 2, 255, 255, 0)
	withDetail := New().Score(features.FromImage(img2), types.CropRect{X: 0, Y: 0, Width: 32, Height: 32})

	if withDetail.Skin <= biasOnly.Skin {
		t.Errorf("Skin score %f without detail not below %f with detail", biasOnly.Skin, withDetail.Skin)
	}
}

func TestScoreAllEmpty(t *testing.T) {
	img, _ := featureImage(4, 4)
	_, err := New().ScoreAll(context.Background(), features.FromImage(img), nil)
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("Expected ErrNoCandidates, got %v", err)
	}
}

func TestScoreAllTieBreak(t *testing.T) {
	// Every candidate of an empty buffer scores exactly zero, so the first
	// enumerated candidate must win.
	img, _ := featureImage(13, 13) // 100x100 working image, downsample 8
	buf := features.FromImage(img)

	gen := candidates.NewWithConfig(candidates.Config{
		CropWidth: 50, CropHeight: 50,
		Step: 8, ScaleStep: 0.1, MinScale: 0.9, MaxScale: 1.0,
	})
	cands := gen.Generate(100, 100)

	top, err := New().ScoreAll(context.Background(), buf, cands)
	if err != nil {
		t.Fatalf("ScoreAll failed: %v", err)
	}
	if top.Rect != cands[0].Rect {
		t.Errorf("Tie not broken by enumeration order: got %+v, expected %+v", top.Rect, cands[0].Rect)
	}
}

func TestScoreAllDeterministic(t *testing.T) {
	img, set := featureImage(16, 16)
	// Scatter features so candidate scores genuinely differ.
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			set(x, y, uint8(x*13%256), uint8((x*7+y*31)%256), uint8(y*17%256))
		}
	}
	buf := features.FromImage(img)

	gen := candidates.NewWithConfig(candidates.Config{
		CropWidth: 60, CropHeight: 60,
		Step: 8, ScaleStep: 0.1, MinScale: 0.8, MaxScale: 1.0,
	})

	score := func(workers int) (types.Candidate, []types.Candidate) {
		cfg := DefaultConfig()
		cfg.MaxWorkers = workers
		cands := gen.Generate(128, 128)
		top, err := NewWithConfig(cfg).ScoreAll(context.Background(), buf, cands)
		if err != nil {
			t.Fatalf("ScoreAll with %d workers failed: %v", workers, err)
		}
		return top, cands
	}

	seqTop, seqCands := score(1)
	for _, workers := range []int{2, 4, 8} {
		parTop, parCands := score(workers)
		if parTop.Rect != seqTop.Rect {
			t.Errorf("Top crop with %d workers %+v differs from sequential %+v",
				workers, parTop.Rect, seqTop.Rect)
		}
		for i := range seqCands {
			if parCands[i].Score != seqCands[i].Score {
				t.Errorf("Candidate %d score with %d workers %+v differs from sequential %+v",
					i, workers, parCands[i].Score, seqCands[i].Score)
			}
		}
	}
}

func TestScoreAllCanceled(t *testing.T) {
	img, _ := featureImage(13, 13)
	buf := features.FromImage(img)
	cands := candidates.New().Generate(100, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.MaxWorkers = 1
	_, err := NewWithConfig(cfg).ScoreAll(ctx, buf, cands)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func BenchmarkScoreAll(b *testing.B) {
	img, set := featureImage(32, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			set(x, y, uint8(x*5%256), uint8((x+y)*9%256), uint8(y*3%256))
		}
	}
	buf := features.FromImage(img)

	gen := candidates.NewWithConfig(candidates.Config{
		CropWidth: 120, CropHeight: 120,
		Step: 8, ScaleStep: 0.1, MinScale: 0.9, MaxScale: 1.0,
	})
	s := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cands := gen.Generate(256, 256)
		if _, err := s.ScoreAll(context.Background(), buf, cands); err != nil {
			b.Fatal(err)
		}
	}
}
