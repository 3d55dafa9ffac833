// Package score evaluates candidate crops against a feature buffer using a
// spatial importance field, and selects the best-scoring candidate.
package score

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"

	"github.com/menta2k/autocrop/pkg/features"
	"github.com/menta2k/autocrop/pkg/types"
)

// ErrNoCandidates gets returned when the selector is handed an empty
// candidate list.
var ErrNoCandidates = errors.New("no crop candidates to score")

// Config holds the scoring weights.
type Config struct {
	DetailWeight     float64
	SkinWeight       float64
	SkinBias         float64
	SaturationWeight float64
	SaturationBias   float64

	// DownSample is the feature-buffer downsampling factor. Candidate
	// rectangles stay in full working resolution; feature samples are
	// taken from the downsampled grid.
	DownSample int

	// MaxWorkers bounds the scoring worker pool. Zero means one worker
	// per CPU. Results are identical regardless of the worker count.
	MaxWorkers int

	Importance ImportanceConfig
}

// DefaultConfig returns the scorer defaults.
func DefaultConfig() Config {
	return Config{
		DetailWeight:     0.2,
		SkinWeight:       1.8,
		SkinBias:         0.01,
		SaturationWeight: 0.3,
		SaturationBias:   0.2,
		DownSample:       8,
		Importance:       DefaultImportanceConfig(),
	}
}

// Scorer computes composite scores for candidate crops.
type Scorer struct {
	config Config
	field  *ImportanceField
}

// New creates a Scorer with default configuration.
func New() *Scorer {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Scorer with custom configuration.
func NewWithConfig(config Config) *Scorer {
	return &Scorer{
		config: config,
		field:  NewImportanceField(config.Importance),
	}
}

// Score computes the composite score for one candidate rectangle against a
// downsampled feature buffer. The rectangle is expressed in full working
// resolution; each grid sample is weighted by the importance of its
// full-resolution position.
func (s *Scorer) Score(buf *features.Buffer, crop types.CropRect) types.Score {
	var sc types.Score
	ds := s.config.DownSample

	h := buf.Height()
	w := buf.Width()
	for gy := 0; gy < h; gy++ {
		y := gy * ds
		for gx := 0; gx < w; gx++ {
			x := gx * ds

			imp := s.field.At(crop, x, y)
			skin, detail, sat := buf.At(gx, gy)

			d := float64(detail) / 255.0
			sc.Skin += float64(skin) / 255.0 * (d + s.config.SkinBias) * imp
			sc.Detail += d * imp
			sc.Saturation += float64(sat) / 255.0 * (d + s.config.SaturationBias) * imp
		}
	}

	sc.Total = (sc.Detail*s.config.DetailWeight +
		sc.Skin*s.config.SkinWeight +
		sc.Saturation*s.config.SaturationWeight) /
		float64(crop.Width) / float64(crop.Height)
	return sc
}

// ScoreAll scores every candidate in place and returns the top one.
// Candidates are independent work items: each worker writes only its own
// slot, and the final reduction walks the slice in generation order with a
// strict greater-than comparison, so the winner is identical to a
// sequential scan. Scale-descending, top-left-first enumeration therefore
// decides ties.
func (s *Scorer) ScoreAll(ctx context.Context, buf *features.Buffer, cands []types.Candidate) (types.Candidate, error) {
	if len(cands) == 0 {
		return types.Candidate{}, ErrNoCandidates
	}

	workers := s.config.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(cands) {
		workers = len(cands)
	}

	if workers == 1 {
		for i := range cands {
			if err := ctx.Err(); err != nil {
				return types.Candidate{}, err
			}
			cands[i].Score = s.Score(buf, cands[i].Rect)
		}
	} else {
		next := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range next {
					cands[i].Score = s.Score(buf, cands[i].Rect)
				}
			}()
		}

		var err error
	feed:
		for i := range cands {
			select {
			case next <- i:
			case <-ctx.Done():
				err = ctx.Err()
				break feed
			}
		}
		close(next)
		wg.Wait()
		if err != nil {
			return types.Candidate{}, err
		}
	}

	top := cands[0]
	topScore := math.Inf(-1)
	for _, c := range cands {
		if c.Score.Total > topScore {
			top = c
			topScore = c.Score.Total
		}
	}
	return top, nil
}
