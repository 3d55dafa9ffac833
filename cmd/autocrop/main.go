package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/menta2k/autocrop/internal/config"
	"github.com/menta2k/autocrop/internal/utils"
	"github.com/menta2k/autocrop/pkg/analyzer"
	"github.com/menta2k/autocrop/pkg/processing"
	"github.com/menta2k/autocrop/pkg/resize"
	"github.com/menta2k/autocrop/pkg/resize/nfnt"
)

func main() {
	var in, inDir, outDir, ext, cfgPath, resizerName string
	var width, height int
	var quality, workers int
	var lossless bool
	var noPrescale bool
	var debug bool
	var dumpResult bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&inDir, "indir", "", "input directory; every image file in it is processed")
	flag.StringVar(&outDir, "out", "out", "output directory")
	flag.IntVar(&width, "width", 0, "target crop width (0 = square crop)")
	flag.IntVar(&height, "height", 0, "target crop height (0 = square crop)")

	flag.StringVar(&ext, "ext", "", "output format: jpg|png|webp (default from config)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality 1-100 (default from config)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless mode")

	flag.StringVar(&cfgPath, "config", "", "JSON config file (see internal/config)")
	flag.StringVar(&resizerName, "resizer", "imaging", "resampler backend: imaging or nfnt")
	flag.IntVar(&workers, "workers", 0, "scoring workers (0 = one per CPU)")
	flag.BoolVar(&noPrescale, "noprescale", false, "disable prescaling of large images")
	flag.BoolVar(&debug, "debug", false, "write intermediate feature maps and a crop overlay")
	flag.BoolVar(&dumpResult, "json", false, "also write the full candidate list as JSON")

	flag.Parse()
	if in == "" && inDir == "" {
		log.Fatalf("usage: %s -in input.jpg|URL [-indir dir] [-width 250 -height 250] [-out outdir] [-ext jpg|png|webp] [-resizer imaging|nfnt]",
			filepath.Base(os.Args[0]))
	}

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	// Flag overrides
	if width > 0 {
		cfg.Crop.Width = width
	}
	if height > 0 {
		cfg.Crop.Height = height
	}
	if ext != "" {
		cfg.Output.Format = ext
	}
	if quality > 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if noPrescale {
		cfg.Crop.Prescale = false
	}
	cfg.Crop.Debug = debug
	cfg.Crop.MaxWorkers = workers

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := utils.EnsureDir(outDir); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	var resampler resize.Resizer
	switch resizerName {
	case "imaging":
		resampler = resize.NewLanczos()
	case "nfnt":
		resampler = nfnt.New()
	default:
		log.Fatalf("unknown resizer: %s (use 'imaging' or 'nfnt')", resizerName)
	}

	inputs := []string{}
	if in != "" {
		inputs = append(inputs, in)
	}
	if inDir != "" {
		found, err := utils.ListImageFiles(inDir)
		if err != nil {
			log.Fatalf("listing %s: %v", inDir, err)
		}
		if len(found) == 0 {
			log.Fatalf("no image files found in %s", inDir)
		}
		inputs = append(inputs, found...)
	}

	processor := processing.NewProcessor()
	ctx := context.Background()

	failed := 0
	for _, input := range inputs {
		if err := processOne(ctx, cfg, processor, resampler, input, outDir, dumpResult); err != nil {
			log.Printf("%s: %v", input, err)
			failed++
		}
	}
	if failed > 0 {
		log.Fatalf("%d of %d inputs failed", failed, len(inputs))
	}
}

func processOne(ctx context.Context, cfg *config.Config, processor *processing.Processor, resampler resize.Resizer, input, outDir string, dumpResult bool) error {
	img, err := processor.LoadImageSmart(input)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	bounds := img.Bounds()

	a := analyzer.NewWithConfig(cfg.Crop)
	a.SetResizer(resampler)
	if cfg.Crop.Debug {
		a.SetLogger(log.New(os.Stderr, "autocrop: ", 0))
		a.SetDebugSink(processing.NewDirectorySink(outDir, debugPrefix(input)))
	}

	result, err := a.Analyze(ctx, img)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	crop := result.TopCrop
	log.Printf("%s: %dx%d -> crop %dx%d@%d,%d (score %.4f, %d candidates)",
		input, bounds.Dx(), bounds.Dy(),
		crop.Rect.Width, crop.Rect.Height, crop.Rect.X, crop.Rect.Y,
		crop.Score.Total, len(result.Candidates))

	cropped, err := processor.ExtractCrop(img, crop.Rect, cfg.Crop.Width, cfg.Crop.Height)
	if err != nil {
		return fmt.Errorf("extracting crop: %w", err)
	}

	outPath := utils.GenerateOutputFilename(input, outDir, "", cfg.Output.Suffix, cfg.Output.Format)
	if err := processor.SaveImage(cropped, outPath, cfg.Output.Format, cfg.Output.Quality, cfg.Output.Lossless); err != nil {
		return fmt.Errorf("saving %s: %w", outPath, err)
	}
	log.Printf("wrote %s", outPath)

	if cfg.Crop.Debug {
		overlay := processor.CreateCropOverlay(img, crop.Rect)
		overlayPath := filepath.Join(outDir, debugPrefix(input)+"debug_overlay.png")
		if err := processor.SaveImage(overlay, overlayPath, "png", 100, false); err != nil {
			log.Printf("debug overlay save failed: %v", err)
		} else {
			log.Printf("wrote %s", overlayPath)
		}
	}

	if dumpResult {
		js, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		jsonPath := utils.GenerateOutputFilename(input, outDir, "", "_crops", "json")
		if err := os.WriteFile(jsonPath, js, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", jsonPath, err)
		}
		log.Printf("wrote %s", jsonPath)
	}

	return nil
}

// debugPrefix derives a per-input filename prefix so batch runs don't
// overwrite each other's debug artifacts.
func debugPrefix(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_"
}
