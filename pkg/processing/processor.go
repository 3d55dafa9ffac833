// Package processing holds the collaborators around the analysis core:
// image decoding and encoding (jpg, png, webp), extraction of the chosen
// crop, and debug artifact rendering. The analyzer itself never touches
// the filesystem.
package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/autocrop/pkg/types"
)

// Processor handles image input, output and crop extraction.
type Processor struct{}

// NewProcessor creates a new image processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// LoadImage loads an image from a file path with WebP support.
func (p *Processor) LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if img, err := webp.Decode(f); err == nil {
		return img, nil
	}
	if _, err := f.Seek(0, 0); err == nil {
		if img, _, err := image.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// LoadImageFromURL downloads and loads an image from an http(s) URL.
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest("GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", "Autocrop/1.0 (+https://github.com/menta2k/autocrop)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %v", err)
	}
	return p.decodeImageFromBytes(data)
}

// LoadImageSmart loads an image from either a file path or an http(s) URL.
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// ExtractCrop cuts the crop rectangle out of the image. When targetWidth
// and targetHeight are positive the crop is additionally resampled to
// exactly that size.
func (p *Processor) ExtractCrop(img image.Image, crop types.CropRect, targetWidth, targetHeight int) (image.Image, error) {
	rect := crop.Rect().Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("empty crop rectangle %v", crop.Rect())
	}

	cropped := imaging.Crop(img, rect)
	if targetWidth > 0 && targetHeight > 0 {
		cropped = imaging.Fill(cropped, targetWidth, targetHeight, imaging.Center, imaging.Lanczos)
	}
	return cropped, nil
}

// SaveImage saves an image with the given format ("jpg", "png" or "webp"),
// quality and, for WebP, lossless mode.
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// CreateCropOverlay renders the winning crop onto a clone of the image:
// the crop outline, its rule-of-thirds lines and the crop center marker.
func (p *Processor) CreateCropOverlay(img image.Image, crop types.CropRect) image.Image {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()

	gold := color.NRGBA{255, 204, 0, 255}
	gray := color.NRGBA{255, 204, 0, 128}
	red := color.NRGBA{255, 0, 0, 255}
	stroke := int(math.Max(2, 0.004*float64(minInt(w, h))))
	cross := int(math.Max(4, 0.01*float64(minInt(w, h))))

	// Crop outline
	for s := 0; s < stroke; s++ {
		drawHLine(nrgba, crop.Y+s, crop.X, crop.X+crop.Width, gold)
		drawHLine(nrgba, crop.Y+crop.Height-1-s, crop.X, crop.X+crop.Width, gold)
		drawVLine(nrgba, crop.X+s, crop.Y, crop.Y+crop.Height, gold)
		drawVLine(nrgba, crop.X+crop.Width-1-s, crop.Y, crop.Y+crop.Height, gold)
	}

	// Thirds lines inside the crop
	for _, frac := range []float64{1.0 / 3.0, 2.0 / 3.0} {
		drawHLine(nrgba, crop.Y+int(float64(crop.Height)*frac), crop.X, crop.X+crop.Width, gray)
		drawVLine(nrgba, crop.X+int(float64(crop.Width)*frac), crop.Y, crop.Y+crop.Height, gray)
	}

	// Crop center crosshair
	cx := crop.X + crop.Width/2
	cy := crop.Y + crop.Height/2
	drawHLine(nrgba, cy, cx-cross, cx+cross, red)
	drawVLine(nrgba, cx, cy-cross, cy+cross, red)

	return nrgba
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

// DirectorySink writes debug stage images into a directory as PNG files,
// one per stage. It implements analyzer.DebugSink.
type DirectorySink struct {
	dir       string
	processor *Processor
	prefix    string
}

// NewDirectorySink creates a sink writing into dir with the given filename
// prefix.
func NewDirectorySink(dir, prefix string) *DirectorySink {
	return &DirectorySink{dir: dir, processor: NewProcessor(), prefix: prefix}
}

// DebugImage writes one stage image. Errors are intentionally swallowed:
// debug output must never fail an analysis.
func (s *DirectorySink) DebugImage(stage string, img image.Image) {
	name := fmt.Sprintf("%sdebug_%s.png", s.prefix, stage)
	_ = s.processor.SaveImage(img, filepath.Join(s.dir, name), "png", 100, false)
}
