package types

import "image"

// CropRect is an axis-aligned crop rectangle in pixel coordinates.
// Rectangles produced by the candidate generator always lie fully inside
// the image they were generated against.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the crop rectangle to an image.Rectangle.
func (r CropRect) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns the area of the rectangle in pixels.
func (r CropRect) Area() int {
	return r.Width * r.Height
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r CropRect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Overlaps reports whether the two rectangles intersect.
func (r CropRect) Overlaps(o CropRect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Score holds the weighted feature sums for one candidate. Total is the
// area-normalized composite used for ranking; the per-channel sums are
// diagnostic.
type Score struct {
	Detail     float64 `json:"detail"`
	Skin       float64 `json:"skin"`
	Saturation float64 `json:"saturation"`
	Total      float64 `json:"total"`
}

// Candidate is one trial crop rectangle paired with its computed score.
type Candidate struct {
	Rect  CropRect `json:"rect"`
	Score Score    `json:"score"`
}

// Result contains every evaluated candidate plus the top-scoring one,
// both expressed in original (non-prescaled) image coordinates.
type Result struct {
	Candidates []Candidate `json:"candidates"`
	TopCrop    Candidate   `json:"top_crop"`
}
