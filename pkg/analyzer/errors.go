package analyzer

import "errors"

var (
	// ErrInvalidInput gets returned for zero-dimension images or negative
	// target/crop dimensions.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoCropFound gets returned when no candidate crop fits the image,
	// e.g. a requested crop larger than the image itself.
	ErrNoCropFound = errors.New("no crop found")

	// ErrNumericOverflow gets returned when dimension arithmetic would
	// exceed the representable range. Not expected in normal use.
	ErrNumericOverflow = errors.New("numeric overflow in dimension arithmetic")
)
