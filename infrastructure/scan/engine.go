// Package scan provides barcode and QR code detection over decoded images.
package scan

import (
	"context"
	"image"
	"time"
)

// Engine locates and decodes machine-readable codes in an image.
type Engine interface {
	// Detect finds every decodable code in the image. A clean image with
	// no codes yields an empty report, not an error.
	Detect(ctx context.Context, img image.Image, opts Options) (*Report, error)
}

// Options controls a single detection pass.
type Options struct {
	// TryHarder trades speed for a more exhaustive search.
	TryHarder bool

	// Formats restricts decoding to the named formats, e.g. "QR Code" or
	// "Code 128". Empty means all supported formats.
	Formats []string
}

// DefaultOptions returns the options used for interactive scans.
func DefaultOptions() Options {
	return Options{
		TryHarder: true,
	}
}

// Detection is a single decoded code.
type Detection struct {
	// Format is the human-readable symbology name, e.g. "QR Code".
	Format string

	// Payload is the decoded text content.
	Payload string

	// Points are the locator points reported by the decoder, if any.
	Points []image.Point

	// Bounds is the axis-aligned box around the locator points.
	Bounds image.Rectangle
}

// Report is the outcome of one detection pass.
type Report struct {
	// Detections holds the decoded codes, QR results first.
	Detections []Detection

	// PatternHint is set when nothing decoded but the image contains a
	// region shaped like a 1D barcode, so the caller can suggest a retry
	// with a cleaner capture.
	PatternHint bool

	// Elapsed is the wall time spent detecting.
	Elapsed time.Duration
}

// Empty reports whether the pass decoded nothing.
func (r *Report) Empty() bool {
	return r == nil || len(r.Detections) == 0
}
