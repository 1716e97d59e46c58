package event

import (
	"image"
	"time"
)

// ScanImageLoaded is published when a scan image has been read and is being
// decoded. Image is a display-sized thumbnail, not the full-resolution frame.
type ScanImageLoaded struct {
	baseJobEvent
	Path   string
	Image  image.Image
	Width  int
	Height int
	Format string
}

func NewScanImageLoaded(jobID, path string, img image.Image, width, height int, format string) *ScanImageLoaded {
	return &ScanImageLoaded{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Path:         path,
		Image:        img,
		Width:        width,
		Height:       height,
		Format:       format,
	}
}

func (e *ScanImageLoaded) EventName() string {
	return "ScanImageLoaded"
}

// Detection is one decoded symbol found in the scan image.
type Detection struct {
	Format  string // Display name, e.g. "QR Code", "Code 128"
	Payload string
}

// ScanCompleted is published when detection finishes, whether or not
// anything was found. PatternHint is set when nothing decoded but the
// image contains a barcode-like stripe pattern.
type ScanCompleted struct {
	baseJobEvent
	Detections  []Detection
	PatternHint bool
	Elapsed     time.Duration
}

func NewScanCompleted(jobID string, detections []Detection, patternHint bool, elapsed time.Duration) *ScanCompleted {
	return &ScanCompleted{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Detections:   detections,
		PatternHint:  patternHint,
		Elapsed:      elapsed,
	}
}

func (e *ScanCompleted) EventName() string {
	return "ScanCompleted"
}

// ScanFailed is published when a scan operation fails before producing a
// result. Stage is "load" or "decode".
type ScanFailed struct {
	baseJobEvent
	Stage  string
	Reason string
	Error  error
}

func NewScanFailed(jobID, stage, reason string, err error) *ScanFailed {
	return &ScanFailed{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Stage:        stage,
		Reason:       reason,
		Error:        err,
	}
}

func (e *ScanFailed) EventName() string {
	return "ScanFailed"
}
