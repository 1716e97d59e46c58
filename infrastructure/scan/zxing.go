package scan

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ZXingEngine implements Engine on top of the gozxing decoders. It runs a
// multi-QR pass before the single-format readers so QR results come out
// ahead of 1D hits on mixed images, then falls back to a bar pattern
// heuristic when nothing decodes.
type ZXingEngine struct {
	patterns *PatternDetector
}

// NewZXingEngine creates a detection engine with the default pattern heuristic.
func NewZXingEngine() *ZXingEngine {
	return &ZXingEngine{
		patterns: NewPatternDetector(nil),
	}
}

// Detect finds every decodable code in the image.
func (e *ZXingEngine) Detect(ctx context.Context, img image.Image, opts Options) (*Report, error) {
	start := time.Now()

	if img == nil {
		return nil, fmt.Errorf("no image to scan")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare bitmap: %w", err)
	}

	hints := buildHints(opts)

	var detections []Detection

	// QR pass first. The multi reader finds several symbols per image, the
	// plain reader catches dense single symbols the multi detector misses.
	if wantsFormat(opts, "QR Code") {
		if results, err := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, hints); err == nil {
			for _, r := range results {
				detections = appendDetection(detections, r)
			}
		}
		if len(detections) == 0 {
			if r, err := qrcode.NewQRCodeReader().Decode(bmp, hints); err == nil && r != nil {
				detections = appendDetection(detections, r)
			}
		}
	}

	// One reader per remaining symbology. A decode error just means the
	// symbology is not present in the image.
	for _, pass := range formatPasses(hints) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !wantsAny(opts, pass.formats) {
			continue
		}
		if r, err := pass.reader.Decode(bmp, hints); err == nil && r != nil {
			detections = appendDetection(detections, r)
		}
	}

	report := &Report{
		Detections: orderDetections(detections),
		Elapsed:    time.Since(start),
	}

	if len(report.Detections) == 0 && e.patterns != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.PatternHint = len(e.patterns.Detect(img)) > 0
	}

	return report, nil
}

// formatPass binds a decoder to the display names of the formats it covers.
type formatPass struct {
	formats []string
	reader  gozxing.Reader
}

// formatPasses lists the non-QR decoders in detection order. The UPC/EAN
// family shares one reader, every other symbology gets its own.
func formatPasses(hints map[gozxing.DecodeHintType]interface{}) []formatPass {
	return []formatPass{
		{[]string{"Code 128"}, oned.NewCode128Reader()},
		{[]string{"Code 39"}, oned.NewCode39Reader()},
		{[]string{"EAN-13", "EAN-8", "UPC-A", "UPC-E"}, oned.NewMultiFormatUPCEANReader(hints)},
		{[]string{"ITF"}, oned.NewITFReader()},
		{[]string{"Codabar"}, oned.NewCodaBarReader()},
		{[]string{"Data Matrix"}, datamatrix.NewDataMatrixReader()},
		{[]string{"Aztec"}, aztec.NewAztecReader()},
	}
}

// wantsAny reports whether opts allows any of the named formats.
func wantsAny(opts Options, names []string) bool {
	for _, name := range names {
		if wantsFormat(opts, name) {
			return true
		}
	}
	return false
}

// buildHints translates Options into a gozxing hint map.
func buildHints(opts Options) map[gozxing.DecodeHintType]interface{} {
	hints := make(map[gozxing.DecodeHintType]interface{})
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	if len(opts.Formats) > 0 {
		var formats []gozxing.BarcodeFormat
		for _, name := range opts.Formats {
			if f, ok := formatFromName(name); ok {
				formats = append(formats, f)
			}
		}
		if len(formats) > 0 {
			hints[gozxing.DecodeHintType_POSSIBLE_FORMATS] = formats
		}
	}
	return hints
}

// wantsFormat reports whether opts allows the named format.
func wantsFormat(opts Options, name string) bool {
	if len(opts.Formats) == 0 {
		return true
	}
	for _, f := range opts.Formats {
		if f == name {
			return true
		}
	}
	return false
}

// appendDetection converts a decoder result and appends it unless an equal
// format and payload pair is already present.
func appendDetection(detections []Detection, r *gozxing.Result) []Detection {
	d := Detection{
		Format:  formatName(r.GetBarcodeFormat()),
		Payload: r.GetText(),
	}
	for _, p := range r.GetResultPoints() {
		if p == nil {
			continue
		}
		d.Points = append(d.Points, image.Pt(int(p.GetX()), int(p.GetY())))
	}
	d.Bounds = boundsOf(d.Points)

	for _, existing := range detections {
		if existing.Format == d.Format && existing.Payload == d.Payload {
			return detections
		}
	}
	return append(detections, d)
}

// orderDetections moves QR results ahead of other symbologies, keeping the
// relative order within each group.
func orderDetections(detections []Detection) []Detection {
	if len(detections) < 2 {
		return detections
	}
	ordered := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if d.Format == "QR Code" {
			ordered = append(ordered, d)
		}
	}
	for _, d := range detections {
		if d.Format != "QR Code" {
			ordered = append(ordered, d)
		}
	}
	return ordered
}

// boundsOf returns the axis-aligned box around the locator points.
func boundsOf(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// formatName maps a decoder format to its display name.
func formatName(f gozxing.BarcodeFormat) string {
	switch f {
	case gozxing.BarcodeFormat_QR_CODE:
		return "QR Code"
	case gozxing.BarcodeFormat_CODE_128:
		return "Code 128"
	case gozxing.BarcodeFormat_CODE_39:
		return "Code 39"
	case gozxing.BarcodeFormat_EAN_13:
		return "EAN-13"
	case gozxing.BarcodeFormat_EAN_8:
		return "EAN-8"
	case gozxing.BarcodeFormat_UPC_A:
		return "UPC-A"
	case gozxing.BarcodeFormat_UPC_E:
		return "UPC-E"
	case gozxing.BarcodeFormat_ITF:
		return "ITF"
	case gozxing.BarcodeFormat_CODABAR:
		return "Codabar"
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return "Data Matrix"
	case gozxing.BarcodeFormat_AZTEC:
		return "Aztec"
	default:
		return f.String()
	}
}

// formatFromName maps a display name back to the decoder format.
func formatFromName(name string) (gozxing.BarcodeFormat, bool) {
	switch name {
	case "QR Code":
		return gozxing.BarcodeFormat_QR_CODE, true
	case "Code 128":
		return gozxing.BarcodeFormat_CODE_128, true
	case "Code 39":
		return gozxing.BarcodeFormat_CODE_39, true
	case "EAN-13":
		return gozxing.BarcodeFormat_EAN_13, true
	case "EAN-8":
		return gozxing.BarcodeFormat_EAN_8, true
	case "UPC-A":
		return gozxing.BarcodeFormat_UPC_A, true
	case "UPC-E":
		return gozxing.BarcodeFormat_UPC_E, true
	case "ITF":
		return gozxing.BarcodeFormat_ITF, true
	case "Codabar":
		return gozxing.BarcodeFormat_CODABAR, true
	case "Data Matrix":
		return gozxing.BarcodeFormat_DATA_MATRIX, true
	case "Aztec":
		return gozxing.BarcodeFormat_AZTEC, true
	default:
		return 0, false
	}
}

// Ensure ZXingEngine implements Engine
var _ Engine = (*ZXingEngine)(nil)
