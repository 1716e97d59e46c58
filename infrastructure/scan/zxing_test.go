package scan

import (
	"context"
	"image"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codestudio/domain/symbol"
	"codestudio/infrastructure/encode"
)

func renderSymbol(t *testing.T, kind symbol.Kind, payload string) image.Image {
	t.Helper()
	img, err := encode.NewLibraryRenderer().Render(context.Background(), encode.Request{
		Kind:    kind,
		Payload: payload,
		Options: encode.DefaultOptions(),
	})
	require.NoError(t, err)
	return img
}

func TestZXingEngine_QRRoundTrip(t *testing.T) {
	img := renderSymbol(t, symbol.KindQR, "https://example.com/r/42")

	report, err := NewZXingEngine().Detect(context.Background(), img, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, report.Detections, 1)

	d := report.Detections[0]
	assert.Equal(t, "QR Code", d.Format)
	assert.Equal(t, "https://example.com/r/42", d.Payload)
	assert.False(t, report.PatternHint)
	assert.Positive(t, report.Elapsed)
}

func TestZXingEngine_Code128RoundTrip(t *testing.T) {
	img := renderSymbol(t, symbol.KindCode128, "PKG-2024-00173")

	report, err := NewZXingEngine().Detect(context.Background(), img, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, report.Detections, 1)

	d := report.Detections[0]
	assert.Equal(t, "Code 128", d.Format)
	assert.Equal(t, "PKG-2024-00173", d.Payload)
}

func TestZXingEngine_BlankImage(t *testing.T) {
	report, err := NewZXingEngine().Detect(context.Background(), whiteCanvas(200, 200), DefaultOptions())
	require.NoError(t, err)

	assert.True(t, report.Empty())
	assert.False(t, report.PatternHint)
}

func TestZXingEngine_PatternHintOnUndecodableBars(t *testing.T) {
	// Uniform stripes look like a barcode but carry no valid symbology.
	img := whiteCanvas(400, 120)
	drawStripes(img, 50, 30, 300, 60, 4, 4)

	report, err := NewZXingEngine().Detect(context.Background(), img, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, report.Empty())
	assert.True(t, report.PatternHint)
}

func TestZXingEngine_FormatFilter(t *testing.T) {
	img := renderSymbol(t, symbol.KindQR, "filtered out")

	opts := Options{TryHarder: true, Formats: []string{"Code 128"}}
	report, err := NewZXingEngine().Detect(context.Background(), img, opts)
	require.NoError(t, err)

	assert.True(t, report.Empty())
}

func TestZXingEngine_NilImage(t *testing.T) {
	_, err := NewZXingEngine().Detect(context.Background(), nil, DefaultOptions())
	assert.Error(t, err)
}

func TestZXingEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewZXingEngine().Detect(ctx, whiteCanvas(50, 50), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_Empty(t *testing.T) {
	assert.True(t, (*Report)(nil).Empty())
	assert.True(t, (&Report{}).Empty())
	assert.False(t, (&Report{Detections: []Detection{{Format: "QR Code"}}}).Empty())
}

func TestFormatNameMapping(t *testing.T) {
	for _, name := range []string{
		"QR Code", "Code 128", "Code 39", "EAN-13", "EAN-8",
		"UPC-A", "UPC-E", "ITF", "Codabar", "Data Matrix", "Aztec",
	} {
		f, ok := formatFromName(name)
		require.True(t, ok, "format %q should map", name)
		assert.Equal(t, name, formatName(f))
	}

	_, ok := formatFromName("Morse")
	assert.False(t, ok)
}

func TestFormatPassesCoverSelectableFormats(t *testing.T) {
	covered := map[string]bool{"QR Code": true}
	for _, pass := range formatPasses(nil) {
		require.NotNil(t, pass.reader)
		for _, name := range pass.formats {
			covered[name] = true
		}
	}

	// Every format the engine can be asked for has a reader behind it.
	for _, name := range []string{
		"QR Code", "Code 128", "Code 39", "EAN-13", "EAN-8",
		"UPC-A", "UPC-E", "ITF", "Codabar", "Data Matrix", "Aztec",
	} {
		assert.True(t, covered[name], "no reader covers %q", name)
		_, ok := formatFromName(name)
		assert.True(t, ok)
	}
}

func TestZXingEngine_MixedSymbologies(t *testing.T) {
	qr := renderSymbol(t, symbol.KindQR, "mixed-qr")
	bar := renderSymbol(t, symbol.KindCode128, "MIXED128")

	// Stacked vertically so the barcode's scan rows stay clear of the QR.
	canvas := whiteCanvas(max(qr.Bounds().Dx(), bar.Bounds().Dx())+80,
		qr.Bounds().Dy()+bar.Bounds().Dy()+120)
	draw.Draw(canvas, qr.Bounds().Add(image.Pt(40, 40)), qr, qr.Bounds().Min, draw.Src)
	draw.Draw(canvas, bar.Bounds().Add(image.Pt(40, qr.Bounds().Dy()+80)), bar, bar.Bounds().Min, draw.Src)

	opts := Options{TryHarder: true, Formats: []string{"QR Code", "Code 128"}}
	report, err := NewZXingEngine().Detect(context.Background(), canvas, opts)
	require.NoError(t, err)
	require.Len(t, report.Detections, 2)

	// QR results are ordered ahead of 1D hits.
	assert.Equal(t, "QR Code", report.Detections[0].Format)
	assert.Equal(t, "mixed-qr", report.Detections[0].Payload)
	assert.Equal(t, "Code 128", report.Detections[1].Format)
	assert.Equal(t, "MIXED128", report.Detections[1].Payload)
}

func TestBoundsOf(t *testing.T) {
	assert.Equal(t, image.Rectangle{}, boundsOf(nil))

	pts := []image.Point{{X: 10, Y: 20}, {X: 40, Y: 5}, {X: 25, Y: 30}}
	assert.Equal(t, image.Rect(10, 5, 41, 31), boundsOf(pts))
}
