package encode

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/skip2/go-qrcode"

	"codestudio/domain/symbol"
)

// LibraryRenderer implements Renderer on top of go-qrcode and
// boombuler/barcode.
type LibraryRenderer struct{}

// NewLibraryRenderer creates a new LibraryRenderer.
func NewLibraryRenderer() *LibraryRenderer {
	return &LibraryRenderer{}
}

// Render produces the symbol image for the request. The payload is validated
// against the symbology rules before any library call.
func (r *LibraryRenderer) Render(ctx context.Context, req Request) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := symbol.Validate(req.Payload, req.Kind, req.Options.ECLevel); err != nil {
		return nil, err
	}

	opts := req.Options.normalize()

	switch req.Kind {
	case symbol.KindQR:
		return renderQR(req.Payload, opts)
	case symbol.KindCode128:
		return renderCode128(req.Payload, opts)
	default:
		return nil, symbol.ErrUnknownKind
	}
}

// renderQR draws the payload as a QR symbol. A negative size asks the
// library for a variable-sized image at |size| pixels per module, which
// keeps modules crisp regardless of payload length.
func renderQR(payload string, opts Options) (image.Image, error) {
	qr, err := qrcode.New(payload, recoveryLevel(opts.ECLevel))
	if err != nil {
		return nil, fmt.Errorf("creating qr symbol: %w", err)
	}

	return qr.Image(-opts.ModuleScale), nil
}

// renderCode128 draws the payload as Code128 bars centered on a white
// canvas. The canvas margin doubles as the quiet zone 1D decoders need.
func renderCode128(payload string, opts Options) (image.Image, error) {
	bc, err := code128.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding code128: %w", err)
	}

	width := bc.Bounds().Dx() * opts.BarScale
	scaled, err := barcode.Scale(bc, width, opts.BarHeight)
	if err != nil {
		return nil, fmt.Errorf("scaling code128: %w", err)
	}

	return frame(scaled, opts.QuietZone), nil
}

// frame copies the symbol onto a white canvas with a margin on all sides.
func frame(img image.Image, margin int) image.Image {
	if margin <= 0 {
		return img
	}

	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx()+2*margin, b.Dy()+2*margin))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(margin, margin, margin+b.Dx(), margin+b.Dy()), img, b.Min, draw.Src)
	return canvas
}

// recoveryLevel maps the domain error correction level onto the library's.
func recoveryLevel(level symbol.ECLevel) qrcode.RecoveryLevel {
	switch level {
	case symbol.ECMedium:
		return qrcode.Medium
	case symbol.ECQuartile:
		return qrcode.High
	case symbol.ECHigh:
		return qrcode.Highest
	default:
		return qrcode.Low
	}
}

var _ Renderer = (*LibraryRenderer)(nil)
