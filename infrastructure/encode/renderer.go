// Package encode renders payloads as QR code and Code128 barcode images.
// Symbol construction is delegated to the go-qrcode and boombuler/barcode
// libraries; this package only sizes and frames their output.
package encode

import (
	"context"
	"image"

	"codestudio/domain/symbol"
)

// Options controls how a symbol is rendered.
type Options struct {
	// ECLevel is the QR error correction level. Code128 ignores it.
	ECLevel symbol.ECLevel

	// ModuleScale is the QR module size in pixels.
	ModuleScale int

	// QuietZone is the white margin in pixels drawn around Code128 bars.
	// QR images carry the symbology's own 4-module quiet zone instead.
	QuietZone int

	// BarHeight is the Code128 bar height in pixels.
	BarHeight int

	// BarScale is the Code128 module width in pixels.
	BarScale int
}

// DefaultOptions returns the rendering defaults: error correction L,
// 10 px QR modules, and 120 px bars at 2 px per module behind a 16 px
// quiet zone.
func DefaultOptions() Options {
	return Options{
		ECLevel:     symbol.ECLow,
		ModuleScale: 10,
		QuietZone:   16,
		BarHeight:   120,
		BarScale:    2,
	}
}

// normalize replaces non-positive values with the defaults.
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.ModuleScale <= 0 {
		o.ModuleScale = def.ModuleScale
	}
	if o.QuietZone < 0 {
		o.QuietZone = def.QuietZone
	}
	if o.BarHeight <= 0 {
		o.BarHeight = def.BarHeight
	}
	if o.BarScale <= 0 {
		o.BarScale = def.BarScale
	}
	return o
}

// Request describes one symbol to render.
type Request struct {
	Kind    symbol.Kind
	Payload string
	Options Options
}

// Renderer turns a request into a black-on-white symbol image.
type Renderer interface {
	// Render produces the symbol image for the request.
	Render(ctx context.Context, req Request) (image.Image, error)
}
