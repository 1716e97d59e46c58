package presentation

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// CodePreview is a custom widget that displays a code image, or a placeholder
// message while no image is held.
type CodePreview struct {
	widget.BaseWidget
	img         *canvas.Image
	placeholder *widget.Label
	imageMu     sync.RWMutex
}

// NewCodePreview creates a new preview area. crisp selects nearest-neighbour
// scaling so module edges stay sharp when the image is resized.
func NewCodePreview(placeholder string, minSize fyne.Size, crisp bool) *CodePreview {
	p := &CodePreview{
		img:         canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
		placeholder: widget.NewLabel(placeholder),
	}
	p.ExtendBaseWidget(p)

	p.img.FillMode = canvas.ImageFillContain
	if crisp {
		p.img.ScaleMode = canvas.ImageScalePixels
	}
	p.img.SetMinSize(minSize)
	p.img.Hide()

	p.placeholder.Alignment = fyne.TextAlignCenter
	p.placeholder.Wrapping = fyne.TextWrapWord

	return p
}

// SetImage sets the displayed image and hides the placeholder.
func (p *CodePreview) SetImage(img image.Image) {
	if img == nil {
		return
	}
	p.imageMu.Lock()
	p.img.Image = img
	p.imageMu.Unlock()

	p.placeholder.Hide()
	p.img.Show()
	p.img.Refresh()
	p.Refresh()
}

// GetImage returns the current image, or nil if none is held.
func (p *CodePreview) GetImage() image.Image {
	p.imageMu.RLock()
	defer p.imageMu.RUnlock()
	if p.img.Hidden {
		return nil
	}
	return p.img.Image
}

// Clear removes the image and shows the placeholder again.
func (p *CodePreview) Clear() {
	p.imageMu.Lock()
	p.img.Image = image.NewRGBA(image.Rect(0, 0, 1, 1))
	p.imageMu.Unlock()

	p.img.Hide()
	p.placeholder.Show()
	p.Refresh()
}

// CreateRenderer creates the widget renderer.
func (p *CodePreview) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(
		container.NewCenter(p.placeholder),
		p.img,
	))
}
