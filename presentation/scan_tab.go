package presentation

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codestudio/core/event"
	"codestudio/infrastructure/imageio"
)

// scanTips is appended to the result text whenever nothing could be decoded.
const scanTips = "Tips:\n" +
	"• Make sure the code is clear and visible\n" +
	"• Try a higher resolution image\n" +
	"• Ensure good lighting and contrast\n" +
	"• Make sure the code is not distorted"

// ScanTab holds the controls for loading an image and decoding the codes in it.
type ScanTab struct {
	bridge *UIEventBridge
	window fyne.Window
	logger *slog.Logger

	// UI components
	container      *fyne.Container
	openBtn        *widget.Button
	rescanBtn      *widget.Button
	tryHarderCheck *widget.Check
	fileLabel      *widget.Label
	preview        *CodePreview
	resultArea     *widget.Entry

	// State
	hasImage bool
}

// ScanTabConfig holds configuration for ScanTab.
type ScanTabConfig struct {
	Bridge    *UIEventBridge
	Window    fyne.Window
	Logger    *slog.Logger
	TryHarder bool
}

// NewScanTab creates a new scan tab.
func NewScanTab(cfg *ScanTabConfig) *ScanTab {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	t := &ScanTab{
		bridge: cfg.Bridge,
		window: cfg.Window,
		logger: cfg.Logger,
	}

	t.openBtn = widget.NewButtonWithIcon("Open Image...", theme.FolderOpenIcon(), t.handleOpen)

	t.rescanBtn = widget.NewButtonWithIcon("Rescan", theme.ViewRefreshIcon(), t.handleRescan)
	t.rescanBtn.Disable()

	t.tryHarderCheck = widget.NewCheck("Try harder", func(bool) {})
	t.tryHarderCheck.SetChecked(cfg.TryHarder)

	t.fileLabel = widget.NewLabel("")
	t.fileLabel.Truncation = fyne.TextTruncateEllipsis

	t.preview = NewCodePreview("Drop an image here or use Open Image...", fyne.NewSize(400, 280), false)

	t.resultArea = widget.NewMultiLineEntry()
	t.resultArea.Wrapping = fyne.TextWrapWord
	t.resultArea.Disable()

	controls := container.NewVBox(
		container.NewHBox(t.openBtn, t.rescanBtn, t.tryHarderCheck),
		t.fileLabel,
	)

	split := container.NewVSplit(
		widget.NewCard("Image", "", t.preview),
		widget.NewCard("Results", "", t.resultArea),
	)
	split.SetOffset(0.55)

	t.container = container.NewBorder(controls, nil, nil, nil, split)

	return t
}

// Container returns the tab's container.
func (t *ScanTab) Container() *fyne.Container {
	return t.container
}

func (t *ScanTab) handleOpen() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.window)
			return
		}
		if reader == nil {
			return
		}

		path := reader.URI().Path()
		if err := reader.Close(); err != nil {
			t.logger.Warn("Failed to close scan source", "path", path, "error", err)
		}

		t.scan(path)
	}, t.window)

	d.SetFilter(storage.NewExtensionFileFilter(imageio.SupportedExtensions))
	d.Show()
}

func (t *ScanTab) handleRescan() {
	if t.bridge == nil {
		return
	}

	if err := t.bridge.RescanImage(t.tryHarderCheck.Checked); err != nil {
		t.logger.Error("Failed to dispatch rescan", "error", err)
	}
}

// OpenPath scans an image file, used for both the open dialog and files
// dropped onto the window.
func (t *ScanTab) OpenPath(path string) {
	if !imageio.IsSupported(path) {
		dialog.ShowInformation("Warning",
			fmt.Sprintf("Unsupported file type: %s", filepath.Ext(path)), t.window)
		return
	}
	t.scan(path)
}

func (t *ScanTab) scan(path string) {
	if t.bridge == nil {
		return
	}

	if err := t.bridge.ScanFile(path, t.tryHarderCheck.Checked); err != nil {
		t.logger.Error("Failed to dispatch scan", "error", err)
	}
}

// Event-driven updates, called from the main window callbacks.

// ShowLoaded displays the loaded image thumbnail and its file facts.
func (t *ScanTab) ShowLoaded(path string, img image.Image, width, height int, format string) {
	if img != nil {
		t.preview.SetImage(img)
	}
	t.fileLabel.SetText(formatFileInfo(path, width, height, format))
	t.hasImage = true
	t.rescanBtn.Enable()
}

// ShowResults renders the scan outcome into the result area.
func (t *ScanTab) ShowResults(detections []event.Detection, patternHint bool, elapsed time.Duration) {
	t.resultArea.SetText(formatScanResults(detections, patternHint))

	if len(detections) > 0 {
		dialog.ShowInformation("Success", "Code detected successfully!", t.window)
		return
	}
	dialog.ShowInformation("Warning", "No code found in the image!", t.window)
}

// ShowScanFailed reports a failed scan. A nil error means the scan was
// rejected before any work started.
func (t *ScanTab) ShowScanFailed(stage, reason string, err error) {
	if err == nil {
		dialog.ShowInformation("Warning", reason, t.window)
		return
	}

	switch stage {
	case "load":
		dialog.ShowError(reasonError("Failed to scan code:", errors.New(reason)), t.window)
		t.resultArea.SetText("Error: " + reason)
	default:
		dialog.ShowError(reasonError(reason, err), t.window)
		t.resultArea.SetText(fmt.Sprintf("Error: %v", err))
	}
}

// SetBusy disables the action buttons while an operation is in flight.
func (t *ScanTab) SetBusy(busy bool) {
	if busy {
		t.openBtn.Disable()
		t.rescanBtn.Disable()
		return
	}

	t.openBtn.Enable()
	if t.hasImage {
		t.rescanBtn.Enable()
	}
}

// formatScanResults builds the text shown in the results area.
func formatScanResults(detections []event.Detection, patternHint bool) string {
	if len(detections) == 0 {
		if patternHint {
			return "⚠ Barcode-like pattern detected!\n" +
				"It could not be decoded.\n\n" + scanTips
		}
		return "❌ No QR code or Barcode found in the image!\n\n" + scanTips
	}

	var b strings.Builder
	for _, d := range detections {
		if d.Format == "QR Code" {
			b.WriteString("✓ QR Code Found!\n")
		} else {
			b.WriteString("✓ Barcode Found!\n")
		}
		fmt.Fprintf(&b, "Type: %s\n", d.Format)
		fmt.Fprintf(&b, "Data: %s\n", d.Payload)
		b.WriteString(strings.Repeat("-", 50))
		b.WriteString("\n")
	}
	return b.String()
}

// formatFileInfo builds the one-line summary shown under the scan controls.
func formatFileInfo(path string, width, height int, format string) string {
	return fmt.Sprintf("%s (%dx%d, %s)", filepath.Base(path), width, height, format)
}
