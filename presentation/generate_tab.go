package presentation

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codestudio/domain/symbol"
	"codestudio/infrastructure/imageio"
)

// GenerateTab holds the controls for rendering a payload as a code image and
// saving it to disk.
type GenerateTab struct {
	bridge *UIEventBridge
	window fyne.Window
	logger *slog.Logger

	// UI components
	container    *fyne.Container
	payloadEntry *widget.Entry
	kindRadio    *widget.RadioGroup
	ecSelect     *widget.Select
	scaleSelect  *widget.Select
	generateBtn  *widget.Button
	saveBtn      *widget.Button
	preview      *CodePreview
}

// GenerateTabConfig holds configuration for GenerateTab.
type GenerateTabConfig struct {
	Bridge             *UIEventBridge
	Window             fyne.Window
	Logger             *slog.Logger
	DefaultKind        symbol.Kind
	DefaultECLevel     symbol.ECLevel
	DefaultModuleScale int
}

// NewGenerateTab creates a new generate tab.
func NewGenerateTab(cfg *GenerateTabConfig) *GenerateTab {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	t := &GenerateTab{
		bridge: cfg.Bridge,
		window: cfg.Window,
		logger: cfg.Logger,
	}

	t.payloadEntry = widget.NewMultiLineEntry()
	t.payloadEntry.SetPlaceHolder("Enter text or URL to encode")
	t.payloadEntry.Wrapping = fyne.TextWrapWord
	t.payloadEntry.SetMinRowsVisible(3)

	kindNames := make([]string, 0, len(symbol.Kinds()))
	for _, k := range symbol.Kinds() {
		kindNames = append(kindNames, k.DisplayName())
	}
	t.kindRadio = widget.NewRadioGroup(kindNames, func(selected string) {
		t.onKindChanged(selected)
	})
	t.kindRadio.Horizontal = true

	levelNames := make([]string, 0, len(symbol.ECLevels()))
	for _, l := range symbol.ECLevels() {
		levelNames = append(levelNames, l.DisplayName())
	}
	t.ecSelect = widget.NewSelect(levelNames, func(string) {})
	t.ecSelect.SetSelectedIndex(int(cfg.DefaultECLevel))

	if cfg.DefaultModuleScale <= 0 {
		cfg.DefaultModuleScale = 10
	}
	t.scaleSelect = widget.NewSelect(moduleScaleOptions(cfg.DefaultModuleScale), func(string) {})
	t.scaleSelect.SetSelected(strconv.Itoa(cfg.DefaultModuleScale))

	t.generateBtn = widget.NewButtonWithIcon("Generate", theme.ConfirmIcon(), t.handleGenerate)
	t.saveBtn = widget.NewButtonWithIcon("Save...", theme.DocumentSaveIcon(), t.handleSave)
	t.saveBtn.Disable()

	t.preview = NewCodePreview("Generated code appears here", fyne.NewSize(420, 420), true)

	t.kindRadio.SetSelected(cfg.DefaultKind.DisplayName())

	inputCard := widget.NewCard("Input", "", t.payloadEntry)
	optionsRow := container.NewHBox(
		t.kindRadio,
		widget.NewSeparator(),
		widget.NewLabel("Error correction:"),
		t.ecSelect,
		widget.NewLabel("Module size (px):"),
		t.scaleSelect,
	)
	buttonsRow := container.NewHBox(t.generateBtn, t.saveBtn)
	controls := container.NewVBox(inputCard, optionsRow, buttonsRow)

	t.container = container.NewBorder(
		controls,
		nil, nil, nil,
		widget.NewCard("Preview", "", t.preview),
	)

	return t
}

// Container returns the tab's container.
func (t *GenerateTab) Container() *fyne.Container {
	return t.container
}

func (t *GenerateTab) onKindChanged(selected string) {
	kind, err := symbol.ParseKind(selected)
	if err != nil {
		return
	}

	// Error correction and module size only apply to QR symbols.
	if kind == symbol.KindQR {
		t.ecSelect.Enable()
		t.scaleSelect.Enable()
	} else {
		t.ecSelect.Disable()
		t.scaleSelect.Disable()
	}
}

func (t *GenerateTab) handleGenerate() {
	if t.bridge == nil {
		return
	}

	scale := parseModuleScale(t.scaleSelect.Selected)
	if err := t.bridge.GenerateCode(t.payloadEntry.Text, t.kindRadio.Selected, t.ecSelect.Selected, scale); err != nil {
		t.logger.Error("Failed to dispatch generate", "error", err)
	}
}

func (t *GenerateTab) handleSave() {
	if t.bridge == nil {
		return
	}

	if !t.bridge.HasGeneratedCode() {
		dialog.ShowInformation("Warning", "No code to save! Generate a code first.", t.window)
		return
	}

	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.window)
			return
		}
		if writer == nil {
			return
		}

		path := writer.URI().Path()
		if err := writer.Close(); err != nil {
			t.logger.Warn("Failed to close save target", "path", path, "error", err)
		}

		if err := t.bridge.SaveCode(prepareSavePath(path)); err != nil {
			t.logger.Error("Failed to dispatch save", "error", err)
		}
	}, t.window)

	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
	d.SetFileName(suggestedFileName(t.kindRadio.Selected))
	d.Show()
}

// Event-driven updates, called from the main window callbacks.

// ShowGenerated displays a freshly rendered code.
func (t *GenerateTab) ShowGenerated(kind string, img image.Image) {
	t.preview.SetImage(img)
	t.saveBtn.Enable()
	dialog.ShowInformation("Success", generateSuccessMessage(kind), t.window)
}

// ShowGenerateFailed reports a failed render.
func (t *GenerateTab) ShowGenerateFailed(reason string, err error) {
	if isInputError(err) {
		dialog.ShowInformation("Warning", reason, t.window)
		return
	}
	dialog.ShowError(reasonError(reason, err), t.window)
}

// ShowSaved reports a successful save.
func (t *GenerateTab) ShowSaved(path string) {
	dialog.ShowInformation("Success", "Code saved to:\n"+path, t.window)
}

// ShowSaveFailed reports a failed save. A nil error means the save was
// rejected before touching the disk.
func (t *GenerateTab) ShowSaveFailed(reason string, err error) {
	if err == nil {
		dialog.ShowInformation("Warning", reason, t.window)
		return
	}
	dialog.ShowError(reasonError("Failed to save file:", err), t.window)
}

// SetBusy disables the action buttons while an operation is in flight.
func (t *GenerateTab) SetBusy(busy bool) {
	if busy {
		t.generateBtn.Disable()
		t.saveBtn.Disable()
		return
	}

	t.generateBtn.Enable()
	if t.bridge != nil && t.bridge.HasGeneratedCode() {
		t.saveBtn.Enable()
	}
}

// SetPayload fills the input with a payload, switching symbology when the
// format names one this tab can render.
func (t *GenerateTab) SetPayload(payload, format string) {
	t.payloadEntry.SetText(payload)

	if kind, err := symbol.ParseKind(format); err == nil {
		t.kindRadio.SetSelected(kind.DisplayName())
	}
}

// prepareSavePath normalizes a save dialog path to a writable extension.
// The dialog already created the file, so when normalization changes the
// path the stray empty original is removed.
func prepareSavePath(path string) string {
	normalized := imageio.EnsureSaveExtension(path)
	if normalized != path {
		if info, err := os.Stat(path); err == nil && info.Size() == 0 {
			os.Remove(path)
		}
	}
	return normalized
}

// moduleScaleOptions lists the selectable QR module sizes in pixels,
// keeping def selectable when it falls outside the stock choices.
func moduleScaleOptions(def int) []string {
	values := []int{5, 10, 15, 20}
	if def > 0 && !slices.Contains(values, def) {
		values = append(values, def)
		slices.Sort(values)
	}

	opts := make([]string, len(values))
	for i, v := range values {
		opts[i] = strconv.Itoa(v)
	}
	return opts
}

// parseModuleScale converts a select value to pixels. Zero defers to the
// configured default.
func parseModuleScale(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// suggestedFileName returns the default file name offered in the save dialog.
func suggestedFileName(kindDisplay string) string {
	if kind, err := symbol.ParseKind(kindDisplay); err == nil && kind == symbol.KindCode128 {
		return "code128.png"
	}
	return "qr-code.png"
}

// generateSuccessMessage returns the confirmation shown after a render.
func generateSuccessMessage(kindDisplay string) string {
	if kind, err := symbol.ParseKind(kindDisplay); err == nil && kind == symbol.KindCode128 {
		return "Barcode generated successfully!"
	}
	return "QR Code generated successfully!"
}

// isInputError reports whether err is a payload validation failure rather
// than a rendering fault.
func isInputError(err error) bool {
	return errors.Is(err, symbol.ErrEmptyPayload) ||
		errors.Is(err, symbol.ErrNotASCII) ||
		errors.Is(err, symbol.ErrPayloadTooLong) ||
		errors.Is(err, symbol.ErrUnknownKind)
}

// reasonError builds the error shown in a modal from a user-facing reason
// and the underlying cause.
func reasonError(reason string, err error) error {
	if err == nil {
		return errors.New(reason)
	}
	return fmt.Errorf("%s\n%v", reason, err)
}
