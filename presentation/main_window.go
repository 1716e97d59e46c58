package presentation

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codestudio/core/event"
	"codestudio/core/eventbus"
	"codestudio/core/state"
	"codestudio/domain/symbol"
	"codestudio/infrastructure/config"
)

// MainWindow is the top-level application window with the generate,
// scan and history tabs.
type MainWindow struct {
	window fyne.Window
	bridge *UIEventBridge
	logger *slog.Logger

	// UI components
	tabs         *container.AppTabs
	generateTab  *GenerateTab
	scanTab      *ScanTab
	historyPanel *HistoryPanel
	generateItem *container.TabItem
	scanItem     *container.TabItem
	statusLabel  *widget.Label

	cleanupOnce sync.Once
}

// MainWindowConfig holds configuration for MainWindow.
type MainWindowConfig struct {
	App      fyne.App
	Bridge   *UIEventBridge
	EventBus eventbus.EventBus
	Logger   *slog.Logger
	Settings *config.Settings
}

// NewMainWindow creates a new main window.
func NewMainWindow(cfg *MainWindowConfig) *MainWindow {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}

	w := &MainWindow{
		window: cfg.App.NewWindow("Code Studio"),
		bridge: cfg.Bridge,
		logger: cfg.Logger,
	}

	w.init(cfg)
	w.setupEventCallbacks()

	w.window.SetOnClosed(func() {
		w.Cleanup()
		cfg.App.Quit()
	})

	return w
}

func (w *MainWindow) init(cfg *MainWindowConfig) {
	defaultKind, err := symbol.ParseKind(cfg.Settings.Generate.DefaultKind)
	if err != nil {
		defaultKind = symbol.KindQR
	}
	defaultEC, err := symbol.ParseECLevel(cfg.Settings.Generate.ECLevel)
	if err != nil {
		defaultEC = symbol.ECLow
	}

	w.generateTab = NewGenerateTab(&GenerateTabConfig{
		Bridge:             w.bridge,
		Window:             w.window,
		Logger:             w.logger,
		DefaultKind:        defaultKind,
		DefaultECLevel:     defaultEC,
		DefaultModuleScale: cfg.Settings.Generate.ModuleScale,
	})

	w.scanTab = NewScanTab(&ScanTabConfig{
		Bridge:    w.bridge,
		Window:    w.window,
		Logger:    w.logger,
		TryHarder: cfg.Settings.Scan.TryHarder,
	})

	w.generateItem = container.NewTabItemWithIcon("Generate", theme.DocumentCreateIcon(), w.generateTab.Container())
	w.scanItem = container.NewTabItemWithIcon("Scan", theme.SearchIcon(), w.scanTab.Container())
	w.tabs = container.NewAppTabs(w.generateItem, w.scanItem)

	if w.bridge != nil && w.bridge.HistoryEnabled() {
		w.historyPanel = NewHistoryPanel(&HistoryPanelConfig{
			Bridge:   w.bridge,
			EventBus: cfg.EventBus,
			Window:   w.window,
			Logger:   w.logger,
			OnUse:    w.useHistoryRecord,
		})
		w.tabs.Append(container.NewTabItemWithIcon("History", theme.HistoryIcon(), w.historyPanel.Container()))
	}

	w.tabs.SetTabLocation(container.TabLocationTop)

	w.statusLabel = widget.NewLabel(statusText(state.StateIdle))
	w.window.SetContent(container.NewBorder(nil, w.statusLabel, nil, nil, w.tabs))
	w.window.Resize(fyne.NewSize(
		float32(cfg.Settings.Window.Width),
		float32(cfg.Settings.Window.Height),
	))

	// Images dropped anywhere on the window go to the scan tab.
	w.window.SetOnDropped(func(pos fyne.Position, uris []fyne.URI) {
		if len(uris) == 0 {
			return
		}
		w.tabs.Select(w.scanItem)
		w.scanTab.OpenPath(uris[0].Path())
	})
}

func (w *MainWindow) setupEventCallbacks() {
	if w.bridge == nil {
		return
	}

	w.bridge.SetCallbacks(&UICallbacks{
		OnCodeGenerated: func(kind, payload string, img image.Image) {
			w.logger.Debug("Code generated", "kind", kind)
			// UI update must run on main thread
			fyne.Do(func() {
				w.generateTab.ShowGenerated(kind, img)
			})
		},
		OnGenerateFailed: func(reason string, err error) {
			w.logger.Warn("Generate failed", "reason", reason, "error", err)
			// UI update must run on main thread
			fyne.Do(func() {
				w.generateTab.ShowGenerateFailed(reason, err)
			})
		},
		OnCodeSaved: func(path string) {
			w.logger.Info("Code saved", "path", path)
			// UI update must run on main thread
			fyne.Do(func() {
				w.generateTab.ShowSaved(path)
			})
		},
		OnSaveFailed: func(reason string, err error) {
			w.logger.Warn("Save failed", "reason", reason, "error", err)
			// UI update must run on main thread
			fyne.Do(func() {
				w.generateTab.ShowSaveFailed(reason, err)
			})
		},
		OnScanImageLoaded: func(path string, img image.Image, width, height int, format string) {
			w.logger.Debug("Scan image loaded", "path", path, "width", width, "height", height)
			// UI update must run on main thread
			fyne.Do(func() {
				w.scanTab.ShowLoaded(path, img, width, height, format)
			})
		},
		OnScanCompleted: func(detections []event.Detection, patternHint bool, elapsed time.Duration) {
			w.logger.Info("Scan completed", "detections", len(detections), "elapsed", elapsed)
			// UI update must run on main thread
			fyne.Do(func() {
				w.scanTab.ShowResults(detections, patternHint, elapsed)
			})
		},
		OnScanFailed: func(stage, reason string, err error) {
			w.logger.Warn("Scan failed", "stage", stage, "reason", reason, "error", err)
			// UI update must run on main thread
			fyne.Do(func() {
				w.scanTab.ShowScanFailed(stage, reason, err)
			})
		},
		OnStateChanged: func(oldState, newState state.StudioState) {
			w.logger.Debug("State changed", "from", oldState, "to", newState)
			// UI update must run on main thread
			fyne.Do(func() {
				busy := newState.IsBusy()
				w.generateTab.SetBusy(busy)
				w.scanTab.SetBusy(busy)
				w.statusLabel.SetText(statusText(newState))
			})
		},
	})
}

// statusText maps a studio state to the status bar caption.
func statusText(s state.StudioState) string {
	switch s {
	case state.StateGenerating:
		return "Generating code..."
	case state.StateSaving:
		return "Saving..."
	case state.StateLoading:
		return "Loading image..."
	case state.StateScanning:
		return "Scanning..."
	case state.StateShuttingDown, state.StateStopped:
		return "Shutting down..."
	default:
		return "Ready"
	}
}

// useHistoryRecord fills the generate tab from a history record and
// switches to it.
func (w *MainWindow) useHistoryRecord(payload, format string) {
	w.generateTab.SetPayload(payload, format)
	w.tabs.Select(w.generateItem)
}

// Show displays the main window.
func (w *MainWindow) Show() {
	w.window.Show()
}

// Cleanup releases resources.
func (w *MainWindow) Cleanup() {
	w.cleanupOnce.Do(func() {
		w.logger.Info("Starting cleanup...")

		if w.historyPanel != nil {
			w.historyPanel.Close()
		}
		if w.bridge != nil {
			w.bridge.Close()
		}

		w.logger.Info("Cleanup completed")
	})
}
