// Package presentation provides the UI layer with event bridging to the application layer.
package presentation

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"codestudio/application"
	"codestudio/core/command"
	"codestudio/core/event"
	"codestudio/core/eventbus"
	"codestudio/core/state"
	"codestudio/domain/history"
)

// UIEventBridge bridges UI actions to the application layer and routes events
// back to UI callbacks. It keeps the widgets free of any bus plumbing.
type UIEventBridge struct {
	coordinator *application.Coordinator
	eventBus    eventbus.EventBus
	logger      *slog.Logger

	// UI callbacks - set by UI components
	callbacks   *UICallbacks
	callbacksMu sync.RWMutex

	// Subscription management
	subscriptionID string
}

// UICallbacks contains callbacks for UI updates.
type UICallbacks struct {
	// Generator events
	OnCodeGenerated  func(kind, payload string, img image.Image)
	OnGenerateFailed func(reason string, err error)
	OnCodeSaved      func(path string)
	OnSaveFailed     func(reason string, err error)

	// Scanner events
	OnScanImageLoaded func(path string, img image.Image, width, height int, format string)
	OnScanCompleted   func(detections []event.Detection, patternHint bool, elapsed time.Duration)
	OnScanFailed      func(stage, reason string, err error)

	// Studio events
	OnStateChanged   func(oldState, newState state.StudioState)
	OnHistoryUpdated func(count int)
}

// BridgeConfig holds configuration for UIEventBridge.
type BridgeConfig struct {
	Coordinator *application.Coordinator
	EventBus    eventbus.EventBus
	Logger      *slog.Logger
}

// NewUIEventBridge creates a new UI event bridge.
func NewUIEventBridge(cfg *BridgeConfig) *UIEventBridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &UIEventBridge{
		coordinator: cfg.Coordinator,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger,
		callbacks:   &UICallbacks{},
	}

	if b.eventBus != nil {
		b.subscriptionID = b.eventBus.Subscribe(b.handleEvent)
	}

	return b
}

// SetCallbacks sets the UI callbacks.
func (b *UIEventBridge) SetCallbacks(callbacks *UICallbacks) {
	b.callbacksMu.Lock()
	defer b.callbacksMu.Unlock()
	b.callbacks = callbacks
}

// Close unsubscribes from the event bus.
func (b *UIEventBridge) Close() {
	if b.eventBus != nil && b.subscriptionID != "" {
		b.eventBus.Unsubscribe(b.subscriptionID)
	}
}

// Command dispatching methods

// GenerateCode renders the payload as the given symbology. moduleScale is
// the QR module size in pixels; zero keeps the configured default.
func (b *UIEventBridge) GenerateCode(payload, kind, ecLevel string, moduleScale int) error {
	cmd := command.NewGenerateCode(uuid.NewString(), payload, kind, ecLevel)
	cmd.ModuleScale = moduleScale
	return b.coordinator.Dispatch(cmd)
}

// SaveCode writes the held generated image to the given path.
func (b *UIEventBridge) SaveCode(path string) error {
	return b.coordinator.Dispatch(command.NewSaveCode(uuid.NewString(), path))
}

// ScanFile loads an image file and decodes any codes in it.
func (b *UIEventBridge) ScanFile(path string, tryHarder bool) error {
	return b.coordinator.Dispatch(command.NewScanFile(uuid.NewString(), path, tryHarder))
}

// RescanImage decodes the held scan image again.
func (b *UIEventBridge) RescanImage(tryHarder bool) error {
	return b.coordinator.Dispatch(command.NewRescanImage(uuid.NewString(), tryHarder))
}

// Query methods

// State returns the studio's current state.
func (b *UIEventBridge) State() state.StudioState {
	return b.coordinator.State()
}

// HasGeneratedCode reports whether a generated code is held for saving.
func (b *UIEventBridge) HasGeneratedCode() bool {
	return b.coordinator.HasGeneratedCode()
}

// HistoryEnabled reports whether history is wired in.
func (b *UIEventBridge) HistoryEnabled() bool {
	return b.coordinator.HistoryEnabled()
}

// HistoryRecords returns the stored history, newest first.
func (b *UIEventBridge) HistoryRecords() ([]*history.Record, error) {
	return b.coordinator.HistoryRecords()
}

// RemoveHistory deletes a single history record.
func (b *UIEventBridge) RemoveHistory(id string) error {
	return b.coordinator.RemoveHistory(id)
}

// ClearHistory deletes all history records.
func (b *UIEventBridge) ClearHistory() error {
	return b.coordinator.ClearHistory()
}

// Event handling

func (b *UIEventBridge) handleEvent(e event.Event) {
	b.callbacksMu.RLock()
	callbacks := b.callbacks
	b.callbacksMu.RUnlock()

	if callbacks == nil {
		return
	}

	switch evt := e.(type) {
	case *event.CodeGenerated:
		if callbacks.OnCodeGenerated != nil {
			callbacks.OnCodeGenerated(evt.Kind, evt.Payload, evt.Image)
		}

	case *event.GenerateFailed:
		if callbacks.OnGenerateFailed != nil {
			callbacks.OnGenerateFailed(evt.Reason, evt.Error)
		}

	case *event.CodeSaved:
		if callbacks.OnCodeSaved != nil {
			callbacks.OnCodeSaved(evt.Path)
		}

	case *event.SaveFailed:
		if callbacks.OnSaveFailed != nil {
			callbacks.OnSaveFailed(evt.Reason, evt.Error)
		}

	case *event.ScanImageLoaded:
		if callbacks.OnScanImageLoaded != nil {
			callbacks.OnScanImageLoaded(evt.Path, evt.Image, evt.Width, evt.Height, evt.Format)
		}

	case *event.ScanCompleted:
		if callbacks.OnScanCompleted != nil {
			callbacks.OnScanCompleted(evt.Detections, evt.PatternHint, evt.Elapsed)
		}

	case *event.ScanFailed:
		if callbacks.OnScanFailed != nil {
			callbacks.OnScanFailed(evt.Stage, evt.Reason, evt.Error)
		}

	case *event.StudioStateChanged:
		if callbacks.OnStateChanged != nil {
			callbacks.OnStateChanged(evt.OldState, evt.NewState)
		}

	case *event.HistoryUpdated:
		if callbacks.OnHistoryUpdated != nil {
			callbacks.OnHistoryUpdated(evt.Count)
		}
	}
}
