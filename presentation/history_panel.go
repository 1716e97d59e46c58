package presentation

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codestudio/core/event"
	"codestudio/core/eventbus"
	"codestudio/domain/history"
)

// HistoryPanel lists previously generated and scanned payloads.
type HistoryPanel struct {
	bridge   *UIEventBridge
	eventBus eventbus.EventBus
	window   fyne.Window
	logger   *slog.Logger

	// Callbacks
	onUse func(payload, format string)

	// UI components
	container  *fyne.Container
	list       *widget.List
	countLabel *widget.Label
	copyBtn    *widget.Button
	useBtn     *widget.Button
	deleteBtn  *widget.Button
	clearBtn   *widget.Button

	// Data
	records   []*history.Record
	recordsMu sync.RWMutex
	selected  int

	// Subscription management
	subscriptionID string
}

// HistoryPanelConfig holds configuration for HistoryPanel.
type HistoryPanelConfig struct {
	Bridge   *UIEventBridge
	EventBus eventbus.EventBus
	Window   fyne.Window
	Logger   *slog.Logger
	OnUse    func(payload, format string)
}

// NewHistoryPanel creates a new history panel.
func NewHistoryPanel(cfg *HistoryPanelConfig) *HistoryPanel {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := &HistoryPanel{
		bridge:   cfg.Bridge,
		eventBus: cfg.EventBus,
		window:   cfg.Window,
		logger:   cfg.Logger,
		onUse:    cfg.OnUse,
		selected: -1,
	}

	p.list = widget.NewList(
		func() int {
			p.recordsMu.RLock()
			defer p.recordsMu.RUnlock()
			return len(p.records)
		},
		func() fyne.CanvasObject {
			return p.createItem()
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			p.updateItem(id, item)
		},
	)
	p.list.OnSelected = func(id widget.ListItemID) {
		p.selected = id
		p.updateButtons()
	}
	p.list.OnUnselected = func(id widget.ListItemID) {
		if p.selected == id {
			p.selected = -1
		}
		p.updateButtons()
	}

	p.countLabel = widget.NewLabel("No records")

	p.copyBtn = widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), p.handleCopy)
	p.useBtn = widget.NewButtonWithIcon("Use in Generator", theme.ConfirmIcon(), p.handleUse)
	p.deleteBtn = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), p.handleDelete)
	p.clearBtn = widget.NewButtonWithIcon("Clear All", theme.DeleteIcon(), p.handleClear)
	p.updateButtons()

	toolbar := container.NewHBox(
		p.copyBtn,
		p.useBtn,
		p.deleteBtn,
		layout.NewSpacer(),
		p.clearBtn,
	)

	p.container = container.NewBorder(
		toolbar,
		p.countLabel,
		nil, nil,
		p.list,
	)

	// Refresh whenever the studio records something new.
	if p.eventBus != nil {
		p.subscriptionID = p.eventBus.SubscribeNamed("HistoryUpdated", func(e event.Event) {
			// UI update must run on main thread
			fyne.Do(func() {
				p.Reload()
			})
		})
	}

	p.Reload()

	return p
}

// Container returns the panel's container.
func (p *HistoryPanel) Container() *fyne.Container {
	return p.container
}

// Close unsubscribes from the event bus.
func (p *HistoryPanel) Close() {
	if p.eventBus != nil && p.subscriptionID != "" {
		p.eventBus.Unsubscribe(p.subscriptionID)
	}
}

// Reload refetches the records and refreshes the list.
func (p *HistoryPanel) Reload() {
	if p.bridge == nil {
		return
	}

	records, err := p.bridge.HistoryRecords()
	if err != nil {
		p.logger.Error("Failed to load history", "error", err)
		return
	}

	p.recordsMu.Lock()
	p.records = records
	p.recordsMu.Unlock()

	p.selected = -1
	p.list.UnselectAll()
	p.list.Refresh()
	p.countLabel.SetText(recordCountText(len(records)))
	p.updateButtons()
}

func (p *HistoryPanel) createItem() fyne.CanvasObject {
	format := widget.NewLabel("Format")
	format.TextStyle = fyne.TextStyle{Bold: true}

	payload := widget.NewLabel("Payload")

	source := widget.NewLabel("source")
	source.TextStyle = fyne.TextStyle{Italic: true}

	age := widget.NewLabel("age")

	return container.NewHBox(format, payload, layout.NewSpacer(), source, age)
}

func (p *HistoryPanel) updateItem(id widget.ListItemID, item fyne.CanvasObject) {
	p.recordsMu.RLock()
	defer p.recordsMu.RUnlock()

	if id >= len(p.records) {
		return
	}
	r := p.records[id]

	row := item.(*fyne.Container)
	row.Objects[0].(*widget.Label).SetText(r.Format)
	row.Objects[1].(*widget.Label).SetText(truncatePayload(r.Payload, 48))
	row.Objects[3].(*widget.Label).SetText(string(r.Source))
	row.Objects[4].(*widget.Label).SetText(formatAge(r.CreatedAt, time.Now()))
}

func (p *HistoryPanel) selectedRecord() *history.Record {
	p.recordsMu.RLock()
	defer p.recordsMu.RUnlock()

	if p.selected < 0 || p.selected >= len(p.records) {
		return nil
	}
	return p.records[p.selected]
}

func (p *HistoryPanel) updateButtons() {
	hasSelection := p.selectedRecord() != nil

	p.recordsMu.RLock()
	hasRecords := len(p.records) > 0
	p.recordsMu.RUnlock()

	setEnabled(p.copyBtn, hasSelection)
	setEnabled(p.useBtn, hasSelection)
	setEnabled(p.deleteBtn, hasSelection)
	setEnabled(p.clearBtn, hasRecords)
}

func (p *HistoryPanel) handleCopy() {
	r := p.selectedRecord()
	if r == nil {
		return
	}
	p.window.Clipboard().SetContent(r.Payload)
}

func (p *HistoryPanel) handleUse() {
	r := p.selectedRecord()
	if r == nil || p.onUse == nil {
		return
	}
	p.onUse(r.Payload, r.Format)
}

func (p *HistoryPanel) handleDelete() {
	r := p.selectedRecord()
	if r == nil {
		return
	}

	dialog.ShowConfirm("Delete Record", "Delete the selected history record?", func(confirmed bool) {
		if !confirmed {
			return
		}
		if err := p.bridge.RemoveHistory(r.ID); err != nil {
			p.logger.Error("Failed to delete history record", "id", r.ID, "error", err)
			dialog.ShowError(err, p.window)
		}
	}, p.window)
}

func (p *HistoryPanel) handleClear() {
	dialog.ShowConfirm("Clear History", "Remove all history records?", func(confirmed bool) {
		if !confirmed {
			return
		}
		if err := p.bridge.ClearHistory(); err != nil {
			p.logger.Error("Failed to clear history", "error", err)
			dialog.ShowError(err, p.window)
		}
	}, p.window)
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

// truncatePayload shortens long payloads for the single-line list rows.
func truncatePayload(payload string, max int) string {
	runes := []rune(payload)
	if len(runes) <= max {
		return payload
	}
	return string(runes[:max-1]) + "…"
}

// formatAge renders a compact relative timestamp.
func formatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// recordCountText renders the footer line under the list.
func recordCountText(n int) string {
	switch n {
	case 0:
		return "No records"
	case 1:
		return "1 record"
	default:
		return fmt.Sprintf("%d records", n)
	}
}
