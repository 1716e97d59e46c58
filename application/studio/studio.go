// Package studio implements the actor that owns all code generation and
// scanning work.
package studio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"codestudio/core/command"
	"codestudio/core/event"
	"codestudio/core/eventbus"
	"codestudio/core/state"
	"codestudio/domain/history"
	"codestudio/domain/symbol"
	"codestudio/infrastructure/encode"
	"codestudio/infrastructure/imageio"
	"codestudio/infrastructure/scan"
)

// previewMaxSize bounds the thumbnail published with ScanImageLoaded.
// Decoding always runs on the full-resolution image.
const previewMaxSize = 500

// Studio processes commands serially through a command queue. It holds the
// most recent generated code and the most recent scan image, so saving and
// rescanning never race against new work.
type Studio struct {
	// State. hasImage mirrors currentImage != nil so the UI thread can
	// poll it without touching the actor-owned image.
	state    state.StudioState
	hasImage bool
	stateMu  sync.RWMutex

	// Work products, touched only by the actor goroutine
	currentImage   image.Image
	currentKind    symbol.Kind
	currentPayload string
	generatedAt    time.Time
	scanImage      image.Image
	scanPath       string

	// Dependencies
	renderer   encode.Renderer
	engine     scan.Engine
	history    *history.Service
	eventBus   eventbus.EventBus
	logger     *slog.Logger
	renderOpts encode.Options

	// Command processing
	cmdChan chan command.Command
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Config holds configuration for creating a new Studio.
type Config struct {
	Renderer      encode.Renderer
	Engine        scan.Engine
	History       *history.Service
	EventBus      eventbus.EventBus
	Logger        *slog.Logger
	RenderOptions encode.Options
	CommandBuffer int
}

// New creates a new Studio actor.
func New(cfg *Config) *Studio {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = 16
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Studio{
		state:      state.StateIdle,
		renderer:   cfg.Renderer,
		engine:     cfg.Engine,
		history:    cfg.History,
		eventBus:   cfg.EventBus,
		logger:     cfg.Logger,
		renderOpts: cfg.RenderOptions,
		cmdChan:    make(chan command.Command, cfg.CommandBuffer),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins the studio's command processing loop.
func (s *Studio) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("Studio started")
}

// Stop signals the studio to stop and waits for cleanup with timeout.
func (s *Studio) Stop() {
	s.cancel()
	close(s.cmdChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Studio stopped")
	case <-time.After(3 * time.Second):
		s.logger.Warn("Studio stop timeout")
	}
}

// Send sends a command to the studio for processing.
// Returns an error if the studio is not accepting commands.
func (s *Studio) Send(cmd command.Command) error {
	if s.ctx.Err() != nil {
		return fmt.Errorf("studio is stopped")
	}

	select {
	case s.cmdChan <- cmd:
		return nil
	case <-s.ctx.Done():
		return fmt.Errorf("studio is stopped")
	default:
		return fmt.Errorf("command queue full")
	}
}

// State returns the current studio state.
func (s *Studio) State() state.StudioState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// HasGeneratedCode reports whether a generated code is held for saving.
// Safe to call from any goroutine.
func (s *Studio) HasGeneratedCode() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.hasImage
}

// setGeneratedCode replaces the held artifact. A nil image clears it.
func (s *Studio) setGeneratedCode(img image.Image, kind symbol.Kind, payload string) {
	s.currentImage = img
	s.currentKind = kind
	s.currentPayload = payload
	if img == nil {
		s.generatedAt = time.Time{}
	} else {
		s.generatedAt = time.Now()
	}

	s.stateMu.Lock()
	s.hasImage = img != nil
	s.stateMu.Unlock()
}

// run is the main command processing loop.
func (s *Studio) run() {
	defer s.wg.Done()
	defer s.cleanup()

	for {
		select {
		case <-s.ctx.Done():
			return
		case cmd, ok := <-s.cmdChan:
			if !ok {
				return
			}
			s.processCommand(cmd)
		}
	}
}

// cleanup performs cleanup when the studio stops.
func (s *Studio) cleanup() {
	if err := s.transitionTo(state.StateShuttingDown); err != nil {
		s.logger.Warn("Shutdown from unexpected state", "state", s.State())
	}
	s.transitionTo(state.StateStopped)
}

// processCommand handles a single command.
func (s *Studio) processCommand(cmd command.Command) {
	s.logger.Debug("Processing command", "command", cmd.CommandName())

	switch c := cmd.(type) {
	case *command.GenerateCode:
		s.handleGenerate(c)
	case *command.SaveCode:
		s.handleSave(c)
	case *command.ScanFile:
		s.handleScanFile(c)
	case *command.RescanImage:
		s.handleRescan(c)
	case *command.Shutdown:
		s.logger.Info("Shutdown requested")
		s.cancel()
	default:
		s.logger.Warn("Unknown command", "command", fmt.Sprintf("%T", cmd))
	}
}

// State transition helpers

func (s *Studio) transitionTo(newState state.StudioState) error {
	s.stateMu.Lock()
	oldState := s.state

	if !oldState.CanTransitionTo(newState) {
		s.stateMu.Unlock()
		return state.NewTransitionError(oldState, newState, "invalid transition")
	}

	s.state = newState
	s.stateMu.Unlock()

	s.publishEvent(event.NewStudioStateChanged(oldState, newState))
	s.logger.Info("State changed", "from", oldState, "to", newState)

	return nil
}

func (s *Studio) publishEvent(e event.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(e)
	}
}

// Command handlers

func (s *Studio) handleGenerate(cmd *command.GenerateCode) {
	if !s.State().CanAcceptCommands() {
		s.logger.Warn("Cannot generate in current state", "state", s.State())
		return
	}

	kind, err := symbol.ParseKind(cmd.Kind)
	if err != nil {
		s.failGenerate(cmd.JobID(), err)
		return
	}
	level, err := symbol.ParseECLevel(cmd.ECLevel)
	if err != nil {
		s.failGenerate(cmd.JobID(), err)
		return
	}

	if err := s.transitionTo(state.StateGenerating); err != nil {
		s.logger.Error("Failed to enter generating state", "error", err)
		return
	}
	defer s.backToIdle()

	opts := s.renderOpts
	opts.ECLevel = level
	if cmd.ModuleScale > 0 {
		opts.ModuleScale = cmd.ModuleScale
	}

	img, err := s.renderer.Render(s.ctx, encode.Request{
		Kind:    kind,
		Payload: cmd.Payload,
		Options: opts,
	})
	if err != nil {
		s.logger.Error("Generate failed", "kind", kind, "error", err)
		s.failGenerate(cmd.JobID(), err)
		return
	}

	s.setGeneratedCode(img, kind, cmd.Payload)

	s.publishEvent(event.NewCodeGenerated(cmd.JobID(), kind.DisplayName(), cmd.Payload, img))
	s.logger.Info("Code generated", "kind", kind, "payload_len", len(cmd.Payload))

	s.recordHistory(kind.DisplayName(), cmd.Payload, history.SourceGenerated)
}

func (s *Studio) handleSave(cmd *command.SaveCode) {
	if !s.State().CanAcceptCommands() {
		s.logger.Warn("Cannot save in current state", "state", s.State())
		return
	}

	if s.currentImage == nil {
		s.publishEvent(event.NewSaveFailed(cmd.JobID(), "No code to save! Generate a code first.", nil))
		return
	}

	if err := s.transitionTo(state.StateSaving); err != nil {
		s.logger.Error("Failed to enter saving state", "error", err)
		return
	}
	defer s.backToIdle()

	path := imageio.EnsureSaveExtension(cmd.Path)
	if err := imageio.Save(path, s.currentImage); err != nil {
		s.logger.Error("Save failed", "path", path, "error", err)
		s.publishEvent(event.NewSaveFailed(cmd.JobID(), "Failed to save file.", err))
		return
	}

	s.publishEvent(event.NewCodeSaved(cmd.JobID(), path))
	s.logger.Info("Code saved", "path", path)
}

func (s *Studio) handleScanFile(cmd *command.ScanFile) {
	if !s.State().CanAcceptCommands() {
		s.logger.Warn("Cannot scan in current state", "state", s.State())
		return
	}

	if err := s.transitionTo(state.StateLoading); err != nil {
		s.logger.Error("Failed to enter loading state", "error", err)
		return
	}

	img, meta, err := imageio.Load(cmd.Path)
	if err != nil {
		s.logger.Error("Image load failed", "path", cmd.Path, "error", err)
		s.publishEvent(event.NewScanFailed(cmd.JobID(), "load",
			"Unable to read image file. File may be corrupted.", err))
		s.backToIdle()
		return
	}

	s.scanImage = img
	s.scanPath = cmd.Path
	thumb := imageio.Thumbnail(img, previewMaxSize, previewMaxSize)
	s.publishEvent(event.NewScanImageLoaded(cmd.JobID(), cmd.Path, thumb, meta.Width, meta.Height, meta.Format))

	if err := s.transitionTo(state.StateScanning); err != nil {
		s.logger.Error("Failed to enter scanning state", "error", err)
		s.backToIdle()
		return
	}
	defer s.backToIdle()

	s.detect(cmd.JobID(), cmd.TryHarder)
}

func (s *Studio) handleRescan(cmd *command.RescanImage) {
	if !s.State().CanAcceptCommands() {
		s.logger.Warn("Cannot rescan in current state", "state", s.State())
		return
	}

	if s.scanImage == nil {
		s.publishEvent(event.NewScanFailed(cmd.JobID(), "decode", "No image loaded to scan.", nil))
		return
	}

	if err := s.transitionTo(state.StateScanning); err != nil {
		s.logger.Error("Failed to enter scanning state", "error", err)
		return
	}
	defer s.backToIdle()

	s.detect(cmd.JobID(), cmd.TryHarder)
}

// detect runs the engine over the held scan image and publishes the outcome.
func (s *Studio) detect(jobID string, tryHarder bool) {
	report, err := s.engine.Detect(s.ctx, s.scanImage, scan.Options{TryHarder: tryHarder})
	if err != nil {
		s.logger.Error("Scan failed", "path", s.scanPath, "error", err)
		s.publishEvent(event.NewScanFailed(jobID, "decode", "Failed to scan code.", err))
		return
	}

	detections := make([]event.Detection, len(report.Detections))
	for i, d := range report.Detections {
		detections[i] = event.Detection{
			Format:  d.Format,
			Payload: d.Payload,
		}
	}

	s.publishEvent(event.NewScanCompleted(jobID, detections, report.PatternHint, report.Elapsed))
	s.logger.Info("Scan completed",
		"path", s.scanPath,
		"detections", len(detections),
		"pattern_hint", report.PatternHint,
		"elapsed", report.Elapsed)

	for _, d := range detections {
		s.recordHistory(d.Format, d.Payload, history.SourceScanned)
	}
}

// backToIdle returns to the idle state after an operation. During shutdown
// the transition is rejected and the rejection is expected.
func (s *Studio) backToIdle() {
	if err := s.transitionTo(state.StateIdle); err != nil {
		s.logger.Debug("Skipping idle transition", "state", s.State())
	}
}

// recordHistory appends to the history store. History failures never block
// or fail the operation that produced the record.
func (s *Studio) recordHistory(format, payload string, source history.Source) {
	if s.history == nil {
		return
	}

	if _, err := s.history.Add(s.ctx, format, payload, source); err != nil {
		s.logger.Warn("Failed to record history", "format", format, "error", err)
		return
	}

	count, err := s.history.Count(s.ctx)
	if err != nil {
		s.logger.Warn("Failed to count history", "error", err)
		return
	}
	s.publishEvent(event.NewHistoryUpdated(count))
}

// failGenerate drops the held artifact and reports the failure. A failed
// generate never leaves a stale code behind for Save to pick up.
func (s *Studio) failGenerate(jobID string, err error) {
	s.setGeneratedCode(nil, symbol.KindUnknown, "")
	s.publishEvent(event.NewGenerateFailed(jobID, generateFailureReason(err), err))
}

// generateFailureReason maps an encode error to the message shown to the user.
func generateFailureReason(err error) string {
	switch {
	case errors.Is(err, symbol.ErrEmptyPayload):
		return "Please enter data to encode!"
	case errors.Is(err, symbol.ErrNotASCII):
		return "Invalid barcode data. Code128 requires valid ASCII characters."
	case errors.Is(err, symbol.ErrPayloadTooLong):
		return "Text is too long for a QR code at this error correction level."
	default:
		return "Failed to generate code."
	}
}
