// Package application provides the application layer that owns the studio
// actor and routes commands to it.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codestudio/application/studio"
	"codestudio/core/command"
	"codestudio/core/event"
	"codestudio/core/eventbus"
	"codestudio/core/state"
	"codestudio/domain/history"
	"codestudio/infrastructure/encode"
	"codestudio/infrastructure/scan"
)

// Dispatch errors surfaced to the presentation layer.
var (
	// ErrStudioBusy is returned while an operation is already in flight.
	ErrStudioBusy = errors.New("studio is busy")
	// ErrNotRunning is returned after the studio has shut down.
	ErrNotRunning = errors.New("studio is not running")
)

// Coordinator owns the studio actor and exposes the command and history
// surface the UI talks to.
type Coordinator struct {
	studio *studio.Studio

	eventBus eventbus.EventBus
	history  *history.Service
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	Renderer      encode.Renderer
	Engine        scan.Engine
	History       *history.Service
	EventBus      eventbus.EventBus
	Logger        *slog.Logger
	RenderOptions encode.Options
}

// NewCoordinator creates the coordinator and its studio actor.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		eventBus: cfg.EventBus,
		history:  cfg.History,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	c.studio = studio.New(&studio.Config{
		Renderer:      cfg.Renderer,
		Engine:        cfg.Engine,
		History:       cfg.History,
		EventBus:      cfg.EventBus,
		Logger:        cfg.Logger.With("component", "studio"),
		RenderOptions: cfg.RenderOptions,
	})

	return c
}

// Start begins the coordinator and the studio's command loop.
func (c *Coordinator) Start() {
	c.studio.Start()
	c.logger.Info("Coordinator started")
}

// Stop shuts down the coordinator and the studio. A Shutdown command is
// offered first so an idle studio stops cleanly; Stop then cancels and
// waits regardless.
func (c *Coordinator) Stop() {
	if err := c.studio.Send(&command.Shutdown{}); err != nil {
		c.logger.Debug("Shutdown command not delivered", "error", err)
	}
	c.cancel()
	c.studio.Stop()
	c.logger.Info("Coordinator stopped")
}

// Dispatch routes a command to the studio. Commands are rejected while an
// operation is in flight so the queue never piles up behind a slow decode.
func (c *Coordinator) Dispatch(cmd command.Command) error {
	c.logger.Debug("Dispatching command", "command", cmd.CommandName())

	st := c.studio.State()
	if st.IsTerminal() {
		return ErrNotRunning
	}
	if !st.CanAcceptCommands() {
		return fmt.Errorf("%w: state %s", ErrStudioBusy, st)
	}

	return c.studio.Send(cmd)
}

// State returns the studio's current state.
func (c *Coordinator) State() state.StudioState {
	return c.studio.State()
}

// HasGeneratedCode reports whether a generated code is held for saving.
func (c *Coordinator) HasGeneratedCode() bool {
	return c.studio.HasGeneratedCode()
}

// History accessors. All of them are no-ops when history is disabled.

// HistoryRecords returns the stored history, newest first.
func (c *Coordinator) HistoryRecords() ([]*history.Record, error) {
	if c.history == nil {
		return nil, nil
	}
	return c.history.List(c.ctx)
}

// RemoveHistory deletes a single history record.
func (c *Coordinator) RemoveHistory(id string) error {
	if c.history == nil {
		return nil
	}
	if err := c.history.Remove(c.ctx, id); err != nil {
		return err
	}
	c.publishHistoryCount()
	return nil
}

// ClearHistory deletes all history records.
func (c *Coordinator) ClearHistory() error {
	if c.history == nil {
		return nil
	}
	if err := c.history.Clear(c.ctx); err != nil {
		return err
	}
	c.publishHistoryCount()
	return nil
}

// HistoryEnabled reports whether a history store is wired in.
func (c *Coordinator) HistoryEnabled() bool {
	return c.history != nil
}

func (c *Coordinator) publishHistoryCount() {
	if c.eventBus == nil {
		return
	}

	count, err := c.history.Count(c.ctx)
	if err != nil {
		c.logger.Warn("Failed to count history", "error", err)
		return
	}
	c.eventBus.Publish(event.NewHistoryUpdated(count))
}
