// Package main is the entry point for Code Studio.
package main

import (
	"log/slog"
	"os"
	"time"

	"codestudio/application"
	"codestudio/core/eventbus"
	"codestudio/domain/history"
	"codestudio/infrastructure/config"
	"codestudio/infrastructure/encode"
	"codestudio/infrastructure/logging"
	"codestudio/infrastructure/repository"
	"codestudio/infrastructure/scan"
	"codestudio/presentation"
	"codestudio/resources"

	"fyne.io/fyne/v2/app"
)

func main() {
	// Load settings before logging so the configured level applies from
	// the first line. A broken config file falls back to defaults.
	settings := loadSettings()

	// Initialize logging (dev: console only, prod: rotating file)
	logCfg := logging.DefaultConfig()
	logCfg.Level = settings.SlogLevel()
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		// Fallback to stderr if logging setup fails
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("Starting Code Studio")

	// Initialize history (optional, never fatal)
	historyService := buildHistory(settings, logger)

	// Initialize event bus
	eventBus := eventbus.New(100)
	defer eventBus.Close()

	// Initialize coordinator with the rendering and scanning engines
	coordinator := application.NewCoordinator(&application.CoordinatorConfig{
		Renderer: encode.NewLibraryRenderer(),
		Engine:   scan.NewZXingEngine(),
		History:  historyService,
		EventBus: eventBus,
		Logger:   logger,
		RenderOptions: encode.Options{
			ModuleScale: settings.Generate.ModuleScale,
			QuietZone:   settings.Generate.QuietZone,
			BarHeight:   settings.Generate.BarHeight,
			BarScale:    settings.Generate.BarScale,
		},
	})
	coordinator.Start()
	defer coordinator.Stop()

	// Initialize UI event bridge
	bridge := presentation.NewUIEventBridge(&presentation.BridgeConfig{
		Coordinator: coordinator,
		EventBus:    eventBus,
		Logger:      logger,
	})

	// Initialize Fyne app
	fyneApp := app.New()
	fyneApp.SetIcon(resources.AppIcon())

	// Initialize main window
	mainWindow := presentation.NewMainWindow(&presentation.MainWindowConfig{
		App:      fyneApp,
		Bridge:   bridge,
		EventBus: eventBus,
		Logger:   logger,
		Settings: settings,
	})
	defer mainWindow.Cleanup()

	// Show and run
	mainWindow.Show()
	fyneApp.Run()

	// Start shutdown timeout - force exit after 10 seconds if cleanup hangs
	go func() {
		time.Sleep(10 * time.Second)
		logger.Warn("Shutdown timeout, forcing exit")
		os.Exit(0)
	}()

	logger.Info("Application shutdown complete")
}

// loadSettings resolves and loads the config file. Any failure yields the
// defaults: a desktop utility must come up even with a mangled config.
func loadSettings() *config.Settings {
	path, err := config.DefaultPath()
	if err != nil {
		return config.Default()
	}
	settings, err := config.Load(path)
	if err != nil {
		os.Stderr.WriteString("Ignoring config file: " + err.Error() + "\n")
		return config.Default()
	}
	return settings
}

// buildHistory wires the history service when enabled. History is a side
// feature; every failure here degrades to running without it.
func buildHistory(settings *config.Settings, logger *slog.Logger) *history.Service {
	if !settings.History.Enabled {
		return nil
	}

	path, err := repository.DefaultHistoryPath()
	if err != nil {
		logger.Warn("History disabled", "error", err)
		return nil
	}

	repo := repository.NewJSONHistoryRepository(path, logger.With("component", "history_repo"))
	return history.NewService(repo, settings.History.Limit)
}
