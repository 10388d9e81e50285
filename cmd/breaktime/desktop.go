package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"breaktime/internal/api"
	"breaktime/internal/core/clock"
	"breaktime/internal/core/presenter"
	"breaktime/internal/core/session"
	"breaktime/internal/platform"
	"breaktime/internal/storage"
	"breaktime/internal/ui/control"
	"breaktime/internal/ui/overlay"
	"breaktime/internal/ui/tray"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/spf13/cobra"
)

func runDesktop(cmd *cobra.Command, args []string) error {
	guard, err := platform.AcquireSingleInstance(appName, controlAddr())
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			return fmt.Errorf("%w; use `breaktime status` to reach it", err)
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting BreakTime")

	store, err := storage.NewSettingsStore(appName)
	if err != nil {
		return fmt.Errorf("failed to resolve settings path: %w", err)
	}
	settings, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Str("path", store.Path()).Msg("Failed to load settings, using defaults")
	}

	if cfg.Autostart {
		syncAutostart()
	}

	authority := session.New(clock.System, logger)
	defer authority.Close()

	fyneApp := app.NewWithID("com.breaktime.app")
	fyneApp.SetIcon(theme.HistoryIcon())

	overlayWindow := overlay.New(fyneApp, overlay.Config{
		Opacity:    overlay.OpacityFromFraction(cfg.Overlay.Opacity),
		Fullscreen: cfg.Overlay.Fullscreen,
	})
	breakPresenter := presenter.New(overlayWindow, authority, presenter.Config{
		AutoClose: cfg.Overlay.AutoClose,
	}, logger)
	overlayWindow.SetOnDismiss(breakPresenter.Dismiss)
	authority.SetPresenter(breakPresenter)

	controlWindow := control.New(fyneApp, settings, authority, store, logger)
	breakPresenter.SetOnClosed(func(string) {
		controlWindow.Show()
	})

	if cfg.Server.Enabled {
		server := api.NewServer(
			api.NewHandler(authority, breakPresenter, logger),
			api.ServerConfig{ListenAddr: controlAddr(), MetricsEnabled: cfg.Metrics.Enabled},
			logger,
		)
		server.SetListener(guard.Listener())
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start control server: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(ctx); err != nil {
				logger.Error().Err(err).Msg("Failed to stop control server")
			}
		}()
	}

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		desktopApp.SetSystemTrayIcon(theme.HistoryIcon())
		desktopApp.SetSystemTrayWindow(controlWindow.Window())
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow: controlWindow.Show,
			OnStartFor: func(minutes int64) {
				config := controlWindow.Settings().SessionConfig()
				config.DurationMinutes = minutes
				if err := authority.Start(config); err != nil {
					logger.Warn().Err(err).Msg("Quick start rejected")
				}
			},
			OnStop: authority.Stop,
			OnQuit: fyneApp.Quit,
		})
	} else {
		logger.Warn().Msg("System tray unsupported on this platform")
		// Without a tray a hidden window could not be brought back.
		controlWindow.Window().SetCloseIntercept(fyneApp.Quit)
	}

	poller := session.NewPoller(session.LocalSource{Authority: authority}, session.PollerConfig{
		Interval: cfg.PollInterval(),
	}, func(snapshot session.Snapshot) {
		controlWindow.Render(snapshot)
		if trayManager != nil {
			trayManager.Render(snapshot)
		}
	}, logger)
	fyneApp.Lifecycle().SetOnStarted(poller.Start)
	fyneApp.Lifecycle().SetOnStopped(poller.Stop)

	if !startHidden || trayManager == nil {
		controlWindow.Window().Show()
	}
	fyneApp.Run()

	logger.Info().Msg("BreakTime stopped")
	return nil
}

// controlAddr is the control server address, or empty when the server is off.
func controlAddr() string {
	if !cfg.Server.Enabled {
		return ""
	}
	return serverAddr
}

func syncAutostart() {
	execPath, err := os.Executable()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to resolve executable for autostart")
		return
	}
	if err := platform.NewService().EnableAutostart(appName, execPath, platform.HiddenFlag); err != nil {
		logger.Warn().Err(err).Msg("Failed to enable autostart")
	}
}
