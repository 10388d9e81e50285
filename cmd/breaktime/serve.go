package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"breaktime/internal/api"
	"breaktime/internal/core/clock"
	"breaktime/internal/core/model"
	"breaktime/internal/core/presenter"
	"breaktime/internal/core/session"
	"breaktime/internal/platform"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session timer without a desktop UI",
	Long: `Run the session timer and control API headless. Break overlays are written
to the log. Supports systemd socket activation and sd_notify readiness.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if !cfg.Server.Enabled {
		return fmt.Errorf("serve requires server.enabled")
	}

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting BreakTime headless")

	activated, err := platform.ActivatedListener()
	if err != nil {
		return err
	}
	var guard *platform.InstanceGuard
	if activated != nil {
		logger.Info().Msg("Running with systemd socket activation")
		guard = platform.GuardListener(activated)
	} else {
		guard, err = platform.AcquireSingleInstance(appName, serverAddr)
		if err != nil {
			return err
		}
	}
	defer func() {
		_ = guard.Release()
	}()

	authority := session.New(clock.System, logger)
	defer authority.Close()

	breakPresenter := presenter.New(&logSurface{logger: logger.With().Str("component", "log-surface").Logger()}, authority, presenter.Config{
		AutoClose: cfg.Overlay.AutoClose,
	}, logger)
	authority.SetPresenter(breakPresenter)

	server := api.NewServer(
		api.NewHandler(authority, breakPresenter, logger),
		api.ServerConfig{ListenAddr: serverAddr, MetricsEnabled: cfg.Metrics.Enabled},
		logger,
	)
	server.SetListener(guard.Listener())
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start control server: %w", err)
	}

	if sent, err := platform.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify systemd")
	} else if sent {
		logger.Debug().Msg("Notified systemd of readiness")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interval := platform.WatchdogInterval(); interval > 0 {
		go runWatchdog(ctx, interval)
	}

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	if err := platform.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify systemd")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop control server: %w", err)
	}
	return nil
}

func runWatchdog(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := platform.NotifyWatchdog(); err != nil {
				logger.Warn().Err(err).Msg("Watchdog notification failed")
			}
		}
	}
}

// logSurface stands in for the overlay window on headless hosts.
type logSurface struct {
	logger zerolog.Logger
}

func (surface *logSurface) Show(config model.OverlayConfig) {
	surface.logger.Info().
		Str("message", config.Message).
		Int64("dwell_seconds", config.OverlayDwellSeconds).
		Msg("Break due")
}

func (surface *logSurface) SetRemaining(seconds int64) {
	if seconds >= 0 {
		surface.logger.Debug().Int64("remaining", seconds).Msg("Break overlay countdown")
	}
}

func (surface *logSurface) Hide() {
	surface.logger.Info().Msg("Break over")
}
