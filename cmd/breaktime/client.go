package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"breaktime/internal/api/client"
	"breaktime/internal/core/model"
	"breaktime/internal/core/session"

	"github.com/spf13/cobra"
)

var (
	startMinutes int64
	startMessage string
	startDwell   int64
	jsonOutput   bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a session, replacing any running one",
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := newClient().Start(cmd.Context(), model.SessionConfig{
			DurationMinutes:     startMinutes,
			Message:             startMessage,
			OverlayDwellSeconds: startDwell,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(record)
		}
		printStarted(record)
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Stop(cmd.Context()); err != nil {
			return err
		}
		printStopped()
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running session",
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := newClient().Status(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(record)
		}
		printStatus(record, time.Now().Unix())
		return nil
	},
}

var overlayConfigCmd = &cobra.Command{
	Use:   "overlay-config",
	Short: "Show the overlay parameters of the last completed session",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := newClient().OverlayConfig(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(config)
		}
		printOverlayConfig(config)
		return nil
	},
}

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Open or close the break overlay on the running instance",
}

var overlayShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Open the break overlay",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().ShowOverlay(cmd.Context(), model.OverlayConfig{
			Message:             startMessage,
			OverlayDwellSeconds: startDwell,
		})
	},
}

var overlayCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the break overlay without stopping the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().CloseOverlay(cmd.Context())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the countdown until interrupted",
	RunE:  runWatch,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream session events as JSON lines",
	RunE:  runEvents,
}

func init() {
	defaults := model.DefaultSettings()

	startCmd.Flags().Int64VarP(&startMinutes, "minutes", "m", defaults.DurationMinutes, "Session length in minutes")
	startCmd.Flags().StringVar(&startMessage, "message", defaults.Message, "Message shown when the session ends")
	startCmd.Flags().Int64Var(&startDwell, "dwell", defaults.OverlayDwellSeconds, "Seconds the overlay stays up (0 waits for dismissal)")
	overlayShowCmd.Flags().StringVar(&startMessage, "message", defaults.Message, "Message to show")
	overlayShowCmd.Flags().Int64Var(&startDwell, "dwell", defaults.OverlayDwellSeconds, "Seconds the overlay stays up (0 waits for dismissal)")

	for _, cmd := range []*cobra.Command{startCmd, statusCmd, overlayConfigCmd} {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print raw JSON")
	}

	overlayCmd.AddCommand(overlayShowCmd, overlayCloseCmd)
	rootCmd.AddCommand(startCmd, stopCmd, statusCmd, overlayConfigCmd, overlayCmd, watchCmd, eventsCmd)
}

func newClient() *client.Client {
	return client.New(serverAddr)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	poller := session.NewPoller(newClient(), session.PollerConfig{
		Interval: cfg.PollInterval(),
	}, printSnapshot, logger)
	poller.Start()
	defer poller.Stop()

	<-ctx.Done()
	fmt.Println()
	return nil
}

func runEvents(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	events, err := newClient().Subscribe(ctx)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	for event := range events {
		if err := encoder.Encode(event); err != nil {
			return err
		}
	}
	if ctx.Err() == nil {
		return fmt.Errorf("event stream closed by server")
	}
	return nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

