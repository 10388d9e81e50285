package main

import (
	"fmt"
	"os"

	"breaktime/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const appName = "BreakTime"

var (
	version     = "dev"
	configPath  string
	serverAddr  string
	startHidden bool

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "breaktime",
	Short: "BreakTime - break reminder timer",
	Long: `BreakTime counts down a work session and then covers the screen with a
break message. Without a subcommand it runs the desktop app; the other commands
talk to a running instance over its local control API.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runDesktop,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "", "Control server address (overrides server.listen_addr)")
	rootCmd.Flags().BoolVar(&startHidden, "hidden", false, "Start with only the tray icon visible")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	// A missing .env is normal; the environment and config file still apply.
	_ = godotenv.Load()

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = loaded
	if serverAddr == "" {
		serverAddr = cfg.Server.ListenAddr
	}

	logger = setupLogger(cfg.Logging)
	log.Logger = logger
	return nil
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Logs go to stderr so command output on stdout stays parseable.
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
