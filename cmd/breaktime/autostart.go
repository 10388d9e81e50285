package main

import (
	"fmt"
	"os"

	"breaktime/internal/platform"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage launching BreakTime at login",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Launch BreakTime hidden in the tray at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolve executable: %w", err)
		}
		if err := platform.NewService().EnableAutostart(appName, execPath, platform.HiddenFlag); err != nil {
			return err
		}
		color.New(color.FgGreen, color.Bold).Println("Autostart enabled")
		return nil
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop launching BreakTime at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := platform.NewService().DisableAutostart(appName); err != nil {
			return err
		}
		color.New(color.FgYellow, color.Bold).Println("Autostart disabled")
		return nil
	},
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether autostart is enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := platform.NewService().AutostartEnabled(appName)
		if err != nil {
			return err
		}
		if enabled {
			color.New(color.FgGreen).Println("enabled")
		} else {
			color.New(color.Faint).Println("disabled")
		}
		return nil
	},
}

func init() {
	autostartCmd.AddCommand(autostartEnableCmd, autostartDisableCmd, autostartStatusCmd)
	rootCmd.AddCommand(autostartCmd)
}
