package main

import (
	"fmt"
	"time"

	"breaktime/internal/core/model"
	"breaktime/internal/core/session"

	"github.com/fatih/color"
)

func printStarted(record *model.SessionRecord) {
	green := color.New(color.FgGreen, color.Bold)

	green.Print("Started ")
	fmt.Printf("%d minute session", record.DurationMinutes)
	if record.DurationMinutes > 0 {
		fmt.Printf(", break at %s", time.Unix(record.EndTime(), 0).Format("15:04:05"))
	}
	fmt.Println()
}

func printStopped() {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Println("Stopped")
}

func printStatus(record *model.SessionRecord, now int64) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)

	cyan.Print("Status:    ")
	if record == nil {
		dim.Println("idle")
		return
	}
	green.Println("running")
	fmt.Printf("Remaining: %s\n", formatClock(record.RemainingSeconds(now)))
	fmt.Printf("Started:   %s\n", time.Unix(record.StartTime, 0).Format(time.DateTime))
	fmt.Printf("Duration:  %d min\n", record.DurationMinutes)
	fmt.Printf("Message:   %s\n", record.Message)
	fmt.Printf("Overlay:   %s\n", describeDwell(record.OverlayDwellSeconds))
}

func printOverlayConfig(config *model.OverlayConfig) {
	cyan := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	if config == nil {
		dim.Println("No completed session")
		return
	}
	cyan.Print("Message: ")
	fmt.Println(config.Message)
	cyan.Print("Overlay: ")
	fmt.Println(describeDwell(config.OverlayDwellSeconds))
}

// printSnapshot redraws one status line in place.
func printSnapshot(snapshot session.Snapshot) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)

	fmt.Print("\r\033[K")
	switch {
	case snapshot.Active:
		green.Print(formatClock(snapshot.Remaining))
		fmt.Printf("  %s", snapshot.Record.Message)
	default:
		dim.Print("idle")
	}
	if snapshot.Err != nil {
		red.Print("  (offline)")
	}
}

func formatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds = seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func describeDwell(seconds int64) string {
	if seconds == 0 {
		return "stays until dismissed"
	}
	return fmt.Sprintf("%d s", seconds)
}
