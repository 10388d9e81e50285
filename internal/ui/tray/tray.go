package tray

import (
	"fmt"

	"breaktime/internal/core/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// QuickStartMinutes are the session lengths offered by the "Start break timer" submenu.
var QuickStartMinutes = []int64{5, 15, 25, 50}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow     func()
	OnStartFor func(minutes int64)
	OnStop     func()
	OnQuit     func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	showItem    *fyne.MenuItem
	startFor    *fyne.MenuItem
	stopItem    *fyne.MenuItem
	quitItem    *fyne.MenuItem
	callbacks   Callbacks
	active      bool
	unreachable bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "idle",
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.showItem = fyne.NewMenuItem("Show BreakTime", func() {
		if manager.callbacks.OnShow != nil {
			manager.callbacks.OnShow()
		}
	})

	quickItems := make([]*fyne.MenuItem, 0, len(QuickStartMinutes))
	for _, minutes := range QuickStartMinutes {
		minutes := minutes
		quickItems = append(quickItems, fyne.NewMenuItem(fmt.Sprintf("%d minutes", minutes), func() {
			if manager.callbacks.OnStartFor != nil {
				manager.callbacks.OnStartFor(minutes)
			}
		}))
	}
	manager.startFor = fyne.NewMenuItem("Start break timer", nil)
	manager.startFor.ChildMenu = fyne.NewMenu("", quickItems...)

	manager.stopItem = fyne.NewMenuItem("Stop timer", func() {
		if manager.callbacks.OnStop != nil {
			manager.callbacks.OnStop()
		}
	})
	manager.stopItem.Disabled = true

	manager.quitItem = fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})

	manager.refreshMenu()
	return manager
}

// Render mirrors one poll result in the tray. It is safe to call from the poller goroutine.
func (manager *Manager) Render(snapshot session.Snapshot) {
	fyne.Do(func() {
		manager.active = snapshot.Active
		manager.unreachable = snapshot.Err != nil
		manager.statusLabel = statusText(snapshot)
		manager.stopItem.Disabled = !snapshot.Active
		manager.refreshStatus()
	})
}

func statusText(snapshot session.Snapshot) string {
	if !snapshot.Active {
		return "idle"
	}
	minutes := (snapshot.Remaining + 59) / 60
	if minutes <= 1 {
		return fmt.Sprintf("%ds left", snapshot.Remaining)
	}
	return fmt.Sprintf("%d min left", minutes)
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.unreachable {
		status = fmt.Sprintf("%s (offline)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(fyne.NewMenu("BreakTime",
			manager.statusItem,
			manager.showItem,
			manager.startFor,
			manager.stopItem,
			fyne.NewMenuItemSeparator(),
			manager.quitItem,
		))
	}
}
