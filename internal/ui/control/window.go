// Package control renders the main window: the session form and the live countdown.
package control

import (
	"strconv"

	"breaktime/internal/core/model"
	"breaktime/internal/core/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

// Controller starts and stops sessions.
type Controller interface {
	Start(config model.SessionConfig) error
	Stop()
}

// SettingsSaver persists the last used form values.
type SettingsSaver interface {
	Save(settings model.Settings) error
}

// Window handles the control UI.
type Window struct {
	window      fyne.Window
	controller  Controller
	saver       SettingsSaver
	logger      zerolog.Logger
	settings    model.Settings
	duration    *widget.Entry
	message     *widget.Entry
	dwell       *widget.Entry
	countdown   *widget.Label
	status      *widget.Label
	startButton *widget.Button
	stopButton  *widget.Button
	running     bool
}

// New creates the control window.
func New(app fyne.App, settings model.Settings, controller Controller, saver SettingsSaver, logger zerolog.Logger) *Window {
	window := app.NewWindow("BreakTime")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	duration := widget.NewEntry()
	duration.SetPlaceHolder("25")
	dwell := widget.NewEntry()
	dwell.SetPlaceHolder("10")
	message := widget.NewMultiLineEntry()
	message.SetPlaceHolder("Time to take a break!")
	message.Wrapping = fyne.TextWrapWord
	message.SetMinRowsVisible(2)

	countdown := widget.NewLabelWithStyle("--:--", fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true})
	status := widget.NewLabel("")
	status.Wrapping = fyne.TextWrapWord

	form := container.NewVBox(
		widget.NewLabelWithStyle("Session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Break every"), widget.NewLabel("min"), duration),
		container.NewBorder(nil, nil, widget.NewLabel("Show overlay for"), widget.NewLabel("sec"), dwell),
		widget.NewLabel("Message"),
		message,
		widget.NewSeparator(),
		countdown,
		status,
	)

	startButton := widget.NewButton("Start", nil)
	startButton.Importance = widget.HighImportance
	stopButton := widget.NewButton("Stop", nil)
	buttons := container.NewHBox(startButton, layout.NewSpacer(), stopButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(380, 360))

	control := &Window{
		window:      window,
		controller:  controller,
		saver:       saver,
		logger:      logger.With().Str("component", "control-window").Logger(),
		duration:    duration,
		message:     message,
		dwell:       dwell,
		countdown:   countdown,
		status:      status,
		startButton: startButton,
		stopButton:  stopButton,
	}

	control.UpdateSettings(settings)
	control.setRunningUnsafe(false)

	startButton.OnTapped = control.handleStart
	stopButton.OnTapped = control.handleStop
	// Closing only hides the window; the session keeps running in the background.
	window.SetCloseIntercept(window.Hide)

	return control
}

// Show displays the control window.
func (control *Window) Show() {
	fyne.Do(func() {
		control.window.Show()
		control.window.RequestFocus()
	})
}

// Window exposes the underlying fyne window.
func (control *Window) Window() fyne.Window {
	return control.window
}

// Settings returns the form values of the last successful start.
func (control *Window) Settings() model.Settings {
	return control.settings
}

// UpdateSettings replaces form values.
func (control *Window) UpdateSettings(settings model.Settings) {
	control.settings = settings
	control.duration.SetText(strconv.FormatInt(settings.DurationMinutes, 10))
	control.dwell.SetText(strconv.FormatInt(settings.OverlayDwellSeconds, 10))
	control.message.SetText(settings.Message)
}

// Render shows one poll result. It is safe to call from the poller goroutine.
func (control *Window) Render(snapshot session.Snapshot) {
	fyne.Do(func() {
		control.renderUnsafe(snapshot)
	})
}

func (control *Window) renderUnsafe(snapshot session.Snapshot) {
	control.setRunningUnsafe(snapshot.Active)
	if snapshot.Active {
		control.countdown.SetText(formatRemaining(snapshot.Remaining))
	} else {
		control.countdown.SetText("--:--")
	}

	if snapshot.Err != nil {
		control.status.SetText("Timer service unreachable, retrying")
		return
	}
	if control.status.Text == "Timer service unreachable, retrying" {
		control.status.SetText("")
	}
}

func (control *Window) handleStart() {
	settings, err := parseForm(control.duration.Text, control.message.Text, control.dwell.Text)
	if err != nil {
		control.status.SetText(err.Error())
		return
	}

	config := settings.SessionConfig()
	if err := control.controller.Start(config); err != nil {
		control.logger.Warn().Err(err).Msg("Start rejected")
		control.status.SetText(err.Error())
		return
	}

	control.settings = settings
	control.status.SetText("")
	control.countdown.SetText(formatRemaining(config.DurationMinutes * 60))
	control.setRunningUnsafe(true)

	if control.saver != nil {
		if err := control.saver.Save(settings); err != nil {
			control.logger.Warn().Err(err).Msg("Failed to save settings")
		}
	}
}

func (control *Window) handleStop() {
	control.controller.Stop()
	control.countdown.SetText("--:--")
	control.setRunningUnsafe(false)
}

func (control *Window) setRunningUnsafe(running bool) {
	control.running = running
	if running {
		control.stopButton.Enable()
		control.startButton.SetText("Restart")
		return
	}
	control.stopButton.Disable()
	control.startButton.SetText("Start")
}
