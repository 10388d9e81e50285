package overlay

import (
	"fmt"
	"image/color"

	"breaktime/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
}

// OpacityFromFraction converts a 0..1 opacity to an alpha byte.
func OpacityFromFraction(fraction float64) uint8 {
	if fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return 255
	}
	return uint8(fraction*255 + 0.5)
}

// Window renders the break overlay. Its exported methods are safe to call from any goroutine.
type Window struct {
	window         fyne.Window
	config         Config
	background     *canvas.Rectangle
	titleLabel     *canvas.Text
	messageLabel   *widget.Label
	countdownLabel *canvas.Text
	closeButton    *widget.Button
	onDismiss      func()
}

const (
	overlayWidthFraction  = float32(0.30)
	overlayHeightFraction = float32(0.30)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
	defaultTitle          = "Break time"
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates a hidden overlay window.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("BreakTime")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: config.Opacity})

	titleLabel := canvas.NewText(defaultTitle, color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 32

	messageLabel := widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	messageLabel.Wrapping = fyne.TextWrapWord

	countdownLabel := canvas.NewText("", color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	countdownLabel.Alignment = fyne.TextAlignCenter
	countdownLabel.TextSize = 14

	closeButton := widget.NewButton("Close", nil)
	closeButton.Importance = widget.HighImportance

	content := container.New(&centerPanelLayout{}, titleLabel, messageLabel, countdownLabel, closeButton)
	window.SetContent(container.NewStack(background, content))

	overlay := &Window{
		window:         window,
		config:         config,
		background:     background,
		titleLabel:     titleLabel,
		messageLabel:   messageLabel,
		countdownLabel: countdownLabel,
		closeButton:    closeButton,
	}

	closeButton.OnTapped = overlay.dismiss
	window.SetCloseIntercept(overlay.dismiss)

	return overlay
}

// SetOnDismiss sets the handler for the close button and the window close control.
func (overlay *Window) SetOnDismiss(handler func()) {
	overlay.onDismiss = handler
}

// Show displays the overlay with the given message.
func (overlay *Window) Show(config model.OverlayConfig) {
	fyne.Do(func() {
		overlay.messageLabel.SetText(config.Message)
		overlay.countdownLabel.Text = ""
		overlay.countdownLabel.Refresh()
		overlay.applyWindowMode()
		overlay.window.Show()
		overlay.window.RequestFocus()
		applyNativeOpacity(overlay.window, overlay.config.Opacity)
	})
}

// SetRemaining updates the auto-close countdown. Negative hides it.
func (overlay *Window) SetRemaining(seconds int64) {
	fyne.Do(func() {
		overlay.countdownLabel.Text = formatCountdown(seconds)
		overlay.countdownLabel.Refresh()
	})
}

// Hide closes the overlay.
func (overlay *Window) Hide() {
	fyne.Do(func() {
		if overlay.config.Fullscreen {
			overlay.window.SetFullScreen(false)
		}
		overlay.window.Hide()
	})
}

func (overlay *Window) dismiss() {
	if overlay.onDismiss != nil {
		overlay.onDismiss()
		return
	}
	overlay.Hide()
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreenFraction()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

func formatCountdown(seconds int64) string {
	if seconds < 0 {
		return ""
	}
	if seconds >= 60 {
		return fmt.Sprintf("Closing in %d:%02d", seconds/60, seconds%60)
	}
	return fmt.Sprintf("Closing in %ds", seconds)
}

// centerPanelLayout stacks title, message, countdown and button in the middle of the overlay.
type centerPanelLayout struct{}

func (layout *centerPanelLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}
	title := objects[0]
	message := objects[1]
	countdown := objects[2]
	button := objects[3]

	pad := size.Height * 0.05
	availableWidth := size.Width - pad*2
	if availableWidth < 0 {
		availableWidth = 0
	}
	if maxWidth := float32(720); availableWidth > maxWidth {
		availableWidth = maxWidth
	}
	left := (size.Width - availableWidth) / 2

	titleSize := title.MinSize()
	message.Resize(fyne.NewSize(availableWidth, message.MinSize().Height))
	messageSize := message.MinSize()
	countdownSize := countdown.MinSize()
	buttonSize := button.MinSize()
	buttonWidth := buttonSize.Width * 1.6

	total := titleSize.Height + 12 + messageSize.Height + 8 + countdownSize.Height + 16 + buttonSize.Height
	y := (size.Height - total) / 2
	if y < pad {
		y = pad
	}

	title.Move(fyne.NewPos(left, y))
	title.Resize(fyne.NewSize(availableWidth, titleSize.Height))
	y += titleSize.Height + 12

	message.Move(fyne.NewPos(left, y))
	message.Resize(fyne.NewSize(availableWidth, messageSize.Height))
	y += messageSize.Height + 8

	countdown.Move(fyne.NewPos(left, y))
	countdown.Resize(fyne.NewSize(availableWidth, countdownSize.Height))
	y += countdownSize.Height + 16

	button.Move(fyne.NewPos((size.Width-buttonWidth)/2, y))
	button.Resize(fyne.NewSize(buttonWidth, buttonSize.Height))
}

func (layout *centerPanelLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 4 {
		return fyne.NewSize(0, 0)
	}
	width := float32(0)
	height := float32(52)
	for _, object := range objects {
		objectSize := object.MinSize()
		if objectSize.Width > width {
			width = objectSize.Width
		}
		height += objectSize.Height
	}
	return fyne.NewSize(width+20, height)
}
