//go:build !windows

package overlay

import "fyne.io/fyne/v2"

// applyNativeOpacity is a no-op; the background rectangle alpha carries the opacity.
func applyNativeOpacity(fyne.Window, uint8) {}
