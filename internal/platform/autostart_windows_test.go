//go:build windows

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRunCommand(t *testing.T) {
	tests := []struct {
		name    string
		command []string
		want    string
	}{
		{"bare executable", []string{`C:\bin\breaktime.exe`}, `"C:\bin\breaktime.exe"`},
		{"already quoted", []string{`"C:\Program Files\BreakTime\breaktime.exe"`, HiddenFlag}, `"C:\Program Files\BreakTime\breaktime.exe" --hidden`},
		{"argument with space", []string{`C:\bt.exe`, "--config", `C:\My Config\bt.yaml`}, `"C:\bt.exe" --config "C:\My Config\bt.yaml"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildRunCommand(tt.command))
		})
	}
}
