package storage

import (
	"os"
	"path/filepath"
	"testing"

	"breaktime/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewSettingsStoreAt(filepath.Join(t.TempDir(), "settings.yaml"))

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSaveThenLoad(t *testing.T) {
	store := NewSettingsStoreAt(filepath.Join(t.TempDir(), "nested", "settings.yaml"))
	want := model.Settings{DurationMinutes: 0, Message: "", OverlayDwellSeconds: 300}

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOutOfRangeValuesFallBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("duration_minutes: 9000\noverlay_dwell_seconds: -1\nmessage: hydrate\n"), 0o644))

	settings, err := NewSettingsStoreAt(path).Load()
	require.NoError(t, err)
	defaults := model.DefaultSettings()
	assert.Equal(t, defaults.DurationMinutes, settings.DurationMinutes)
	assert.Equal(t, defaults.OverlayDwellSeconds, settings.OverlayDwellSeconds)
	assert.Equal(t, "hydrate", settings.Message)
}

func TestCorruptFileReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("duration_minutes: [\n"), 0o644))

	settings, err := NewSettingsStoreAt(path).Load()
	assert.Error(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}
