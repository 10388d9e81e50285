package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"breaktime/internal/core/model"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	DurationMinutes     *int64  `yaml:"duration_minutes"`
	Message             *string `yaml:"message"`
	OverlayDwellSeconds *int64  `yaml:"overlay_dwell_seconds"`
}

// SettingsStore persists the control form defaults as YAML.
type SettingsStore struct {
	path string
}

// NewSettingsStore stores settings under the user config directory for appName.
func NewSettingsStore(appName string) (*SettingsStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	return NewSettingsStoreAt(filepath.Join(configDir, appName, settingsFileName)), nil
}

// NewSettingsStoreAt stores settings in the given file.
func NewSettingsStoreAt(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Path returns the settings file location.
func (store *SettingsStore) Path() string {
	return store.path
}

// Load reads the form defaults.
// If the file does not exist, default settings are returned.
func (store *SettingsStore) Load() (model.Settings, error) {
	settings := model.DefaultSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// Save writes the form defaults.
func (store *SettingsStore) Save(settings model.Settings) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		DurationMinutes:     &settings.DurationMinutes,
		Message:             &settings.Message,
		OverlayDwellSeconds: &settings.OverlayDwellSeconds,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(store.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// applyYamlSettings keeps defaults for missing or out-of-range values.
func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if value := fileData.DurationMinutes; value != nil && *value >= 0 && *value <= model.MaxDurationMinutes {
		settings.DurationMinutes = *value
	}
	if value := fileData.OverlayDwellSeconds; value != nil && *value >= 0 && *value <= model.MaxOverlayDwellSeconds {
		settings.OverlayDwellSeconds = *value
	}
	if fileData.Message != nil {
		settings.Message = *fileData.Message
	}
}
