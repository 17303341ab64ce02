package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"linguaclip/internal/domain"
)

// SettingsStore persists the user toggles in their own YAML file so the
// main config file is never rewritten.
type SettingsStore struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	watcher *viper.Viper

	savedMu sync.Mutex
	saved   *domain.Settings
}

func NewSettingsStore(path string, logger *zap.Logger) *SettingsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsStore{path: path, logger: logger}
}

func (s *SettingsStore) Path() string {
	return s.path
}

// Load returns the persisted settings, or fallback when nothing is stored yet.
// Keys missing from the file keep their fallback value.
func (s *SettingsStore) Load(fallback domain.Settings) (domain.Settings, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return fallback, nil
		}
		return domain.Settings{}, fmt.Errorf("failed to stat settings %s: %w", s.path, err)
	}

	v := s.newViper(fallback)
	if err := v.ReadInConfig(); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to read settings %s: %w", s.path, err)
	}
	settings, err := decodeSettings(v)
	if err != nil {
		return domain.Settings{}, err
	}
	s.remember(settings)
	return settings, nil
}

// Save validates settings and writes them to the settings file.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.savedMu.Lock()
	defer s.savedMu.Unlock()
	return s.save(settings)
}

// Persist saves settings unless they match what the file already holds.
// It reports whether the file was written.
func (s *SettingsStore) Persist(settings domain.Settings) (bool, error) {
	s.savedMu.Lock()
	defer s.savedMu.Unlock()
	if s.saved != nil && *s.saved == settings {
		return false, nil
	}
	if err := s.save(settings); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SettingsStore) remember(settings domain.Settings) {
	s.savedMu.Lock()
	defer s.savedMu.Unlock()
	s.saved = &settings
}

func (s *SettingsStore) save(settings domain.Settings) error {
	if err := ValidateStruct(settings); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("make settings dir: %w", err)
	}

	v := s.newViper(settings)
	for key, value := range settingsMap(settings) {
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", s.path, err)
	}
	s.saved = &settings
	return nil
}

// Watch calls onChange whenever the settings file is edited on disk. The
// file is created with current when it does not exist yet.
func (s *SettingsStore) Watch(current domain.Settings, onChange func(domain.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.Save(current); err != nil {
			return err
		}
	}

	v := s.newViper(current)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read settings %s: %w", s.path, err)
	}
	v.OnConfigChange(func(event fsnotify.Event) {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}
		settings, err := decodeSettings(v)
		if err != nil {
			s.logger.Warn("ignoring invalid settings file", zap.String("path", event.Name), zap.Error(err))
			return
		}
		s.logger.Debug("settings file changed", zap.String("path", event.Name))
		s.remember(settings)
		onChange(settings)
	})
	v.WatchConfig()
	s.watcher = v
	return nil
}

func (s *SettingsStore) newViper(defaults domain.Settings) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	for key, value := range settingsMap(defaults) {
		v.SetDefault(key, value)
	}
	return v
}

func decodeSettings(v *viper.Viper) (domain.Settings, error) {
	var settings domain.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	settings.SourceLanguage = domain.ResolveLanguage(settings.SourceLanguage)
	settings.TargetLanguage = domain.ResolveLanguage(settings.TargetLanguage)
	if err := ValidateStruct(settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func settingsMap(settings domain.Settings) map[string]any {
	return map[string]any{
		"auto_insert":       settings.AutoInsert,
		"monitor_clipboard": settings.MonitorClipboard,
		"always_on_top":     settings.AlwaysOnTop,
		"auto_play_audio":   settings.AutoPlayAudio,
		"source_language":   settings.SourceLanguage,
		"target_language":   settings.TargetLanguage,
	}
}
