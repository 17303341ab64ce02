package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"linguaclip/internal/domain"
)

const envPrefix = "LINGUACLIP"

// Config stores runtime configuration for the widget.
type Config struct {
	Env          string            `mapstructure:"env" validate:"oneof=development production"`
	SettingsFile string            `mapstructure:"settings_file" validate:"required"`
	Translation  TranslationConfig `mapstructure:"translation"`
	Detection    DetectionConfig   `mapstructure:"detection"`
	Speech       SpeechConfig      `mapstructure:"speech"`
	Audio        AudioConfig       `mapstructure:"audio"`
	Desktop      DesktopConfig     `mapstructure:"desktop"`
	Hotkeys      HotkeysConfig     `mapstructure:"hotkeys"`
	History      HistoryConfig     `mapstructure:"history"`
	Coordinator  CoordinatorConfig `mapstructure:"coordinator"`
	Settings     domain.Settings   `mapstructure:"settings"`
}

type TranslationConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	Email           string        `mapstructure:"email" validate:"omitempty,email"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"min=1"`
	RetryAutoDetect bool          `mapstructure:"retry_auto_detect"`
}

type DetectionConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence" validate:"min=0,max=1"`
}

type SpeechConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	TLD     string        `mapstructure:"tld"`
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1"`
}

type AudioConfig struct {
	PlayerCommand string `mapstructure:"player_command" validate:"required"`
}

type DesktopConfig struct {
	PasteCommand string        `mapstructure:"paste_command"`
	PasteDelay   time.Duration `mapstructure:"paste_delay" validate:"min=0"`
}

type HotkeysConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type CoordinatorConfig struct {
	NativeLanguage     string        `mapstructure:"native_language" validate:"required,language"`
	DebounceDelay      time.Duration `mapstructure:"debounce_delay" validate:"min=1"`
	ClipboardInterval  time.Duration `mapstructure:"clipboard_interval" validate:"min=1"`
	MinClipboardLength int           `mapstructure:"min_clipboard_length" validate:"min=0"`
	AutoInsertDelay    time.Duration `mapstructure:"auto_insert_delay" validate:"min=1"`
	StatusResetDelay   time.Duration `mapstructure:"status_reset_delay" validate:"min=0"`
	BackendTimeout     time.Duration `mapstructure:"backend_timeout" validate:"min=1"`
}

// Load resolves configuration from LINGUACLIP_* environment variables, the
// optional config file and built-in defaults, in that order of precedence.
// Persisted user settings are layered on top of the settings section.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, home)

	configFile := strings.TrimSpace(os.Getenv(envPrefix + "_CONFIG"))
	if configFile == "" {
		configFile = filepath.Join(home, ".config", "linguaclip", "config.yaml")
	}
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SettingsFile = expandHome(cfg.SettingsFile, home)
	cfg.History.Path = expandHome(cfg.History.Path, home)
	cfg.Speech.Dir = expandHome(cfg.Speech.Dir, home)

	if err := ValidateStruct(cfg); err != nil {
		return Config{}, err
	}

	settings, err := NewSettingsStore(cfg.SettingsFile, nil).Load(cfg.Settings)
	if err != nil {
		return Config{}, err
	}
	cfg.Settings = settings
	return cfg, nil
}

func setDefaults(v *viper.Viper, home string) {
	configDir := filepath.Join(home, ".config", "linguaclip")
	dataDir := filepath.Join(home, ".local", "share", "linguaclip")
	settings := domain.DefaultSettings()

	v.SetDefault("env", "development")
	v.SetDefault("settings_file", filepath.Join(configDir, "settings.yaml"))

	v.SetDefault("translation.base_url", "https://api.mymemory.translated.net")
	v.SetDefault("translation.email", "")
	v.SetDefault("translation.timeout", 10*time.Second)
	v.SetDefault("translation.retry_auto_detect", true)

	v.SetDefault("detection.min_confidence", 0.0)

	v.SetDefault("speech.enabled", true)
	v.SetDefault("speech.base_url", "")
	v.SetDefault("speech.tld", "com")
	v.SetDefault("speech.dir", "")
	v.SetDefault("speech.timeout", 10*time.Second)

	v.SetDefault("audio.player_command", "ffplay")

	v.SetDefault("desktop.paste_command", "")
	v.SetDefault("desktop.paste_delay", 100*time.Millisecond)

	v.SetDefault("hotkeys.enabled", true)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(dataDir, "history.db"))

	v.SetDefault("coordinator.native_language", domain.NativeLanguage)
	v.SetDefault("coordinator.debounce_delay", 500*time.Millisecond)
	v.SetDefault("coordinator.clipboard_interval", time.Second)
	v.SetDefault("coordinator.min_clipboard_length", 5)
	v.SetDefault("coordinator.auto_insert_delay", time.Second)
	v.SetDefault("coordinator.status_reset_delay", 3*time.Second)
	v.SetDefault("coordinator.backend_timeout", 10*time.Second)

	v.SetDefault("settings.auto_insert", settings.AutoInsert)
	v.SetDefault("settings.monitor_clipboard", settings.MonitorClipboard)
	v.SetDefault("settings.always_on_top", settings.AlwaysOnTop)
	v.SetDefault("settings.auto_play_audio", settings.AutoPlayAudio)
	v.SetDefault("settings.source_language", settings.SourceLanguage)
	v.SetDefault("settings.target_language", settings.TargetLanguage)
}

func expandHome(path string, home string) string {
	path = strings.TrimSpace(path)
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
