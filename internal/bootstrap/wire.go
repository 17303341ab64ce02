package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"linguaclip/internal/audio"
	"linguaclip/internal/config"
	"linguaclip/internal/desktop"
	"linguaclip/internal/domain"
	"linguaclip/internal/history"
	"linguaclip/internal/hotkeys"
	"linguaclip/internal/ports"
	"linguaclip/internal/providers/googletts"
	"linguaclip/internal/providers/mymemory"
	"linguaclip/internal/providers/whatlang"
	"linguaclip/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Coordinator *usecase.Coordinator
	Config      config.Config
	Logger      *zap.Logger
	Settings    *config.SettingsStore
	History     *history.Store
	Hotkeys     *hotkeys.Manager

	closers []func() error
}

// Close releases resources opened by Build.
func (s Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewLogger returns a production logger for env "production" and a
// development logger otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Build wires all backend dependencies for the current runtime.
func Build(ctx context.Context, eventSink ports.EventSink, clipboard ports.Clipboard) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger, err := NewLogger(cfg.Env)
	if err != nil {
		return Services{}, fmt.Errorf("failed to build logger: %w", err)
	}

	services := Services{
		Config:   cfg,
		Logger:   logger,
		Settings: config.NewSettingsStore(cfg.SettingsFile, logger.Named("settings")),
	}
	services.closers = append(services.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	deps := usecase.Dependencies{
		Translator: mymemory.New(mymemory.Config{
			BaseURL: cfg.Translation.BaseURL,
			Email:   cfg.Translation.Email,
			Timeout: cfg.Translation.Timeout,
		}),
		Detector:  whatlang.New(cfg.Detection.MinConfidence),
		Player:    audio.NewFFPlayPlayer(cfg.Audio.PlayerCommand),
		Clipboard: clipboard,
		Paster:    desktop.NewCommandPaster(cfg.Desktop.PasteCommand),
		Events:    eventSink,
	}
	if cfg.Speech.Enabled {
		deps.Speech = googletts.New(googletts.Config{
			BaseURL: cfg.Speech.BaseURL,
			TLD:     cfg.Speech.TLD,
			Dir:     cfg.Speech.Dir,
			Timeout: cfg.Speech.Timeout,
		})
	}

	if cfg.History.Enabled {
		db, err := history.Open(ctx, cfg.History.Path)
		if err != nil {
			logger.Warn("translation history disabled", zap.String("path", cfg.History.Path), zap.Error(err))
			eventSink.Error(domain.ErrorCodeHistory, err.Error())
		} else {
			services.History = history.NewStore(db)
			deps.History = services.History
			services.closers = append(services.closers, db.Close)
		}
	}

	services.Coordinator = usecase.NewCoordinator(
		deps,
		usecase.Config{
			NativeLanguage:      cfg.Coordinator.NativeLanguage,
			DebounceDelay:       cfg.Coordinator.DebounceDelay,
			ClipboardInterval:   cfg.Coordinator.ClipboardInterval,
			MinClipboardLength:  cfg.Coordinator.MinClipboardLength,
			AutoInsertDelay:     cfg.Coordinator.AutoInsertDelay,
			PasteDelay:          cfg.Desktop.PasteDelay,
			BackendTimeout:      cfg.Coordinator.BackendTimeout,
			StatusResetDelay:    cfg.Coordinator.StatusResetDelay,
			RetryWithAutoDetect: cfg.Translation.RetryAutoDetect,
		},
		cfg.Settings,
		logger.Named("coordinator"),
	)

	if cfg.Hotkeys.Enabled {
		services.Hotkeys = hotkeys.NewManager(hotkeys.DefaultBindings(services.Coordinator), logger.Named("hotkeys"))
	}

	return services, nil
}
