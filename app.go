package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"linguaclip/internal/bootstrap"
	"linguaclip/internal/domain"
	"linguaclip/internal/usecase"
)

const (
	eventMode       = "linguaclip:mode"
	eventSlot       = "linguaclip:slot"
	eventStatus     = "linguaclip:status"
	eventSettings   = "linguaclip:settings"
	eventManualCopy = "linguaclip:manual-copy"
	eventError      = "linguaclip:error"

	defaultHistoryLimit = 50
)

// App is the Wails application root. It also serves as the coordinator's
// event sink, forwarding every update to the frontend.
type App struct {
	ctx context.Context

	services    bootstrap.Services
	coordinator *usecase.Coordinator
	logger      *zap.Logger
	bootErr     error

	cancel context.CancelFunc
	done   chan struct{}

	// settingsQueue holds the latest settings awaiting persistence.
	settingsQueue chan domain.Settings
}

func NewApp() *App {
	return &App{
		logger:        zap.NewNop(),
		settingsQueue: make(chan domain.Settings, 1),
	}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(ctx, a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.Error(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.services = services
	a.coordinator = services.Coordinator
	a.logger = services.Logger

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.applySettings(runCtx)
	go func() {
		defer close(a.done)
		if err := a.coordinator.Run(runCtx); err != nil {
			a.logger.Error("coordinator stopped with error", zap.Error(err))
		}
	}()

	if services.Hotkeys != nil {
		if err := services.Hotkeys.Start(runCtx); err != nil {
			a.Error(domain.ErrorCodeHotkeys, err.Error())
		}
	}

	err = services.Settings.Watch(services.Config.Settings, func(settings domain.Settings) {
		if err := a.coordinator.UpdateSettings(settings); err != nil {
			a.logger.Debug("settings reload dropped", zap.Error(err))
		}
	})
	if err != nil {
		a.logger.Warn("settings file watch disabled", zap.Error(err))
	}
}

func (a *App) shutdown(_ context.Context) {
	if a.cancel != nil {
		a.cancel()
		<-a.done
	}
	if a.services.Hotkeys != nil {
		a.services.Hotkeys.Stop()
	}
	if err := a.services.Close(); err != nil {
		a.logger.Warn("failed to release resources", zap.Error(err))
	}
}

// SetInput updates the manual input text.
func (a *App) SetInput(text string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.SetInput(text)
}

// SetLanguages changes the manual language pair.
func (a *App) SetLanguages(source string, target string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.SetLanguages(source, target)
}

// SwapLanguages exchanges the manual source and target languages.
func (a *App) SwapLanguages() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.SwapLanguages()
}

// ToggleMode flips between manual and listening mode.
func (a *App) ToggleMode() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.ToggleMode()
}

// SetMode selects a mode by name.
func (a *App) SetMode(mode string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.SetMode(domain.Mode(mode))
}

// PlayAudio speaks the translation shown in the given slot.
func (a *App) PlayAudio(slot string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	id := domain.SlotID(slot)
	if id != domain.SlotManual && id != domain.SlotListening {
		return fmt.Errorf("unknown slot %q", slot)
	}
	return a.coordinator.PlayAudio(id)
}

func (a *App) StopAudio() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.StopAudio()
}

// InsertTranslation pastes the current translation into the focused window.
func (a *App) InsertTranslation() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.InsertToActiveWindow()
}

// CopyTranslation copies the current translation to the clipboard.
func (a *App) CopyTranslation() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.CopyOutput()
}

func (a *App) Clear() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.Clear()
}

// UpdateSettings replaces the user toggles.
func (a *App) UpdateSettings(settings domain.Settings) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.UpdateSettings(settings)
}

// GetState returns the coordinator snapshot for the initial render.
func (a *App) GetState() (domain.State, error) {
	if err := a.requireReady(); err != nil {
		return domain.State{}, err
	}
	return a.coordinator.Snapshot()
}

// GetLanguages returns the selectable languages sorted by name.
func (a *App) GetLanguages() []domain.Language {
	return domain.Languages()
}

// GetHistory returns the most recent translations, newest first.
func (a *App) GetHistory(limit int) ([]domain.HistoryRecord, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	if a.services.History == nil {
		return []domain.HistoryRecord{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return a.services.History.Recent(a.ctx, limit)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	cfg := a.services.Config

	info := map[string]string{
		"translator":     "MyMemory",
		"detector":       "whatlang",
		"speech":         "disabled",
		"player":         cfg.Audio.PlayerCommand,
		"nativeLanguage": domain.LanguageName(cfg.Coordinator.NativeLanguage),
		"settingsFile":   a.services.Settings.Path(),
		"history":        "disabled",
		"hotkeys":        "disabled",
	}
	if cfg.Speech.Enabled {
		info["speech"] = "Google TTS"
	}
	if a.services.History != nil {
		info["history"] = cfg.History.Path
		if n, err := a.services.History.Count(a.ctx); err == nil {
			info["historyCount"] = strconv.Itoa(n)
		}
	}
	if a.services.Hotkeys != nil {
		info["hotkeys"] = a.services.Hotkeys.Names()
	}
	return info
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.coordinator == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// ModeChanged emits the active mode to the frontend.
func (a *App) ModeChanged(mode domain.Mode) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventMode, map[string]string{"mode": string(mode)})
}

// SlotChanged emits one output slot with its display text.
func (a *App) SlotChanged(view domain.SlotView) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSlot, map[string]any{
		"slot":         view.Slot,
		"kind":         view.Output.Kind,
		"display":      view.Output.Display(),
		"detectedText": view.DetectedText,
		"detectedLang": domain.LanguageName(view.DetectedLang),
		"audio":        view.Audio,
		"canPlay":      view.CanPlay,
	})
}

// StatusChanged emits the status line.
func (a *App) StatusChanged(status domain.Status) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventStatus, map[string]string{
		"reason":  string(status.Reason),
		"message": statusMessage(status),
	})
}

// SettingsChanged forwards the settings to the frontend and queues them for
// persistence. Only the newest queued value is kept.
func (a *App) SettingsChanged(settings domain.Settings) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSettings, settings)
	queueLatest(a.settingsQueue, settings)
}

// applySettings saves queued settings and applies window-level toggles off
// the coordinator goroutine.
func (a *App) applySettings(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case settings := <-a.settingsQueue:
			written, err := a.services.Settings.Persist(settings)
			if err != nil {
				a.logger.Warn("failed to persist settings", zap.Error(err))
			} else if written {
				a.logger.Debug("settings saved", zap.String("path", a.services.Settings.Path()))
			}
			runtime.WindowSetAlwaysOnTop(a.ctx, settings.AlwaysOnTop)
		}
	}
}

// queueLatest replaces any value still waiting in queue with settings. queue
// must have capacity 1 and a single sender.
func queueLatest(queue chan domain.Settings, settings domain.Settings) {
	select {
	case <-queue:
	default:
	}
	queue <- settings
}

// ManualCopy shows text the user has to paste by hand.
func (a *App) ManualCopy(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventManualCopy, map[string]string{"text": text})
	go func() {
		_, err := runtime.MessageDialog(a.ctx, runtime.MessageDialogOptions{
			Type:    runtime.InfoDialog,
			Title:   "Copy Translation",
			Message: manualCopyMessage(text),
		})
		if err != nil {
			a.logger.Debug("manual copy dialog failed", zap.Error(err))
		}
	}()
}

// Error emits backend errors to the UI.
func (a *App) Error(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func statusMessage(status domain.Status) string {
	switch status.Reason {
	case domain.StatusReadyManual:
		return "Ready - Translation mode"
	case domain.StatusListening:
		return "Listening for incoming text..."
	case domain.StatusTranslating:
		return "Translating..."
	case domain.StatusTranslated:
		if status.Detail == "" {
			return "Translated"
		}
		return "Translated to " + status.Detail
	case domain.StatusTranslationFailed:
		return "Translation failed"
	case domain.StatusDetected:
		return "Detected " + status.Detail + " text"
	case domain.StatusAutoTranslated:
		return "Auto-translation ready"
	case domain.StatusGeneratingAudio:
		return "Generating audio..."
	case domain.StatusPlayingAudio:
		if domain.SlotID(status.Detail) == domain.SlotListening {
			return "Playing auto-translation"
		}
		return "Playing translation"
	case domain.StatusAudioReady:
		return "Audio ready"
	case domain.StatusInserted:
		return "Translation inserted into active application"
	case domain.StatusCopied:
		return "Translation copied to clipboard"
	case domain.StatusManualCopyRequired:
		return "Translation ready to copy"
	case domain.StatusCleared:
		return "Cleared"
	case domain.StatusSettingsUpdated:
		return "Settings updated"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeTranslation:
		return "Translation service unavailable"
	case domain.ErrorCodeSpeech:
		return "Text-to-speech unavailable"
	case domain.ErrorCodePlayback:
		return "Audio playback unavailable"
	case domain.ErrorCodeClipboard:
		return "Clipboard access failed"
	case domain.ErrorCodeHistory:
		return "Translation history disabled"
	case domain.ErrorCodeHotkeys:
		return "Global hotkeys unavailable"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

func manualCopyMessage(text string) string {
	const limit = 500
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > limit {
		runes = append(runes[:limit], '…')
	}
	return "Paste could not be sent automatically. Copy this translation:\n\n" + string(runes)
}

type wailsClipboard struct{}

func (c *wailsClipboard) GetText(ctx context.Context) (string, error) {
	return runtime.ClipboardGetText(ctx)
}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
