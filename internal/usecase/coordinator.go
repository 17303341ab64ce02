package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"go.uber.org/zap"

	"linguaclip/internal/domain"
	"linguaclip/internal/ports"
)

var (
	ErrStopped        = errors.New("coordinator is not running")
	ErrAlreadyRunning = errors.New("coordinator is already running")
)

// Config controls coordinator timing and thresholds.
type Config struct {
	NativeLanguage      string
	DebounceDelay       time.Duration
	ClipboardInterval   time.Duration
	MinClipboardLength  int
	AutoInsertDelay     time.Duration
	PasteDelay          time.Duration
	BackendTimeout      time.Duration
	StatusResetDelay    time.Duration
	RetryWithAutoDetect bool
}

func (c Config) withDefaults() Config {
	if c.NativeLanguage == "" {
		c.NativeLanguage = domain.NativeLanguage
	}
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = 500 * time.Millisecond
	}
	if c.ClipboardInterval <= 0 {
		c.ClipboardInterval = time.Second
	}
	if c.MinClipboardLength <= 0 {
		c.MinClipboardLength = 5
	}
	if c.AutoInsertDelay <= 0 {
		c.AutoInsertDelay = time.Second
	}
	if c.PasteDelay < 0 {
		c.PasteDelay = 0
	}
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = 10 * time.Second
	}
	return c
}

// Dependencies are the adapters the coordinator drives. Nil capabilities are
// treated as unavailable for the whole session.
type Dependencies struct {
	Translator ports.Translator
	Detector   ports.Detector
	Speech     ports.Synthesizer
	Player     ports.AudioPlayer
	Clipboard  ports.Clipboard
	Paster     ports.Paster
	History    ports.HistoryStore
	Events     ports.EventSink
}

// Coordinator owns the mode state machine, debounced dispatch, clipboard
// watch, result reconciliation and audio lifecycle. All state lives on the
// goroutine running Run; every other goroutine talks to it through the inbox.
type Coordinator struct {
	deps     Dependencies
	cfg      Config
	logger   *zap.Logger
	delivery outputDelivery

	inbox    chan func(*coordinatorState)
	stopped  chan struct{}
	started  atomic.Bool
	debounce func(func())

	state *coordinatorState
}

func NewCoordinator(deps Dependencies, cfg Config, settings domain.Settings, logger *zap.Logger) *Coordinator {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Events == nil {
		deps.Events = nopEventSink{}
	}
	if !validSource(settings.SourceLanguage) {
		settings.SourceLanguage = cfg.NativeLanguage
	}
	if !domain.KnownLanguage(settings.TargetLanguage) {
		settings.TargetLanguage = domain.DefaultSettings().TargetLanguage
	}

	st := &coordinatorState{
		mode:      domain.ModeManual,
		settings:  settings,
		manual:    newOutputSlot(domain.SlotManual),
		listening: newOutputSlot(domain.SlotListening),
		watch:     newClipboardWatch(cfg.MinClipboardLength),
	}
	if deps.Translator == nil {
		st.translationDisabled = "translation service not available"
	}
	if deps.Speech == nil || deps.Player == nil {
		st.audioDisabled = true
	}

	return &Coordinator{
		deps:     deps,
		cfg:      cfg,
		logger:   logger,
		delivery: newOutputDelivery(deps.Clipboard, deps.Paster, cfg.PasteDelay),
		inbox:    make(chan func(*coordinatorState), 128),
		stopped:  make(chan struct{}),
		debounce: debounce.New(cfg.DebounceDelay),
		state:    st,
	}
}

// Run processes commands, worker results and clipboard ticks until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.stopped)

	st := c.state
	st.ctx = ctx

	ticker := time.NewTicker(c.cfg.ClipboardInterval)
	defer ticker.Stop()

	c.deps.Events.ModeChanged(st.mode)
	c.deps.Events.SettingsChanged(st.settings)
	c.emitSlot(st, domain.SlotManual)
	c.emitSlot(st, domain.SlotListening)
	c.setStatus(st, modeStatus(st.mode), "")

	for {
		select {
		case <-ctx.Done():
			c.shutdown(st)
			return nil
		case fn := <-c.inbox:
			fn(st)
		case <-ticker.C:
			c.pollClipboard(st)
		}
	}
}

func (c *Coordinator) post(fn func(*coordinatorState)) bool {
	select {
	case <-c.stopped:
		return false
	default:
	}
	select {
	case c.inbox <- fn:
		return true
	case <-c.stopped:
		return false
	}
}

func (c *Coordinator) do(fn func(*coordinatorState)) error {
	if !c.post(fn) {
		return ErrStopped
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() (domain.State, error) {
	reply := make(chan domain.State, 1)
	if !c.post(func(st *coordinatorState) { reply <- st.snapshot() }) {
		return domain.State{}, ErrStopped
	}
	select {
	case state := <-reply:
		return state, nil
	case <-c.stopped:
		return domain.State{}, ErrStopped
	}
}

// SetInput records an edit of the manual input and restarts the debounce window.
func (c *Coordinator) SetInput(text string) error {
	return c.do(func(st *coordinatorState) {
		st.input = text
		st.inputPending = true
		c.debounce(func() { c.post(c.flushPendingInput) })
	})
}

// SetLanguages changes the manual language pair and re-translates non-empty
// input. Codes and display names are both accepted.
func (c *Coordinator) SetLanguages(source string, target string) error {
	source = domain.ResolveLanguage(source)
	target = domain.ResolveLanguage(target)
	if !validSource(source) {
		return fmt.Errorf("unsupported source language %q", source)
	}
	if !domain.KnownLanguage(target) {
		return fmt.Errorf("unsupported target language %q", target)
	}
	return c.do(func(st *coordinatorState) {
		c.applyLanguages(st, source, target)
	})
}

// SwapLanguages exchanges source and target. An auto-detect source cannot
// become a target, so the swap is skipped in that case.
func (c *Coordinator) SwapLanguages() error {
	return c.do(func(st *coordinatorState) {
		source, target := st.settings.SourceLanguage, st.settings.TargetLanguage
		if source == domain.AutoLanguage {
			c.logger.Debug("swap skipped: auto-detect cannot be a target language")
			return
		}
		c.applyLanguages(st, target, source)
	})
}

// ToggleMode flips between manual and listening mode.
func (c *Coordinator) ToggleMode() error {
	return c.do(func(st *coordinatorState) {
		c.applyMode(st, st.mode.Toggle())
	})
}

// SetMode switches to mode. Re-entering the current mode only re-issues its status.
func (c *Coordinator) SetMode(mode domain.Mode) error {
	if mode != domain.ModeManual && mode != domain.ModeListening {
		return fmt.Errorf("unknown mode %q", mode)
	}
	return c.do(func(st *coordinatorState) {
		c.applyMode(st, mode)
	})
}

// UpdateSettings replaces the user toggles.
func (c *Coordinator) UpdateSettings(settings domain.Settings) error {
	return c.do(func(st *coordinatorState) {
		previous := st.settings
		if !validSource(settings.SourceLanguage) {
			settings.SourceLanguage = previous.SourceLanguage
		}
		if !domain.KnownLanguage(settings.TargetLanguage) {
			settings.TargetLanguage = previous.TargetLanguage
		}
		if settings == previous {
			return
		}
		st.settings = settings
		c.deps.Events.SettingsChanged(settings)
		c.setStatus(st, domain.StatusSettingsUpdated, "")

		if settings.SourceLanguage != previous.SourceLanguage || settings.TargetLanguage != previous.TargetLanguage {
			c.retranslate(st)
		}
	})
}

// PlayAudio synthesizes and plays the translation shown in slot.
func (c *Coordinator) PlayAudio(slot domain.SlotID) error {
	return c.do(func(st *coordinatorState) {
		c.startAudio(st, slot)
	})
}

// StopAudio stops the current playback, if any.
func (c *Coordinator) StopAudio() error {
	return c.do(func(st *coordinatorState) {
		c.stopPlayback(st, false)
	})
}

// InsertToActiveWindow pastes the current mode's translation into the focused window.
func (c *Coordinator) InsertToActiveWindow() error {
	return c.do(func(st *coordinatorState) {
		c.deliver(st, domain.SlotFor(st.mode), true)
	})
}

// CopyOutput copies the current mode's translation to the clipboard.
func (c *Coordinator) CopyOutput() error {
	return c.do(func(st *coordinatorState) {
		c.deliver(st, domain.SlotFor(st.mode), false)
	})
}

// Clear empties the manual input and its output.
func (c *Coordinator) Clear() error {
	return c.do(func(st *coordinatorState) {
		st.input = ""
		st.inputPending = false
		st.manual.clear()
		c.emitSlot(st, domain.SlotManual)
		c.setStatus(st, domain.StatusCleared, "")
	})
}

// flushPendingInput runs when the debounce window closes. Input already
// dispatched by a language change in the meantime is not sent again.
func (c *Coordinator) flushPendingInput(st *coordinatorState) {
	if !st.inputPending {
		return
	}
	c.flushInput(st)
}

func (c *Coordinator) flushInput(st *coordinatorState) {
	st.inputPending = false
	text := strings.TrimSpace(st.input)
	if text == "" {
		st.manual.clear()
		c.emitSlot(st, domain.SlotManual)
		return
	}
	c.dispatchTranslation(st, domain.SlotManual, text, st.settings.SourceLanguage, st.settings.TargetLanguage)
}

func (c *Coordinator) retranslate(st *coordinatorState) {
	if strings.TrimSpace(st.input) != "" {
		c.flushInput(st)
	}
}

func (c *Coordinator) applyLanguages(st *coordinatorState, source string, target string) {
	st.settings.SourceLanguage = source
	st.settings.TargetLanguage = target
	c.deps.Events.SettingsChanged(st.settings)
	c.retranslate(st)
}

func (c *Coordinator) applyMode(st *coordinatorState, mode domain.Mode) {
	if st.mode != mode {
		st.mode = mode
		st.listening.cancelInsert()
		c.deps.Events.ModeChanged(mode)
	}
	c.setStatus(st, modeStatus(mode), "")
}

func (c *Coordinator) emitSlot(st *coordinatorState, id domain.SlotID) {
	c.deps.Events.SlotChanged(st.view(id))
}

func (c *Coordinator) shutdown(st *coordinatorState) {
	st.manual.cancelInsert()
	st.listening.cancelInsert()
	c.stopPlayback(st, true)
	c.logger.Debug("coordinator stopped")
}

type nopEventSink struct{}

func (nopEventSink) ModeChanged(domain.Mode) {}
func (nopEventSink) SlotChanged(domain.SlotView) {}
func (nopEventSink) StatusChanged(domain.Status) {}
func (nopEventSink) SettingsChanged(domain.Settings) {}
func (nopEventSink) ManualCopy(string) {}
func (nopEventSink) Error(domain.ErrorCode, string) {}

func validSource(code string) bool {
	return code == domain.AutoLanguage || domain.KnownLanguage(code)
}
