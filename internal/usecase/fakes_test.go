package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linguaclip/internal/domain"
	"linguaclip/internal/ports"
)

func testConfig() Config {
	return Config{
		NativeLanguage:     "en",
		DebounceDelay:      30 * time.Millisecond,
		ClipboardInterval:  10 * time.Millisecond,
		MinClipboardLength: 5,
		AutoInsertDelay:    20 * time.Millisecond,
		BackendTimeout:     time.Second,
	}
}

func startCoordinator(t *testing.T, deps Dependencies, cfg Config, settings domain.Settings, logger *zap.Logger) *Coordinator {
	t.Helper()

	if deps.Events == nil {
		deps.Events = &fakeEventSink{}
	}
	c := NewCoordinator(deps, cfg, settings, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("coordinator did not stop")
		}
	})
	return c
}

func snapshot(t *testing.T, c *Coordinator) domain.State {
	t.Helper()
	state, err := c.Snapshot()
	require.NoError(t, err)
	return state
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

type translateCall struct {
	text   string
	source string
	target string
}

type fakeTranslator struct {
	mu    sync.Mutex
	calls []translateCall
	hold  map[string]chan struct{}
	fn    func(text, source, target string) (string, error)
}

func (f *fakeTranslator) Translate(ctx context.Context, text string, source string, target string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, translateCall{text: text, source: source, target: target})
	gate := f.hold[text]
	fn := f.fn
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if fn == nil {
		return "[" + target + "] " + text, nil
	}
	return fn(text, source, target)
}

func (f *fakeTranslator) snapshotCalls() []translateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]translateCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeDetector struct {
	mu    sync.Mutex
	lang  string
	err   error
	calls []string
}

func (f *fakeDetector) Detect(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	return f.lang, f.err
}

func (f *fakeDetector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSpeech struct {
	mu       sync.Mutex
	err      error
	hold     map[string]chan struct{}
	calls    []translateCall
	released []string
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text string, language string) (domain.AudioArtifact, error) {
	f.mu.Lock()
	f.calls = append(f.calls, translateCall{text: text, target: language})
	path := fmt.Sprintf("/tmp/speech-%d.mp3", len(f.calls))
	gate := f.hold[text]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.AudioArtifact{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.AudioArtifact{}, err
	}
	return domain.AudioArtifact{Path: path, Language: language}, nil
}

func (f *fakeSpeech) Release(artifact domain.AudioArtifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, artifact.Path)
	return nil
}

func (f *fakeSpeech) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSpeech) snapshotTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		out = append(out, call.text)
	}
	return out
}

func (f *fakeSpeech) snapshotReleased() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.released))
	copy(out, f.released)
	return out
}

type fakePlayback struct {
	done     chan struct{}
	stopOnce sync.Once
}

func newFakePlayback() *fakePlayback {
	return &fakePlayback{done: make(chan struct{})}
}

func (p *fakePlayback) Done() <-chan struct{} { return p.done }

func (p *fakePlayback) Err() error { return nil }

func (p *fakePlayback) Stop() error {
	p.stopOnce.Do(func() { close(p.done) })
	return nil
}

type fakePlayer struct {
	mu         sync.Mutex
	err        error
	autoFinish time.Duration
	played     []domain.AudioArtifact
}

func (f *fakePlayer) Play(_ context.Context, artifact domain.AudioArtifact) (ports.Playback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.played = append(f.played, artifact)
	playback := newFakePlayback()
	if f.autoFinish > 0 {
		time.AfterFunc(f.autoFinish, func() { _ = playback.Stop() })
	}
	return playback, nil
}

func (f *fakePlayer) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

func (f *fakePlayer) snapshotPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.played))
	for _, artifact := range f.played {
		out = append(out, artifact.Path)
	}
	return out
}

type fakeClipboard struct {
	mu     sync.Mutex
	text   string
	getErr error
	setErr error
	writes []string
}

func (f *fakeClipboard) GetText(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.getErr
}

func (f *fakeClipboard) SetText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.writes = append(f.writes, text)
	f.text = text
	return nil
}

func (f *fakeClipboard) set(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
}

func (f *fakeClipboard) snapshotWrites() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	copy(out, f.writes)
	return out
}

type fakePaster struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakePaster) Paste(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakePaster) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeHistory struct {
	mu      sync.Mutex
	err     error
	records []domain.HistoryRecord
}

func (f *fakeHistory) Append(_ context.Context, record domain.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) snapshotRecords() []domain.HistoryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.HistoryRecord, len(f.records))
	copy(out, f.records)
	return out
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

type fakeEventSink struct {
	mu sync.Mutex

	modes    []domain.Mode
	slots    []domain.SlotView
	statuses []domain.Status
	settings []domain.Settings
	copies   []string
	errors   []errEvent
}

func (f *fakeEventSink) ModeChanged(mode domain.Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
}

func (f *fakeEventSink) SlotChanged(view domain.SlotView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots = append(f.slots, view)
}

func (f *fakeEventSink) StatusChanged(status domain.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeEventSink) SettingsChanged(settings domain.Settings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = append(f.settings, settings)
}

func (f *fakeEventSink) ManualCopy(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copies = append(f.copies, text)
}

func (f *fakeEventSink) Error(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) audioStates(slot domain.SlotID) []domain.AudioState {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AudioState
	for _, view := range f.slots {
		if view.Slot != slot {
			continue
		}
		if len(out) == 0 || out[len(out)-1] != view.Audio {
			out = append(out, view.Audio)
		}
	}
	return out
}

func (f *fakeEventSink) snapshotCopies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.copies))
	copy(out, f.copies)
	return out
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]errEvent, len(f.errors))
	copy(out, f.errors)
	return out
}

func (f *fakeEventSink) hasStatus(reason domain.StatusReason) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, status := range f.statuses {
		if status.Reason == reason {
			return true
		}
	}
	return false
}

var errUnavailable = fmt.Errorf("not configured: %w", ports.ErrBackendUnavailable)

var errBoom = errors.New("boom")
