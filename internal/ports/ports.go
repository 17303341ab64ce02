package ports

import (
	"context"
	"errors"

	"linguaclip/internal/domain"
)

// ErrBackendUnavailable marks a capability that is not reachable or not
// initialized at all. Adapters wrap it; the coordinator disables the
// capability for the rest of the session when it sees it.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Translator translates text. sourceLang may be domain.AutoLanguage.
type Translator interface {
	Translate(ctx context.Context, text string, sourceLang string, targetLang string) (string, error)
}

// Detector guesses the language of a text sample.
type Detector interface {
	Detect(ctx context.Context, text string) (string, error)
}

// Synthesizer converts text into a playable audio artifact.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, language string) (domain.AudioArtifact, error)
	Release(artifact domain.AudioArtifact) error
}

// Playback is a running audio playback. Err reports how the player exited
// once Done is closed.
type Playback interface {
	Done() <-chan struct{}
	Err() error
	Stop() error
}

// AudioPlayer hands audio artifacts to the OS player.
type AudioPlayer interface {
	Play(ctx context.Context, artifact domain.AudioArtifact) (Playback, error)
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	GetText(ctx context.Context) (string, error)
	SetText(ctx context.Context, text string) error
}

// Paster sends a paste keystroke to the focused window.
type Paster interface {
	Paste(ctx context.Context) error
}

// HistoryStore appends translation records.
type HistoryStore interface {
	Append(ctx context.Context, record domain.HistoryRecord) error
}

// EventSink emits coordinator state and events to the UI.
type EventSink interface {
	ModeChanged(mode domain.Mode)
	SlotChanged(view domain.SlotView)
	StatusChanged(status domain.Status)
	SettingsChanged(settings domain.Settings)
	ManualCopy(text string)
	Error(code domain.ErrorCode, detail string)
}
