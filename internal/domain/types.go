package domain

import "time"

// Mode selects which pipeline is active.
type Mode string

const (
	ModeManual    Mode = "manual"
	ModeListening Mode = "listening"
)

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeListening {
		return ModeManual
	}
	return ModeListening
}

// SlotID identifies an independent output channel.
type SlotID string

const (
	SlotManual    SlotID = "manual"
	SlotListening SlotID = "listening"
)

// SlotFor returns the slot displayed in the given mode.
func SlotFor(mode Mode) SlotID {
	if mode == ModeListening {
		return SlotListening
	}
	return SlotManual
}

// TranslationRequest is immutable once issued.
type TranslationRequest struct {
	ID         uint64 `json:"id"`
	Slot       SlotID `json:"slot"`
	SourceText string `json:"sourceText"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// ResultStatus reports whether a backend call produced a translation.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailed  ResultStatus = "failed"
)

// TranslationResult is produced by a translation worker and consumed once.
type TranslationResult struct {
	Request        TranslationRequest `json:"request"`
	TranslatedText string             `json:"translatedText"`
	Status         ResultStatus       `json:"status"`
	Reason         string             `json:"reason,omitempty"`
}

// OutputKind tags what an output view currently holds.
type OutputKind string

const (
	OutputEmpty      OutputKind = "empty"
	OutputPending    OutputKind = "pending"
	OutputTranslated OutputKind = "translated"
	OutputFailed     OutputKind = "failed"
)

// FailurePrefix marks failed output so it is never mistaken for a translation.
const FailurePrefix = "Translation error: "

// OutputView is what a slot displays.
type OutputView struct {
	Kind    OutputKind         `json:"kind"`
	Text    string             `json:"text"`
	Request TranslationRequest `json:"request"`
}

// Display renders the view for a text area.
func (v OutputView) Display() string {
	switch v.Kind {
	case OutputPending:
		return "Translating..."
	case OutputFailed:
		return FailurePrefix + v.Text
	case OutputTranslated:
		return v.Text
	default:
		return ""
	}
}

// Deliverable reports whether the view holds real translated text.
func (v OutputView) Deliverable() bool {
	return v.Kind == OutputTranslated && v.Text != ""
}

// AudioState models the per-slot speech lifecycle.
type AudioState string

const (
	AudioIdle       AudioState = "idle"
	AudioGenerating AudioState = "generating"
	AudioPlaying    AudioState = "playing"
)

// SlotView is the externally visible state of one slot.
type SlotView struct {
	Slot         SlotID     `json:"slot"`
	Output       OutputView `json:"output"`
	DetectedText string     `json:"detectedText,omitempty"`
	DetectedLang string     `json:"detectedLang,omitempty"`
	Audio        AudioState `json:"audio"`
	CanPlay      bool       `json:"canPlay"`
}

// Settings are the user toggles read before dispatch decisions.
type Settings struct {
	AutoInsert       bool   `json:"autoInsert" mapstructure:"auto_insert"`
	MonitorClipboard bool   `json:"monitorClipboard" mapstructure:"monitor_clipboard"`
	AlwaysOnTop      bool   `json:"alwaysOnTop" mapstructure:"always_on_top"`
	AutoPlayAudio    bool   `json:"autoPlayAudio" mapstructure:"auto_play_audio"`
	SourceLanguage   string `json:"sourceLanguage" mapstructure:"source_language" validate:"required,source_language"`
	TargetLanguage   string `json:"targetLanguage" mapstructure:"target_language" validate:"required,language"`
}

// DefaultSettings mirrors the widget's out-of-the-box toggles.
func DefaultSettings() Settings {
	return Settings{
		AutoInsert:       true,
		MonitorClipboard: true,
		AlwaysOnTop:      true,
		AutoPlayAudio:    false,
		SourceLanguage:   "en",
		TargetLanguage:   "es",
	}
}

// HistoryRecord is appended once per successful translation.
type HistoryRecord struct {
	ID             int64     `json:"id" db:"id"`
	SourceText     string    `json:"sourceText" db:"source_text"`
	TranslatedText string    `json:"translatedText" db:"translated_text"`
	SourceLang     string    `json:"sourceLang" db:"source_lang"`
	TargetLang     string    `json:"targetLang" db:"target_lang"`
	Timestamp      time.Time `json:"timestamp" db:"created_at"`
}

// AudioArtifact is a synthesized audio file owned by the coordinator.
type AudioArtifact struct {
	Path     string `json:"path"`
	Language string `json:"language"`
}

// State is a point-in-time copy of the coordinator state.
type State struct {
	Mode       Mode     `json:"mode"`
	Input      string   `json:"input"`
	SourceLang string   `json:"sourceLang"`
	TargetLang string   `json:"targetLang"`
	Settings   Settings `json:"settings"`
	Manual     SlotView `json:"manual"`
	Listening  SlotView `json:"listening"`
	Watching   bool     `json:"watching"`
}

// Displayed returns the slot for the current mode.
func (s State) Displayed() SlotView {
	if s.Mode == ModeListening {
		return s.Listening
	}
	return s.Manual
}

// StatusReason provides a structured reason for status line updates.
type StatusReason string

const (
	StatusReadyManual        StatusReason = "ready_manual"
	StatusListening          StatusReason = "listening"
	StatusTranslating        StatusReason = "translating"
	StatusTranslated         StatusReason = "translated"
	StatusTranslationFailed  StatusReason = "translation_failed"
	StatusDetected           StatusReason = "detected"
	StatusAutoTranslated     StatusReason = "auto_translated"
	StatusGeneratingAudio    StatusReason = "generating_audio"
	StatusPlayingAudio       StatusReason = "playing_audio"
	StatusAudioReady         StatusReason = "audio_ready"
	StatusInserted           StatusReason = "inserted"
	StatusCopied             StatusReason = "copied"
	StatusManualCopyRequired StatusReason = "manual_copy_required"
	StatusCleared            StatusReason = "cleared"
	StatusSettingsUpdated    StatusReason = "settings_updated"
)

// Status is a status line update.
type Status struct {
	Reason StatusReason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeTranslation ErrorCode = "translation"
	ErrorCodeSpeech      ErrorCode = "speech"
	ErrorCodePlayback    ErrorCode = "playback"
	ErrorCodeClipboard   ErrorCode = "clipboard"
	ErrorCodeHistory     ErrorCode = "history"
	ErrorCodeHotkeys     ErrorCode = "hotkeys"
)
