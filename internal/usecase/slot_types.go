package usecase

import (
	"context"
	"time"

	"linguaclip/internal/domain"
	"linguaclip/internal/ports"
)

type outputSlot struct {
	id      domain.SlotID
	view    domain.OutputView
	pending uint64
	audio   domain.AudioState

	// speaking is the request whose text is being synthesized or played.
	speaking uint64

	detectedText string
	detectedLang string

	insertSeq   uint64
	insertTimer *time.Timer
}

func newOutputSlot(id domain.SlotID) outputSlot {
	return outputSlot{
		id:    id,
		view:  domain.OutputView{Kind: domain.OutputEmpty},
		audio: domain.AudioIdle,
	}
}

func (s *outputSlot) cancelInsert() {
	if s.insertTimer != nil {
		s.insertTimer.Stop()
		s.insertTimer = nil
	}
	s.insertSeq = 0
}

func (s *outputSlot) clear() {
	s.cancelInsert()
	s.pending = 0
	s.view = domain.OutputView{Kind: domain.OutputEmpty}
}

type activePlayback struct {
	slot     domain.SlotID
	playback ports.Playback
	seq      uint64
}

// coordinatorState is owned by the goroutine running Coordinator.Run.
type coordinatorState struct {
	ctx context.Context

	mode     domain.Mode
	input    string
	settings domain.Settings

	// inputPending is set while an edit waits for the debounce window.
	inputPending bool

	manual    outputSlot
	listening outputSlot
	watch     clipboardWatch

	nextRequestID uint64
	statusSeq     uint64
	insertSeq     uint64
	playSeq       uint64

	playback *activePlayback
	artifact *domain.AudioArtifact

	translationDisabled string
	audioDisabled       bool
}

func (st *coordinatorState) slot(id domain.SlotID) *outputSlot {
	if id == domain.SlotListening {
		return &st.listening
	}
	return &st.manual
}

func (st *coordinatorState) watchActive() bool {
	return st.mode == domain.ModeListening && st.settings.MonitorClipboard
}

func (st *coordinatorState) view(id domain.SlotID) domain.SlotView {
	slot := st.slot(id)
	return domain.SlotView{
		Slot:         slot.id,
		Output:       slot.view,
		DetectedText: slot.detectedText,
		DetectedLang: slot.detectedLang,
		Audio:        slot.audio,
		CanPlay:      !st.audioDisabled && slot.view.Deliverable() && slot.audio == domain.AudioIdle,
	}
}

func (st *coordinatorState) snapshot() domain.State {
	return domain.State{
		Mode:       st.mode,
		Input:      st.input,
		SourceLang: st.settings.SourceLanguage,
		TargetLang: st.settings.TargetLanguage,
		Settings:   st.settings,
		Manual:     st.view(domain.SlotManual),
		Listening:  st.view(domain.SlotListening),
		Watching:   st.watchActive(),
	}
}
