package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"linguaclip/internal/domain"
	"linguaclip/internal/ports"
)

// startAudio speaks the slot's translation on request. It does nothing while
// the slot is already generating or playing.
func (c *Coordinator) startAudio(st *coordinatorState, id domain.SlotID) {
	slot := st.slot(id)
	if slot.audio != domain.AudioIdle {
		return
	}
	c.synthesize(st, slot)
}

// autoPlay speaks a fresh result, superseding whatever the slot is
// generating or playing.
func (c *Coordinator) autoPlay(st *coordinatorState, id domain.SlotID) {
	slot := st.slot(id)
	if slot.audio == domain.AudioPlaying {
		c.stopPlayback(st, false)
	}
	c.synthesize(st, slot)
}

func (c *Coordinator) synthesize(st *coordinatorState, slot *outputSlot) {
	if st.audioDisabled || !slot.view.Deliverable() {
		return
	}

	id := slot.id
	requestID := slot.view.Request.ID
	slot.audio = domain.AudioGenerating
	slot.speaking = requestID
	c.emitSlot(st, id)
	c.setStatus(st, domain.StatusGeneratingAudio, "")

	text := slot.view.Text
	language := slot.view.Request.TargetLang
	ctx := st.ctx
	go func() {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.BackendTimeout)
		defer cancel()
		artifact, err := c.deps.Speech.Synthesize(callCtx, text, language)
		c.post(func(st *coordinatorState) {
			c.audioReady(st, id, requestID, artifact, err)
		})
	}()
}

func (c *Coordinator) audioReady(st *coordinatorState, id domain.SlotID, requestID uint64, artifact domain.AudioArtifact, err error) {
	slot := st.slot(id)
	current := slot.audio == domain.AudioGenerating && slot.speaking == requestID
	if err != nil {
		c.logger.Warn("speech synthesis failed", zap.String("slot", string(id)), zap.Error(err))
		if !current {
			c.noteAudioUnavailable(st, domain.ErrorCodeSpeech, err)
			return
		}
		c.audioFailed(st, slot, domain.ErrorCodeSpeech, err)
		return
	}
	if !current {
		c.releaseArtifact(artifact)
		return
	}
	if slot.view.Request.ID != requestID {
		c.logger.Debug("dropping speech for replaced output",
			zap.String("slot", string(id)),
			zap.Uint64("request_id", requestID))
		c.releaseArtifact(artifact)
		slot.audio = domain.AudioIdle
		slot.speaking = 0
		c.emitSlot(st, id)
		return
	}

	c.stopPlayback(st, false)

	playback, err := c.deps.Player.Play(st.ctx, artifact)
	if err != nil {
		c.logger.Warn("audio playback failed", zap.String("path", artifact.Path), zap.Error(err))
		c.releaseArtifact(artifact)
		c.audioFailed(st, slot, domain.ErrorCodePlayback, err)
		return
	}

	st.playSeq++
	seq := st.playSeq
	st.playback = &activePlayback{slot: id, playback: playback, seq: seq}
	st.artifact = &artifact

	slot.audio = domain.AudioPlaying
	c.emitSlot(st, id)
	c.setStatus(st, domain.StatusPlayingAudio, string(id))

	ctx := st.ctx
	go func() {
		if waitForPlayback(ctx, playback) {
			c.post(func(st *coordinatorState) {
				c.playbackFinished(st, seq)
			})
		}
	}()
}

func (c *Coordinator) audioFailed(st *coordinatorState, slot *outputSlot, code domain.ErrorCode, err error) {
	c.noteAudioUnavailable(st, code, err)
	slot.audio = domain.AudioIdle
	slot.speaking = 0
	c.emitSlot(st, slot.id)
	c.setStatus(st, domain.StatusAudioReady, "")
}

func (c *Coordinator) noteAudioUnavailable(st *coordinatorState, code domain.ErrorCode, err error) {
	if errors.Is(err, ports.ErrBackendUnavailable) && !st.audioDisabled {
		st.audioDisabled = true
		c.deps.Events.Error(code, err.Error())
	}
}

func (c *Coordinator) playbackFinished(st *coordinatorState, seq uint64) {
	if st.playback == nil || st.playback.seq != seq {
		return
	}
	active := st.playback
	st.playback = nil
	if err := active.playback.Err(); err != nil {
		c.logger.Warn("audio player exited with an error", zap.Error(err))
	}

	slot := st.slot(active.slot)
	slot.audio = domain.AudioIdle
	slot.speaking = 0
	c.emitSlot(st, slot.id)
	c.setStatus(st, domain.StatusAudioReady, "")
}

// stopPlayback stops any running playback and deletes the current artifact
// once the player has confirmed it stopped. wait blocks until that is done.
func (c *Coordinator) stopPlayback(st *coordinatorState, wait bool) {
	active := st.playback
	artifact := st.artifact
	st.playback = nil
	st.artifact = nil

	if active != nil {
		slot := st.slot(active.slot)
		if slot.audio == domain.AudioPlaying {
			slot.audio = domain.AudioIdle
			c.emitSlot(st, slot.id)
		}
	}
	if active == nil && artifact == nil {
		return
	}

	cleanup := func() {
		if active != nil {
			if err := active.playback.Stop(); err != nil {
				c.logger.Debug("audio playback stop reported an error", zap.Error(err))
			}
		}
		if artifact != nil {
			c.releaseArtifact(*artifact)
		}
	}
	if wait {
		cleanup()
		return
	}
	go cleanup()
}

func (c *Coordinator) releaseArtifact(artifact domain.AudioArtifact) {
	if c.deps.Speech == nil || artifact.Path == "" {
		return
	}
	if err := c.deps.Speech.Release(artifact); err != nil {
		c.logger.Debug("failed to release audio artifact", zap.String("path", artifact.Path), zap.Error(err))
	}
}

func waitForPlayback(ctx context.Context, playback ports.Playback) bool {
	select {
	case <-playback.Done():
		return true
	case <-ctx.Done():
		return false
	}
}
