package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"linguaclip/internal/domain"
	"linguaclip/internal/ports"
)

type translationOutcome struct {
	result      domain.TranslationResult
	unavailable bool
}

func (c *Coordinator) dispatchTranslation(st *coordinatorState, id domain.SlotID, text string, source string, target string) {
	st.nextRequestID++
	req := domain.TranslationRequest{
		ID:         st.nextRequestID,
		Slot:       id,
		SourceText: text,
		SourceLang: source,
		TargetLang: target,
	}

	slot := st.slot(id)
	slot.cancelInsert()
	slot.pending = req.ID
	slot.view = domain.OutputView{Kind: domain.OutputPending, Request: req}
	c.emitSlot(st, id)
	c.setStatus(st, domain.StatusTranslating, "")

	if st.translationDisabled != "" {
		c.reconcile(st, failedOutcome(req, st.translationDisabled, true))
		return
	}

	ctx := st.ctx
	go func() {
		outcome := c.translate(ctx, req)
		c.post(func(st *coordinatorState) {
			c.reconcile(st, outcome)
		})
	}()
}

func (c *Coordinator) translate(ctx context.Context, req domain.TranslationRequest) translationOutcome {
	text, err := c.callTranslator(ctx, req.SourceText, req.SourceLang, req.TargetLang)
	if err != nil && c.cfg.RetryWithAutoDetect && req.SourceLang != domain.AutoLanguage && !errors.Is(err, ports.ErrBackendUnavailable) {
		c.logger.Debug("translation failed, retrying with auto-detect",
			zap.Uint64("request_id", req.ID),
			zap.Error(err))
		text, err = c.callTranslator(ctx, req.SourceText, domain.AutoLanguage, req.TargetLang)
	}
	if err != nil {
		c.logger.Warn("translation failed",
			zap.Uint64("request_id", req.ID),
			zap.String("slot", string(req.Slot)),
			zap.Error(err))
		return failedOutcome(req, err.Error(), errors.Is(err, ports.ErrBackendUnavailable))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return failedOutcome(req, "translation service returned no text", false)
	}
	return translationOutcome{result: domain.TranslationResult{
		Request:        req,
		TranslatedText: text,
		Status:         domain.ResultSuccess,
	}}
}

func (c *Coordinator) callTranslator(ctx context.Context, text string, source string, target string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.BackendTimeout)
	defer cancel()
	return c.deps.Translator.Translate(callCtx, text, source, target)
}

func failedOutcome(req domain.TranslationRequest, reason string, unavailable bool) translationOutcome {
	return translationOutcome{
		result: domain.TranslationResult{
			Request: req,
			Status:  domain.ResultFailed,
			Reason:  reason,
		},
		unavailable: unavailable,
	}
}

// reconcile applies a worker result to its slot unless a newer request has
// been issued for that slot since.
func (c *Coordinator) reconcile(st *coordinatorState, outcome translationOutcome) {
	result := outcome.result
	slot := st.slot(result.Request.Slot)
	if slot.pending == 0 || result.Request.ID != slot.pending {
		c.logger.Debug("discarding stale translation result",
			zap.Uint64("request_id", result.Request.ID),
			zap.Uint64("pending_id", slot.pending),
			zap.String("slot", string(slot.id)))
		return
	}
	slot.pending = 0

	if outcome.unavailable && st.translationDisabled == "" {
		st.translationDisabled = result.Reason
		c.deps.Events.Error(domain.ErrorCodeTranslation, result.Reason)
	}

	if result.Status != domain.ResultSuccess {
		slot.view = domain.OutputView{Kind: domain.OutputFailed, Text: result.Reason, Request: result.Request}
		c.emitSlot(st, slot.id)
		c.setStatus(st, domain.StatusTranslationFailed, result.Reason)
		return
	}

	slot.view = domain.OutputView{Kind: domain.OutputTranslated, Text: result.TranslatedText, Request: result.Request}
	c.emitSlot(st, slot.id)
	c.appendHistory(st, result)

	if slot.id == domain.SlotListening {
		c.setStatus(st, domain.StatusAutoTranslated, "")
	} else {
		c.setStatus(st, domain.StatusTranslated, domain.LanguageName(result.Request.TargetLang))
	}

	if st.settings.AutoPlayAudio {
		c.autoPlay(st, slot.id)
	}
	if slot.id == domain.SlotListening && st.settings.AutoInsert {
		c.scheduleInsert(st, slot)
	}
}

func (c *Coordinator) appendHistory(st *coordinatorState, result domain.TranslationResult) {
	if c.deps.History == nil {
		return
	}
	record := domain.HistoryRecord{
		SourceText:     result.Request.SourceText,
		TranslatedText: result.TranslatedText,
		SourceLang:     result.Request.SourceLang,
		TargetLang:     result.Request.TargetLang,
		Timestamp:      time.Now().UTC(),
	}

	ctx := st.ctx
	go func() {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.BackendTimeout)
		defer cancel()
		if err := c.deps.History.Append(callCtx, record); err != nil {
			c.logger.Warn("failed to append translation history", zap.Error(err))
		}
	}()
}

func (c *Coordinator) scheduleInsert(st *coordinatorState, slot *outputSlot) {
	slot.cancelInsert()
	st.insertSeq++
	seq := st.insertSeq
	id := slot.id

	slot.insertSeq = seq
	slot.insertTimer = time.AfterFunc(c.cfg.AutoInsertDelay, func() {
		c.post(func(st *coordinatorState) {
			slot := st.slot(id)
			if slot.insertSeq != seq || st.mode != domain.ModeListening {
				return
			}
			slot.insertSeq = 0
			slot.insertTimer = nil
			c.deliver(st, id, true)
		})
	})
}
