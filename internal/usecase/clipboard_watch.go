package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"linguaclip/internal/domain"
)

type clipboardWatch struct {
	lastSeen  string
	minLength int
	reading   bool
}

func newClipboardWatch(minLength int) clipboardWatch {
	return clipboardWatch{minLength: minLength}
}

// Accept records content as last seen when it qualifies as a new sample.
func (w *clipboardWatch) Accept(content string) bool {
	if content == w.lastSeen {
		return false
	}
	if strings.TrimSpace(content) == "" {
		return false
	}
	if utf8.RuneCountInString(content) <= w.minLength {
		return false
	}
	w.lastSeen = content
	return true
}

// Remember marks text the widget wrote itself so it is not re-translated.
func (w *clipboardWatch) Remember(content string) {
	w.lastSeen = content
}

func (c *Coordinator) pollClipboard(st *coordinatorState) {
	if !st.watchActive() || st.watch.reading || c.deps.Clipboard == nil {
		return
	}
	st.watch.reading = true

	ctx := st.ctx
	go func() {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.BackendTimeout)
		defer cancel()
		text, err := c.deps.Clipboard.GetText(callCtx)
		c.post(func(st *coordinatorState) {
			c.clipboardSampled(st, text, err)
		})
	}()
}

func (c *Coordinator) clipboardSampled(st *coordinatorState, text string, err error) {
	st.watch.reading = false
	if err != nil {
		c.logger.Warn("clipboard read failed", zap.Error(err))
		return
	}
	if !st.watchActive() || !st.watch.Accept(text) {
		return
	}

	ctx := st.ctx
	go func() {
		lang := c.detect(ctx, text)
		c.post(func(st *coordinatorState) {
			c.languageDetected(st, text, lang)
		})
	}()
}

func (c *Coordinator) detect(ctx context.Context, text string) string {
	if c.deps.Detector == nil {
		return c.cfg.NativeLanguage
	}
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.BackendTimeout)
	defer cancel()

	lang, err := c.deps.Detector.Detect(callCtx, text)
	lang = domain.NormalizeLanguage(lang)
	if err != nil || lang == "" {
		c.logger.Debug("language detection failed, assuming native language", zap.Error(err))
		return c.cfg.NativeLanguage
	}
	return lang
}

func (c *Coordinator) languageDetected(st *coordinatorState, text string, lang string) {
	if lang == c.cfg.NativeLanguage {
		c.logger.Debug("clipboard text already in native language", zap.String("lang", lang))
		return
	}

	slot := st.slot(domain.SlotListening)
	slot.detectedText = text
	slot.detectedLang = lang
	c.setStatus(st, domain.StatusDetected, domain.LanguageName(lang))
	c.dispatchTranslation(st, domain.SlotListening, text, lang, c.cfg.NativeLanguage)
}
