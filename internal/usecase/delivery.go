package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"linguaclip/internal/domain"
	"linguaclip/internal/ports"
)

var errClipboardWrite = errors.New("clipboard write failed")

type outputDelivery struct {
	clipboard  ports.Clipboard
	paster     ports.Paster
	pasteDelay time.Duration
}

func newOutputDelivery(clipboard ports.Clipboard, paster ports.Paster, pasteDelay time.Duration) outputDelivery {
	return outputDelivery{clipboard: clipboard, paster: paster, pasteDelay: pasteDelay}
}

// Deliver writes text to the clipboard and, when paste is set, sends the
// paste keystroke to the focused window.
func (d outputDelivery) Deliver(ctx context.Context, text string, paste bool) error {
	if d.clipboard == nil {
		return fmt.Errorf("%w: %w", errClipboardWrite, ports.ErrBackendUnavailable)
	}
	if err := d.clipboard.SetText(ctx, text); err != nil {
		return fmt.Errorf("%w: %w", errClipboardWrite, err)
	}
	if !paste {
		return nil
	}
	if d.paster == nil {
		return fmt.Errorf("paste keystroke: %w", ports.ErrBackendUnavailable)
	}

	if d.pasteDelay > 0 {
		timer := time.NewTimer(d.pasteDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	if err := d.paster.Paste(ctx); err != nil {
		return fmt.Errorf("paste keystroke failed: %w", err)
	}
	return nil
}

func (c *Coordinator) deliver(st *coordinatorState, id domain.SlotID, paste bool) {
	view := st.slot(id).view
	if !view.Deliverable() {
		return
	}
	text := view.Text
	st.watch.Remember(text)

	ctx := st.ctx
	go func() {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.BackendTimeout)
		defer cancel()
		err := c.delivery.Deliver(callCtx, text, paste)
		c.post(func(st *coordinatorState) {
			c.delivered(st, text, paste, err)
		})
	}()
}

func (c *Coordinator) delivered(st *coordinatorState, text string, paste bool, err error) {
	if err != nil {
		c.logger.Warn("output delivery degraded to manual copy", zap.Bool("paste", paste), zap.Error(err))
		if errors.Is(err, errClipboardWrite) {
			c.deps.Events.Error(domain.ErrorCodeClipboard, err.Error())
		}
		c.deps.Events.ManualCopy(text)
		c.setStatus(st, domain.StatusManualCopyRequired, "")
		return
	}
	if paste {
		c.setStatus(st, domain.StatusInserted, "")
		return
	}
	c.setStatus(st, domain.StatusCopied, "")
}
