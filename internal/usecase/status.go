package usecase

import (
	"time"

	"linguaclip/internal/domain"
)

func modeStatus(mode domain.Mode) domain.StatusReason {
	if mode == domain.ModeListening {
		return domain.StatusListening
	}
	return domain.StatusReadyManual
}

// setStatus emits a status update and schedules the reset back to the
// mode's idle status unless something newer is shown by then.
func (c *Coordinator) setStatus(st *coordinatorState, reason domain.StatusReason, detail string) {
	st.statusSeq++
	seq := st.statusSeq
	c.deps.Events.StatusChanged(domain.Status{Reason: reason, Detail: detail})

	if c.cfg.StatusResetDelay <= 0 || reason == modeStatus(st.mode) {
		return
	}
	time.AfterFunc(c.cfg.StatusResetDelay, func() {
		c.post(func(st *coordinatorState) {
			if st.statusSeq != seq {
				return
			}
			st.statusSeq++
			c.deps.Events.StatusChanged(domain.Status{Reason: modeStatus(st.mode)})
		})
	})
}
