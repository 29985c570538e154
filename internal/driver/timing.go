package driver

import (
	"fmt"
	"time"
)

// phaseTimer measures elapsed time since the start of a mode run; each
// phase line reports the running total, matching the original's single
// Instant threaded through do_things.
type phaseTimer struct {
	start time.Time
}

func newPhaseTimer() *phaseTimer {
	return &phaseTimer{start: time.Now()}
}

func (t *phaseTimer) elapsed() string {
	return formatDuration(time.Since(t.start))
}

// formatDuration formats a duration concisely (e.g. "1m23s", "45s", "500ms").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, s)
}
