package ebitenstage

import (
	"fmt"
	"os"
	"time"
)

// drawStats holds per-frame timing and draw counts. Only printed when the
// stage is in debug mode.
type drawStats struct {
	total   time.Duration
	direct  int
	layered int
	masks   int
	filters int
	skipped int
}

// debugLog prints draw stats to stderr.
func (s *Stage) debugLog(stats drawStats) {
	_, _ = fmt.Fprintf(os.Stderr,
		"[tableau] draw: %v | direct: %d | layered: %d | masks: %d | filters: %d | skipped: %d\n",
		stats.total, stats.direct, stats.layered, stats.masks, stats.filters, stats.skipped)
	if s.pool.live != 0 {
		_, _ = fmt.Fprintf(os.Stderr, "[tableau] warning: %d offscreen layers not released\n", s.pool.live)
	}
}
