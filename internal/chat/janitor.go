package chat

import (
	"context"
	"time"

	"connect-chat/pkg/logger"
)

// Janitor periodically sweeps the registry for offline sessions that
// have idled past the eviction threshold. It is the only source of
// mutations not triggered by a client event.
type Janitor struct {
	coord     *Coordinator
	interval  time.Duration
	threshold time.Duration
}

func NewJanitor(coord *Coordinator, interval, threshold time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if threshold <= 0 {
		threshold = 24 * time.Hour
	}
	return &Janitor{coord: coord, interval: interval, threshold: threshold}
}

// Run blocks until ctx is canceled, sweeping on a fixed interval.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.coord.SweepIdle(j.threshold); n > 0 {
				logger.Info("janitor removed %d idle session(s)", n)
			}
		}
	}
}
