package application

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically purges cancelled orders past the retention window.
// An explicit ticker loop replaces what a framework scheduler would do.
type Sweeper struct {
	log      *slog.Logger
	repo     OrderRepository
	interval time.Duration
	maxAge   time.Duration
}

func NewSweeper(log *slog.Logger, repo OrderRepository, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{log: log, repo: repo, interval: interval, maxAge: maxAge}
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("retention sweeper stopping")
			return nil
		case <-t.C:
			cutoff := time.Now().UTC().Add(-s.maxAge)
			purged, err := s.repo.PurgeCancelledBefore(ctx, cutoff)
			if err != nil {
				s.log.Error("retention sweep failed", "err", err)
				continue
			}
			if purged > 0 {
				s.log.Info("retention sweep purged cancelled orders", "count", purged, "cutoff", cutoff)
			}
		}
	}
}
