package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orderflow/order-service/internal/order/domain"
	"github.com/orderflow/order-service/pkg/logging"
)

type purgeCountingRepo struct {
	fakeRepo
	purges atomic.Int32
}

func (r *purgeCountingRepo) PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.purges.Add(1)
	return 1, nil
}

func TestSweeperPurgesOnTick(t *testing.T) {
	repo := &purgeCountingRepo{fakeRepo: fakeRepo{orders: map[string]domain.Order{}}}
	sweeper := NewSweeper(logging.New(), repo, 5*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sweeper.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for repo.purges.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
