package daemon_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/relnote/pkg/controller/daemon"
	"github.com/secmon-lab/relnote/pkg/domain/mock"
	"github.com/secmon-lab/relnote/pkg/domain/model"
)

func TestDaemonRun(t *testing.T) {
	t.Run("runs discovery and hook sync, then polls", func(t *testing.T) {
		var refreshed, synced, polled, pruned atomic.Int32
		done := make(chan struct{})

		uc := &mock.UseCaseMock{
			RefreshRepositoriesFunc: func(context.Context) (int, error) {
				refreshed.Add(1)
				return 2, nil
			},
			SyncAllHooksFunc: func(context.Context) (*model.HookSyncSummary, error) {
				synced.Add(1)
				return &model.HookSyncSummary{}, nil
			},
			PollOnceFunc: func(context.Context) (*model.PollSummary, error) {
				polled.Add(1)
				return &model.PollSummary{}, nil
			},
			PruneLedgerFunc: func(_ context.Context, keep int) (int64, error) {
				gt.V(t, keep).Equal(50)
				if pruned.Add(1) == 1 {
					close(done)
				}
				return 0, nil
			},
		}

		d := daemon.New(uc,
			daemon.WithPoll(true, time.Hour),
			daemon.WithStartupDelay(time.Millisecond),
			daemon.WithLedgerKeep(50),
		)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- d.Run(ctx) }()

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("first poll cycle never completed")
		}
		cancel()
		gt.V(t, <-errCh).Equal(context.Canceled)

		gt.V(t, refreshed.Load()).Equal(int32(1))
		gt.V(t, synced.Load()).Equal(int32(1))
		gt.V(t, polled.Load()).Equal(int32(1))
	})

	t.Run("poll disabled waits for cancellation only", func(t *testing.T) {
		var polled atomic.Int32
		uc := &mock.UseCaseMock{
			PollOnceFunc: func(context.Context) (*model.PollSummary, error) {
				polled.Add(1)
				return &model.PollSummary{}, nil
			},
		}

		d := daemon.New(uc, daemon.WithPoll(false, 0), daemon.WithStartupDelay(0))

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- d.Run(ctx) }()

		time.Sleep(50 * time.Millisecond)
		cancel()
		gt.V(t, <-errCh).Equal(context.Canceled)
		gt.V(t, polled.Load()).Equal(int32(0))
	})
}
