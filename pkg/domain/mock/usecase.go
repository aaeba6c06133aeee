package mock

import (
	"context"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

type UseCaseMock struct {
	DiscoverAllFunc          func(ctx context.Context) ([]*model.Repository, error)
	RefreshRepositoriesFunc  func(ctx context.Context) (int, error)
	SyncAllHooksFunc         func(ctx context.Context) (*model.HookSyncSummary, error)
	PollOnceFunc             func(ctx context.Context) (*model.PollSummary, error)
	NotifyFunc               func(ctx context.Context, ev *model.ReleaseEvent, overrideChat types.ChatID) error
	IsProcessedFunc          func(ctx context.Context, releaseID types.ReleaseID, fullName types.RepoFullName) (bool, error)
	PruneLedgerFunc          func(ctx context.Context, keep int) (int64, error)
	StatsFunc                func(ctx context.Context) (*model.Stats, error)
	ListRepositoriesFunc     func(ctx context.Context, status types.HookStatus) ([]*model.Repository, error)

	NotifyCalls []*model.ReleaseEvent
}

var _ interfaces.UseCase = (*UseCaseMock)(nil)

func (x *UseCaseMock) DiscoverAll(ctx context.Context) ([]*model.Repository, error) {
	if x.DiscoverAllFunc != nil {
		return x.DiscoverAllFunc(ctx)
	}
	return nil, nil
}

func (x *UseCaseMock) RefreshRepositories(ctx context.Context) (int, error) {
	if x.RefreshRepositoriesFunc != nil {
		return x.RefreshRepositoriesFunc(ctx)
	}
	return 0, nil
}

func (x *UseCaseMock) SyncAllHooks(ctx context.Context) (*model.HookSyncSummary, error) {
	if x.SyncAllHooksFunc != nil {
		return x.SyncAllHooksFunc(ctx)
	}
	return &model.HookSyncSummary{Counts: map[types.HookStatus]int{}}, nil
}

func (x *UseCaseMock) PollOnce(ctx context.Context) (*model.PollSummary, error) {
	if x.PollOnceFunc != nil {
		return x.PollOnceFunc(ctx)
	}
	return &model.PollSummary{}, nil
}

func (x *UseCaseMock) Notify(ctx context.Context, ev *model.ReleaseEvent, overrideChat types.ChatID) error {
	x.NotifyCalls = append(x.NotifyCalls, ev)
	if x.NotifyFunc != nil {
		return x.NotifyFunc(ctx, ev, overrideChat)
	}
	return nil
}

func (x *UseCaseMock) IsProcessed(ctx context.Context, releaseID types.ReleaseID, fullName types.RepoFullName) (bool, error) {
	if x.IsProcessedFunc != nil {
		return x.IsProcessedFunc(ctx, releaseID, fullName)
	}
	return false, nil
}

func (x *UseCaseMock) PruneLedger(ctx context.Context, keep int) (int64, error) {
	if x.PruneLedgerFunc != nil {
		return x.PruneLedgerFunc(ctx, keep)
	}
	return 0, nil
}

func (x *UseCaseMock) Stats(ctx context.Context) (*model.Stats, error) {
	if x.StatsFunc != nil {
		return x.StatsFunc(ctx)
	}
	return &model.Stats{RepositoriesByStatus: map[types.HookStatus]int64{}}, nil
}

func (x *UseCaseMock) ListRepositories(ctx context.Context, status types.HookStatus) ([]*model.Repository, error) {
	if x.ListRepositoriesFunc != nil {
		return x.ListRepositoriesFunc(ctx, status)
	}
	return nil, nil
}
