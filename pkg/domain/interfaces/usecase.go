package interfaces

import (
	"context"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

type UseCase interface {
	// DiscoverAll queries every configured profile and returns the filtered
	// repository set. It does not persist anything.
	DiscoverAll(ctx context.Context) ([]*model.Repository, error)

	// RefreshRepositories runs discovery and upserts the result into the
	// repository directory. It returns the number of repositories stored.
	RefreshRepositories(ctx context.Context) (int, error)

	// SyncAllHooks reconciles push registrations for every known repository.
	SyncAllHooks(ctx context.Context) (*model.HookSyncSummary, error)

	// PollOnce scans poll-mode repositories for undelivered releases.
	PollOnce(ctx context.Context) (*model.PollSummary, error)

	// Notify runs the delivery pipeline for one release event. overrideChat
	// takes precedence over the stored per-repository destination.
	Notify(ctx context.Context, ev *model.ReleaseEvent, overrideChat types.ChatID) error

	IsProcessed(ctx context.Context, releaseID types.ReleaseID, fullName types.RepoFullName) (bool, error)

	// PruneLedger drops all but the most recent keep ledger entries.
	PruneLedger(ctx context.Context, keep int) (int64, error)

	Stats(ctx context.Context) (*model.Stats, error)
	ListRepositories(ctx context.Context, status types.HookStatus) ([]*model.Repository, error)
}
