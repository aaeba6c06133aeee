package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

// Store is the persistent state of the service: the repository directory and
// the dedup ledger. Implementations must tolerate concurrent access from the
// webhook handler, the poll scheduler and admin-triggered jobs.
type Store interface {
	// Repository directory
	UpsertRepository(ctx context.Context, repo *model.Repository) error
	GetRepository(ctx context.Context, fullName types.RepoFullName) (*model.Repository, error)
	ListRepositories(ctx context.Context) ([]*model.Repository, error)
	ListRepositoriesByHookStatus(ctx context.Context, status types.HookStatus) ([]*model.Repository, error)
	UpdateHookState(ctx context.Context, fullName types.RepoFullName, hookID *int64, status types.HookStatus, syncedAt time.Time) error
	CountRepositoriesByHookStatus(ctx context.Context) (map[types.HookStatus]int64, error)

	// Dedup ledger
	IsProcessed(ctx context.Context, releaseID types.ReleaseID, fullName types.RepoFullName) (bool, error)
	// MarkProcessed inserts a ledger entry if absent. It returns false when
	// the (release, repository) pair was already recorded.
	MarkProcessed(ctx context.Context, rec *model.ProcessedRelease) (bool, error)
	ListRecentProcessed(ctx context.Context, limit int) ([]*model.ProcessedRelease, error)
	CountProcessed(ctx context.Context) (int64, error)
	PruneProcessed(ctx context.Context, keep int) (int64, error)

	Close() error
}
