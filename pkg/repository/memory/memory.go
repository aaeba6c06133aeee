package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

type ledgerKey struct {
	releaseID types.ReleaseID
	fullName  types.RepoFullName
}

// Store is an in-memory implementation of interfaces.Store, used in tests.
type Store struct {
	mu     sync.Mutex
	repos  map[types.RepoFullName]*model.Repository
	ledger map[ledgerKey]*model.ProcessedRelease
}

var _ interfaces.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		repos:  make(map[types.RepoFullName]*model.Repository),
		ledger: make(map[ledgerKey]*model.ProcessedRelease),
	}
}

func (x *Store) UpsertRepository(_ context.Context, repo *model.Repository) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	copied := *repo
	if existing, ok := x.repos[repo.FullName]; ok {
		// Hook fields survive rediscovery; only the synchronizer writes them.
		copied.HookID = existing.HookID
		copied.HookStatus = existing.HookStatus
		copied.HookSyncedAt = existing.HookSyncedAt
		copied.CreatedAt = existing.CreatedAt
	} else if copied.HookStatus == "" {
		copied.HookStatus = types.HookStatusPending
	}
	x.repos[repo.FullName] = &copied
	return nil
}

func (x *Store) GetRepository(_ context.Context, fullName types.RepoFullName) (*model.Repository, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	repo, ok := x.repos[fullName]
	if !ok {
		return nil, nil
	}
	copied := *repo
	return &copied, nil
}

func (x *Store) ListRepositories(_ context.Context) ([]*model.Repository, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.listLocked(func(*model.Repository) bool { return true }), nil
}

func (x *Store) ListRepositoriesByHookStatus(_ context.Context, status types.HookStatus) ([]*model.Repository, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.listLocked(func(r *model.Repository) bool { return r.HookStatus == status }), nil
}

func (x *Store) listLocked(match func(*model.Repository) bool) []*model.Repository {
	var out []*model.Repository
	for _, repo := range x.repos {
		if match(repo) {
			copied := *repo
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

func (x *Store) UpdateHookState(_ context.Context, fullName types.RepoFullName, hookID *int64, status types.HookStatus, syncedAt time.Time) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	repo, ok := x.repos[fullName]
	if !ok {
		return goerr.New("unknown repository", goerr.V("repo", fullName))
	}
	repo.HookID = hookID
	repo.HookStatus = status
	repo.HookSyncedAt = &syncedAt
	return nil
}

func (x *Store) CountRepositoriesByHookStatus(_ context.Context) (map[types.HookStatus]int64, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	counts := make(map[types.HookStatus]int64)
	for _, repo := range x.repos {
		counts[repo.HookStatus]++
	}
	return counts, nil
}

func (x *Store) IsProcessed(_ context.Context, releaseID types.ReleaseID, fullName types.RepoFullName) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	_, ok := x.ledger[ledgerKey{releaseID: releaseID, fullName: fullName}]
	return ok, nil
}

func (x *Store) MarkProcessed(_ context.Context, rec *model.ProcessedRelease) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	key := ledgerKey{releaseID: rec.ReleaseID, fullName: rec.RepoFullName}
	if _, ok := x.ledger[key]; ok {
		return false, nil
	}
	copied := *rec
	x.ledger[key] = &copied
	return true, nil
}

func (x *Store) ListRecentProcessed(_ context.Context, limit int) ([]*model.ProcessedRelease, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	out := x.sortedLedgerLocked()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (x *Store) CountProcessed(_ context.Context) (int64, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return int64(len(x.ledger)), nil
}

func (x *Store) PruneProcessed(_ context.Context, keep int) (int64, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	all := x.sortedLedgerLocked()
	if len(all) <= keep {
		return 0, nil
	}
	var pruned int64
	for _, rec := range all[keep:] {
		delete(x.ledger, ledgerKey{releaseID: rec.ReleaseID, fullName: rec.RepoFullName})
		pruned++
	}
	return pruned, nil
}

func (x *Store) sortedLedgerLocked() []*model.ProcessedRelease {
	out := make([]*model.ProcessedRelease, 0, len(x.ledger))
	for _, rec := range x.ledger {
		copied := *rec
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedAt.After(out[j].ProcessedAt) })
	return out
}

func (x *Store) Close() error {
	return nil
}
