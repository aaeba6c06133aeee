package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/infra"
)

// Config is the immutable runtime configuration of the pipeline.
type Config struct {
	Profiles []*model.Profile
	Filter   model.FilterConfig

	// DefaultChat receives notifications when neither the call site nor the
	// repository carries an override.
	DefaultChat types.ChatID

	// CallbackURL is the public URL of this service's webhook endpoint.
	// Hook management is disabled when CanManageHooks is false or the URL
	// is empty; affected repositories fall back to polling.
	CallbackURL    string
	WebhookSecret  types.WebhookSecret
	CanManageHooks bool

	MaxChangelogLen  int
	PollReleaseLimit int

	// Pacing between outbound provider calls. Zero disables the pause.
	ProfileDelay time.Duration
	RepoDelay    time.Duration
	ReleaseDelay time.Duration
}

type UseCase struct {
	clients *infra.Clients
	cfg     Config
}

var _ interfaces.UseCase = (*UseCase)(nil)

func New(clients *infra.Clients, cfg Config) *UseCase {
	if cfg.MaxChangelogLen <= 0 {
		cfg.MaxChangelogLen = 3500
	}
	if cfg.PollReleaseLimit <= 0 {
		cfg.PollReleaseLimit = 5
	}

	return &UseCase{
		clients: clients,
		cfg:     cfg,
	}
}

func (x *UseCase) IsProcessed(ctx context.Context, releaseID types.ReleaseID, fullName types.RepoFullName) (bool, error) {
	return x.clients.Store().IsProcessed(ctx, releaseID, fullName)
}

func (x *UseCase) PruneLedger(ctx context.Context, keep int) (int64, error) {
	return x.clients.Store().PruneProcessed(ctx, keep)
}

func (x *UseCase) Stats(ctx context.Context) (*model.Stats, error) {
	store := x.clients.Store()

	byStatus, err := store.CountRepositoriesByHookStatus(ctx)
	if err != nil {
		return nil, err
	}
	total, err := store.CountProcessed(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := store.ListRecentProcessed(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &model.Stats{
		RepositoriesByStatus: byStatus,
		ProcessedTotal:       total,
		RecentDeliveries:     recent,
	}, nil
}

func (x *UseCase) ListRepositories(ctx context.Context, status types.HookStatus) ([]*model.Repository, error) {
	if status == "" {
		return x.clients.Store().ListRepositories(ctx)
	}
	return x.clients.Store().ListRepositoriesByHookStatus(ctx, status)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
