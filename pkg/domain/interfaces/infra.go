package interfaces

import (
	"context"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

// GitHub is the source-control provider surface the pipeline needs. All
// methods return domain entities; go-github wire shapes never cross this
// boundary.
type GitHub interface {
	// GetOwnerType resolves whether an account is an individual or an
	// organization. Callers fall back to individual on error.
	GetOwnerType(ctx context.Context, owner string) (types.OwnerType, error)

	// ListOwnerRepos pages through the account's repositories, most recently
	// updated first.
	ListOwnerRepos(ctx context.Context, owner string, ownerType types.OwnerType) ([]*model.Repository, error)

	ListReleases(ctx context.Context, owner, name string, limit int) ([]*model.Release, error)
	GetRelease(ctx context.Context, owner, name string, id types.ReleaseID) (*model.Release, error)

	// CompareTags returns the commits between two tags, oldest first.
	CompareTags(ctx context.Context, owner, name, base, head string) ([]model.Commit, error)

	// Hook management. A 403/404 from the provider is reported as
	// types.ErrRepoNotAccessible.
	ListHooks(ctx context.Context, owner, name string) ([]*model.Hook, error)
	CreateHook(ctx context.Context, owner, name string, cfg model.HookConfig) (*model.Hook, error)
	UpdateHook(ctx context.Context, owner, name string, hookID int64, cfg model.HookConfig) (*model.Hook, error)
}

// Telegram delivers a formatted message to a destination chat. The
// implementation handles message splitting and retry.
type Telegram interface {
	SendMessage(ctx context.Context, chatID types.ChatID, text string) error
}
