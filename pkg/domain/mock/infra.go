// Package mock provides hand-written test doubles for the infra and usecase
// interfaces. Each mock returns zero values unless the corresponding Func
// field is set.
package mock

import (
	"context"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

type GitHubMock struct {
	GetOwnerTypeFunc   func(ctx context.Context, owner string) (types.OwnerType, error)
	ListOwnerReposFunc func(ctx context.Context, owner string, ownerType types.OwnerType) ([]*model.Repository, error)
	ListReleasesFunc   func(ctx context.Context, owner, name string, limit int) ([]*model.Release, error)
	GetReleaseFunc     func(ctx context.Context, owner, name string, id types.ReleaseID) (*model.Release, error)
	CompareTagsFunc    func(ctx context.Context, owner, name, base, head string) ([]model.Commit, error)
	ListHooksFunc      func(ctx context.Context, owner, name string) ([]*model.Hook, error)
	CreateHookFunc     func(ctx context.Context, owner, name string, cfg model.HookConfig) (*model.Hook, error)
	UpdateHookFunc     func(ctx context.Context, owner, name string, hookID int64, cfg model.HookConfig) (*model.Hook, error)
}

var _ interfaces.GitHub = (*GitHubMock)(nil)

func (x *GitHubMock) GetOwnerType(ctx context.Context, owner string) (types.OwnerType, error) {
	if x.GetOwnerTypeFunc != nil {
		return x.GetOwnerTypeFunc(ctx, owner)
	}
	return types.OwnerIndividual, nil
}

func (x *GitHubMock) ListOwnerRepos(ctx context.Context, owner string, ownerType types.OwnerType) ([]*model.Repository, error) {
	if x.ListOwnerReposFunc != nil {
		return x.ListOwnerReposFunc(ctx, owner, ownerType)
	}
	return nil, nil
}

func (x *GitHubMock) ListReleases(ctx context.Context, owner, name string, limit int) ([]*model.Release, error) {
	if x.ListReleasesFunc != nil {
		return x.ListReleasesFunc(ctx, owner, name, limit)
	}
	return nil, nil
}

func (x *GitHubMock) GetRelease(ctx context.Context, owner, name string, id types.ReleaseID) (*model.Release, error) {
	if x.GetReleaseFunc != nil {
		return x.GetReleaseFunc(ctx, owner, name, id)
	}
	return nil, nil
}

func (x *GitHubMock) CompareTags(ctx context.Context, owner, name, base, head string) ([]model.Commit, error) {
	if x.CompareTagsFunc != nil {
		return x.CompareTagsFunc(ctx, owner, name, base, head)
	}
	return nil, nil
}

func (x *GitHubMock) ListHooks(ctx context.Context, owner, name string) ([]*model.Hook, error) {
	if x.ListHooksFunc != nil {
		return x.ListHooksFunc(ctx, owner, name)
	}
	return nil, nil
}

func (x *GitHubMock) CreateHook(ctx context.Context, owner, name string, cfg model.HookConfig) (*model.Hook, error) {
	if x.CreateHookFunc != nil {
		return x.CreateHookFunc(ctx, owner, name, cfg)
	}
	return &model.Hook{ID: 1, URL: cfg.URL, Events: []string{"release"}, Active: true}, nil
}

func (x *GitHubMock) UpdateHook(ctx context.Context, owner, name string, hookID int64, cfg model.HookConfig) (*model.Hook, error) {
	if x.UpdateHookFunc != nil {
		return x.UpdateHookFunc(ctx, owner, name, hookID, cfg)
	}
	return &model.Hook{ID: hookID, URL: cfg.URL, Events: []string{"release"}, Active: true}, nil
}

type TelegramMock struct {
	SendMessageFunc func(ctx context.Context, chatID types.ChatID, text string) error

	Sent []SentMessage
}

type SentMessage struct {
	ChatID types.ChatID
	Text   string
}

var _ interfaces.Telegram = (*TelegramMock)(nil)

func (x *TelegramMock) SendMessage(ctx context.Context, chatID types.ChatID, text string) error {
	if x.SendMessageFunc != nil {
		if err := x.SendMessageFunc(ctx, chatID, text); err != nil {
			return err
		}
	}
	x.Sent = append(x.Sent, SentMessage{ChatID: chatID, Text: text})
	return nil
}
