package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/usecase"
)

func TestDiscoverAll(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps profile metadata and applies the filter", func(t *testing.T) {
		profile := &model.Profile{Account: "octocat", ChatID: "-100111", Exclude: []string{"*-docs"}}
		env := newTestEnv(t, usecase.Config{Profiles: []*model.Profile{profile}})

		env.github.GetOwnerTypeFunc = func(context.Context, string) (types.OwnerType, error) {
			return types.OwnerOrganization, nil
		}
		env.github.ListOwnerReposFunc = func(_ context.Context, owner string, ownerType types.OwnerType) ([]*model.Repository, error) {
			gt.V(t, owner).Equal("octocat")
			gt.V(t, ownerType).Equal(types.OwnerOrganization)
			return []*model.Repository{
				{FullName: "octocat/app", ID: 1},
				{FullName: "octocat/app-docs", ID: 2},
				{FullName: "octocat/archived", ID: 3, Archived: true},
			}, nil
		}

		repos := gt.R1(env.uc.DiscoverAll(ctx)).NoError(t)
		gt.V(t, len(repos)).Equal(1)
		gt.V(t, repos[0].FullName).Equal(types.RepoFullName("octocat/app"))
		gt.V(t, repos[0].Profile).Equal("octocat")
		gt.V(t, repos[0].ChatID).Equal(types.ChatID("-100111"))
		gt.B(t, repos[0].DiscoveredAt.IsZero()).False()
	})

	t.Run("owner type lookup failure falls back to individual listing", func(t *testing.T) {
		profile := &model.Profile{Account: "torvalds"}
		env := newTestEnv(t, usecase.Config{Profiles: []*model.Profile{profile}})

		env.github.GetOwnerTypeFunc = func(context.Context, string) (types.OwnerType, error) {
			return "", goerr.New("lookup failed")
		}
		var usedType types.OwnerType
		env.github.ListOwnerReposFunc = func(_ context.Context, _ string, ownerType types.OwnerType) ([]*model.Repository, error) {
			usedType = ownerType
			return []*model.Repository{{FullName: "torvalds/linux", ID: 1}}, nil
		}

		repos := gt.R1(env.uc.DiscoverAll(ctx)).NoError(t)
		gt.V(t, len(repos)).Equal(1)
		gt.V(t, usedType).Equal(types.OwnerIndividual)
	})

	t.Run("a failing profile does not poison the batch", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{Profiles: []*model.Profile{
			{Account: "broken"},
			{Account: "working"},
		}})

		env.github.ListOwnerReposFunc = func(_ context.Context, owner string, _ types.OwnerType) ([]*model.Repository, error) {
			if owner == "broken" {
				return nil, goerr.New("account suspended")
			}
			return []*model.Repository{{FullName: "working/tool", ID: 1}}, nil
		}

		repos := gt.R1(env.uc.DiscoverAll(ctx)).NoError(t)
		gt.V(t, len(repos)).Equal(1)
		gt.V(t, repos[0].FullName).Equal(types.RepoFullName("working/tool"))
	})
}

func TestRefreshRepositories(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, usecase.Config{Profiles: []*model.Profile{{Account: "octocat"}}})
	env.github.ListOwnerReposFunc = func(context.Context, string, types.OwnerType) ([]*model.Repository, error) {
		return []*model.Repository{
			{FullName: "octocat/app", ID: 1},
			{FullName: "octocat/tool", ID: 2},
		}, nil
	}

	count := gt.R1(env.uc.RefreshRepositories(ctx)).NoError(t)
	gt.V(t, count).Equal(2)

	stored := gt.R1(env.store.ListRepositories(ctx)).NoError(t)
	gt.V(t, len(stored)).Equal(2)
	gt.V(t, stored[0].HookStatus).Equal(types.HookStatusPending)
}
