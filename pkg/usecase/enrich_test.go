package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/usecase"
)

func TestEnrichChangelog(t *testing.T) {
	ctx := context.Background()
	rel := &model.Release{ID: 101, TagName: "v1.2.0"}

	t.Run("recovers body from release detail first", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{})
		env.github.GetReleaseFunc = func(_ context.Context, owner, name string, id types.ReleaseID) (*model.Release, error) {
			gt.V(t, owner).Equal("octocat")
			gt.V(t, name).Equal("hello")
			gt.V(t, id).Equal(types.ReleaseID(101))
			return &model.Release{ID: 101, TagName: "v1.2.0", Body: "full body from detail"}, nil
		}

		got := env.uc.EnrichChangelog(ctx, "octocat", "hello", rel)
		gt.V(t, got).Equal("full body from detail")
	})

	t.Run("synthesizes bullets from the commit range", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{})
		env.github.ListReleasesFunc = func(context.Context, string, string, int) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 101, TagName: "v1.2.0"},
				{ID: 100, TagName: "v1.1.0"},
			}, nil
		}
		env.github.CompareTagsFunc = func(_ context.Context, _, _, base, head string) ([]model.Commit, error) {
			gt.V(t, base).Equal("v1.1.0")
			gt.V(t, head).Equal("v1.2.0")
			return []model.Commit{
				{SHA: "aaaaaaa1111111", Message: "feat: add retries\n\nlong explanation"},
				{SHA: "bbbbbbb2222222", Message: "fix: close leaked sockets"},
				{SHA: "short", Message: "chore: bump deps"},
			}, nil
		}

		got := env.uc.EnrichChangelog(ctx, "octocat", "hello", rel)
		gt.V(t, got).Equal(strings.Join([]string{
			"• feat: add retries (aaaaaaa)",
			"• fix: close leaked sockets (bbbbbbb)",
			"• chore: bump deps (short)",
		}, "\n"))
	})

	t.Run("caps the commit list", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{})
		env.github.ListReleasesFunc = func(context.Context, string, string, int) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 101, TagName: "v1.2.0"},
				{ID: 100, TagName: "v1.1.0"},
			}, nil
		}
		env.github.CompareTagsFunc = func(context.Context, string, string, string, string) ([]model.Commit, error) {
			commits := make([]model.Commit, 30)
			for i := range commits {
				commits[i] = model.Commit{SHA: fmt.Sprintf("%040d", i), Message: fmt.Sprintf("commit %d", i)}
			}
			return commits, nil
		}

		got := env.uc.EnrichChangelog(ctx, "octocat", "hello", rel)
		gt.V(t, len(strings.Split(got, "\n"))).Equal(20)
	})

	t.Run("empty commit range gets a placeholder", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{})
		env.github.ListReleasesFunc = func(context.Context, string, string, int) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 101, TagName: "v1.2.0"},
				{ID: 100, TagName: "v1.1.0"},
			}, nil
		}
		env.github.CompareTagsFunc = func(context.Context, string, string, string, string) ([]model.Commit, error) {
			return nil, nil
		}

		got := env.uc.EnrichChangelog(ctx, "octocat", "hello", rel)
		gt.V(t, got).Equal(usecase.NoCommitsPlaceholder)
	})

	t.Run("first release has nothing to compare against", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{})
		env.github.ListReleasesFunc = func(context.Context, string, string, int) ([]*model.Release, error) {
			return []*model.Release{{ID: 101, TagName: "v1.2.0"}}, nil
		}

		gt.V(t, env.uc.EnrichChangelog(ctx, "octocat", "hello", rel)).Equal("")
	})

	t.Run("provider failure is absorbed", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{})
		env.github.GetReleaseFunc = func(context.Context, string, string, types.ReleaseID) (*model.Release, error) {
			return nil, goerr.New("not found")
		}
		env.github.ListReleasesFunc = func(context.Context, string, string, int) ([]*model.Release, error) {
			return nil, goerr.New("rate limited")
		}

		gt.V(t, env.uc.EnrichChangelog(ctx, "octocat", "hello", rel)).Equal("")
	})
}

func TestPreviousRelease(t *testing.T) {
	releases := []*model.Release{
		{TagName: "v3"},
		{TagName: "v2"},
		{TagName: "v1"},
	}

	t.Run("finds the next-older release", func(t *testing.T) {
		gt.V(t, usecase.PreviousRelease(releases, "v3").TagName).Equal("v2")
		gt.V(t, usecase.PreviousRelease(releases, "v2").TagName).Equal("v1")
	})

	t.Run("oldest release has no predecessor", func(t *testing.T) {
		gt.V(t, usecase.PreviousRelease(releases, "v1")).Nil()
	})

	t.Run("absent tag has no predecessor", func(t *testing.T) {
		gt.V(t, usecase.PreviousRelease(releases, "v99")).Nil()
	})
}

func TestCommitSubject(t *testing.T) {
	gt.V(t, usecase.CommitSubject("one line")).Equal("one line")
	gt.V(t, usecase.CommitSubject("subject\n\nbody text")).Equal("subject")
	gt.V(t, usecase.CommitSubject("  padded subject  \nrest")).Equal("padded subject")
}
