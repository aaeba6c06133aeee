package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/relnote/pkg/domain/mock"
	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/infra"
	"github.com/secmon-lab/relnote/pkg/repository/memory"
	"github.com/secmon-lab/relnote/pkg/usecase"
)

type testEnv struct {
	github   *mock.GitHubMock
	telegram *mock.TelegramMock
	store    *memory.Store
	uc       *usecase.UseCase
}

func newTestEnv(t *testing.T, cfg usecase.Config) *testEnv {
	t.Helper()

	env := &testEnv{
		github:   &mock.GitHubMock{},
		telegram: &mock.TelegramMock{},
		store:    memory.New(),
	}
	env.uc = usecase.New(infra.New(
		infra.WithGitHub(env.github),
		infra.WithTelegram(env.telegram),
		infra.WithStore(env.store),
	), cfg)
	return env
}

func testEvent(source types.DeliverySource) *model.ReleaseEvent {
	return &model.ReleaseEvent{
		RepoFullName: "octocat/hello",
		Release: model.Release{
			ID:          101,
			TagName:     "v1.2.0",
			Name:        "v1.2.0: bugfix round",
			Body:        "Fixed the flux capacitor.",
			Author:      "octocat",
			HTMLURL:     "https://github.com/octocat/hello/releases/tag/v1.2.0",
			PublishedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		},
		Source: source,
	}
}

func TestNotify(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers and records the ledger entry", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{DefaultChat: "-100999"})
		ev := testEvent(types.SourcePush)

		gt.NoError(t, env.uc.Notify(ctx, ev, ""))

		gt.V(t, len(env.telegram.Sent)).Equal(1)
		gt.V(t, env.telegram.Sent[0].ChatID).Equal(types.ChatID("-100999"))
		gt.S(t, env.telegram.Sent[0].Text).Contains("octocat/hello")
		gt.S(t, env.telegram.Sent[0].Text).Contains("Fixed the flux capacitor.")

		gt.B(t, gt.R1(env.store.IsProcessed(ctx, 101, "octocat/hello")).NoError(t)).True()
	})

	t.Run("explicit chat override wins", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{DefaultChat: "-100999"})
		gt.NoError(t, env.store.UpsertRepository(ctx, &model.Repository{
			FullName: "octocat/hello", ChatID: "-100111",
		}))

		gt.NoError(t, env.uc.Notify(ctx, testEvent(types.SourcePush), "-100222"))
		gt.V(t, env.telegram.Sent[0].ChatID).Equal(types.ChatID("-100222"))
	})

	t.Run("stored repository chat beats the default", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{DefaultChat: "-100999"})
		gt.NoError(t, env.store.UpsertRepository(ctx, &model.Repository{
			FullName: "octocat/hello", ChatID: "-100111",
		}))

		gt.NoError(t, env.uc.Notify(ctx, testEvent(types.SourcePush), ""))
		gt.V(t, env.telegram.Sent[0].ChatID).Equal(types.ChatID("-100111"))
	})

	t.Run("no destination chat is a configuration error", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{})
		err := env.uc.Notify(ctx, testEvent(types.SourcePush), "")
		gt.Error(t, err)
		gt.V(t, len(env.telegram.Sent)).Equal(0)
	})

	t.Run("send failure leaves the ledger unwritten", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{DefaultChat: "-100999"})
		env.telegram.SendMessageFunc = func(context.Context, types.ChatID, string) error {
			return goerr.New("telegram is down")
		}

		gt.Error(t, env.uc.Notify(ctx, testEvent(types.SourcePush), ""))
		gt.B(t, gt.R1(env.store.IsProcessed(ctx, 101, "octocat/hello")).NoError(t)).False()
	})

	t.Run("losing the ledger race is not an error", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{DefaultChat: "-100999"})
		gt.R1(env.store.MarkProcessed(ctx, &model.ProcessedRelease{
			ReleaseID: 101, RepoFullName: "octocat/hello", Source: types.SourcePoll, ProcessedAt: time.Now(),
		})).NoError(t)

		gt.NoError(t, env.uc.Notify(ctx, testEvent(types.SourcePush), ""))
	})

	t.Run("empty body gets an auto-generated changelog", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{DefaultChat: "-100999"})
		env.github.CompareTagsFunc = func(_ context.Context, owner, name, base, head string) ([]model.Commit, error) {
			return []model.Commit{{SHA: "abcdef1234567890", Message: "fix: stop the bleeding"}}, nil
		}
		env.github.ListReleasesFunc = func(context.Context, string, string, int) ([]*model.Release, error) {
			return []*model.Release{
				{ID: 101, TagName: "v1.2.0"},
				{ID: 100, TagName: "v1.1.0"},
			}, nil
		}

		ev := testEvent(types.SourcePush)
		ev.Release.Body = ""
		gt.NoError(t, env.uc.Notify(ctx, ev, ""))

		text := env.telegram.Sent[0].Text
		gt.S(t, text).Contains("auto-generated from commit history")
		gt.S(t, text).Contains("fix: stop the bleeding (abcdef1)")
	})

	t.Run("enrichment failure still delivers with a fallback body", func(t *testing.T) {
		env := newTestEnv(t, usecase.Config{DefaultChat: "-100999"})
		env.github.ListReleasesFunc = func(context.Context, string, string, int) ([]*model.Release, error) {
			return nil, goerr.New("api unavailable")
		}

		ev := testEvent(types.SourcePush)
		ev.Release.Body = ""
		gt.NoError(t, env.uc.Notify(ctx, ev, ""))
		gt.S(t, env.telegram.Sent[0].Text).Contains("No changelog provided.")
	})

	t.Run("exact duplicate notify sends twice but records once", func(t *testing.T) {
		// The call-site dedup check lives in the webhook handler and poll
		// loop; the orchestrator itself only guarantees the single ledger row.
		env := newTestEnv(t, usecase.Config{DefaultChat: "-100999"})
		gt.NoError(t, env.uc.Notify(ctx, testEvent(types.SourcePush), ""))
		gt.NoError(t, env.uc.Notify(ctx, testEvent(types.SourcePush), ""))
		gt.V(t, gt.R1(env.store.CountProcessed(ctx)).NoError(t)).Equal(int64(1))
	})
}
