package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/repository/memory"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert keeps hook state across rediscovery", func(t *testing.T) {
		store := memory.New()
		repo := &model.Repository{FullName: "octocat/hello", ID: 1}
		gt.NoError(t, store.UpsertRepository(ctx, repo))

		hookID := int64(9)
		gt.NoError(t, store.UpdateHookState(ctx, repo.FullName, &hookID, types.HookStatusActive, time.Now()))
		gt.NoError(t, store.UpsertRepository(ctx, &model.Repository{FullName: "octocat/hello", ID: 1, Description: "updated"}))

		got := gt.R1(store.GetRepository(ctx, repo.FullName)).NoError(t)
		gt.V(t, got.Description).Equal("updated")
		gt.V(t, got.HookStatus).Equal(types.HookStatusActive)
		gt.V(t, *got.HookID).Equal(hookID)
	})

	t.Run("new repository defaults to pending", func(t *testing.T) {
		store := memory.New()
		gt.NoError(t, store.UpsertRepository(ctx, &model.Repository{FullName: "octocat/fresh"}))
		got := gt.R1(store.GetRepository(ctx, "octocat/fresh")).NoError(t)
		gt.V(t, got.HookStatus).Equal(types.HookStatusPending)
	})

	t.Run("mark processed gates duplicates", func(t *testing.T) {
		store := memory.New()
		rec := &model.ProcessedRelease{ReleaseID: 1, RepoFullName: "octocat/hello", Source: types.SourcePush, ProcessedAt: time.Now()}

		gt.B(t, gt.R1(store.MarkProcessed(ctx, rec)).NoError(t)).True()
		gt.B(t, gt.R1(store.MarkProcessed(ctx, rec)).NoError(t)).False()
		gt.B(t, gt.R1(store.IsProcessed(ctx, 1, "octocat/hello")).NoError(t)).True()
	})

	t.Run("prune keeps newest", func(t *testing.T) {
		store := memory.New()
		base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		for i := int64(1); i <= 5; i++ {
			rec := &model.ProcessedRelease{
				ReleaseID:    types.ReleaseID(i),
				RepoFullName: "octocat/hello",
				Source:       types.SourcePoll,
				ProcessedAt:  base.Add(time.Duration(i) * time.Minute),
			}
			gt.R1(store.MarkProcessed(ctx, rec)).NoError(t)
		}

		pruned := gt.R1(store.PruneProcessed(ctx, 2)).NoError(t)
		gt.V(t, pruned).Equal(int64(3))
		gt.B(t, gt.R1(store.IsProcessed(ctx, 5, "octocat/hello")).NoError(t)).True()
		gt.B(t, gt.R1(store.IsProcessed(ctx, 1, "octocat/hello")).NoError(t)).False()
	})
}
