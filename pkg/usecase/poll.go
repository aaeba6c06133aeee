package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/utils/errutil"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

// PollOnce scans repositories without push capability for releases that are
// not yet in the dedup ledger. Only repositories with hook status
// "unsupported" are polled: anything else either has a working hook or is
// expected to get one back, and polling it would risk double delivery.
func (x *UseCase) PollOnce(ctx context.Context) (*model.PollSummary, error) {
	summary := &model.PollSummary{StartedAt: time.Now()}

	repos, err := x.clients.Store().ListRepositoriesByHookStatus(ctx, types.HookStatusUnsupported)
	if err != nil {
		return nil, err
	}
	summary.Repositories = len(repos)

	for i, repo := range repos {
		if i > 0 {
			sleep(ctx, x.cfg.RepoDelay)
		}

		if err := x.pollRepository(ctx, repo, summary); err != nil {
			summary.Errors++
			errutil.Handle(ctx, "poll failed for repository", goerr.Wrap(err,
				"polling repository", goerr.V("repo", repo.FullName)))
		}
	}

	summary.FinishedAt = time.Now()
	logging.From(ctx).Info("poll cycle finished",
		slog.Int("repositories", summary.Repositories),
		slog.Int("delivered", summary.Delivered),
		slog.Int("skipped", summary.Skipped),
		slog.Int("errors", summary.Errors),
		slog.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	return summary, nil
}

func (x *UseCase) pollRepository(ctx context.Context, repo *model.Repository, summary *model.PollSummary) error {
	releases, err := x.clients.GitHub().ListReleases(ctx, repo.Owner(), repo.Name(), x.cfg.PollReleaseLimit)
	if err != nil {
		return err
	}

	delivered := 0
	for _, rel := range releases {
		if rel.Draft {
			continue
		}

		done, err := x.clients.Store().IsProcessed(ctx, rel.ID, repo.FullName)
		if err != nil {
			return err
		}
		if done {
			summary.Skipped++
			continue
		}

		if delivered > 0 {
			sleep(ctx, x.cfg.ReleaseDelay)
		}

		ev := &model.ReleaseEvent{
			RepoFullName: repo.FullName,
			Release:      *rel,
			Source:       types.SourcePoll,
		}
		if err := x.Notify(ctx, ev, ""); err != nil {
			summary.Errors++
			errutil.Handle(ctx, "poll delivery failed", goerr.Wrap(err,
				"delivering polled release",
				goerr.V("repo", repo.FullName),
				goerr.V("tag", rel.TagName),
			))
			continue
		}
		summary.Delivered++
		delivered++
	}

	return nil
}
