package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/utils/errutil"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

// DiscoverAll queries every configured profile for its repositories and
// returns the filtered set. A failing profile is logged and skipped; the
// batch continues. Persistence is left to the caller.
func (x *UseCase) DiscoverAll(ctx context.Context) ([]*model.Repository, error) {
	var all []*model.Repository

	for i, profile := range x.cfg.Profiles {
		if i > 0 {
			sleep(ctx, x.cfg.ProfileDelay)
		}

		repos, err := x.discoverProfile(ctx, profile)
		if err != nil {
			errutil.Handle(ctx, "discovery failed for profile", goerr.Wrap(err,
				"discovering profile", goerr.V("profile", profile.Account)))
			continue
		}
		all = append(all, repos...)
	}

	return all, nil
}

func (x *UseCase) discoverProfile(ctx context.Context, profile *model.Profile) ([]*model.Repository, error) {
	logger := logging.From(ctx).With(slog.String("profile", profile.Account))

	ownerType, err := x.clients.GitHub().GetOwnerType(ctx, profile.Account)
	if err != nil {
		// Non-fatal: individual listing works for most accounts.
		logger.Warn("owner type lookup failed, assuming individual", "error", err)
		ownerType = types.OwnerIndividual
	}

	repos, err := x.clients.GitHub().ListOwnerRepos(ctx, profile.Account, ownerType)
	if err != nil {
		return nil, err
	}

	now := logging.CtxTime(ctx)
	var out []*model.Repository
	for _, repo := range repos {
		if !x.cfg.Filter.Include(repo, profile) {
			logger.Debug("repository filtered out", "repo", repo.FullName)
			continue
		}
		repo.Profile = profile.Account
		repo.ChatID = profile.ChatID
		repo.DiscoveredAt = now
		out = append(out, repo)
	}

	logger.Info("profile discovered",
		slog.String("owner_type", string(ownerType)),
		slog.Int("fetched", len(repos)),
		slog.Int("tracked", len(out)),
	)

	return out, nil
}

// RefreshRepositories runs discovery and upserts the result into the
// repository directory.
func (x *UseCase) RefreshRepositories(ctx context.Context) (int, error) {
	repos, err := x.DiscoverAll(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, repo := range repos {
		if err := x.clients.Store().UpsertRepository(ctx, repo); err != nil {
			return count, err
		}
		count++
	}

	logging.From(ctx).Info("repository directory refreshed", slog.Int("count", count))
	return count, nil
}
