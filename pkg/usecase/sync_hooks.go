package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/utils/errutil"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

// SyncAllHooks reconciles the push registration of every known repository
// and persists the outcome. This is the only writer of the hook fields in
// the repository directory.
func (x *UseCase) SyncAllHooks(ctx context.Context) (*model.HookSyncSummary, error) {
	repos, err := x.clients.Store().ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.HookSyncSummary{
		Counts: make(map[types.HookStatus]int),
	}

	for i, repo := range repos {
		if i > 0 {
			sleep(ctx, x.cfg.RepoDelay)
		}

		status, hookID := x.syncHook(ctx, repo)
		if err := x.clients.Store().UpdateHookState(ctx, repo.FullName, hookID, status, time.Now()); err != nil {
			errutil.Handle(ctx, "failed to persist hook state", err)
		}

		summary.Total++
		summary.Counts[status]++
	}

	logging.From(ctx).Info("hook sync finished",
		slog.Int("total", summary.Total),
		slog.Any("counts", summary.Counts),
	)

	return summary, nil
}

// syncHook drives one repository through the reconciliation state machine.
// Failures never propagate; they map to a status so the batch continues.
func (x *UseCase) syncHook(ctx context.Context, repo *model.Repository) (types.HookStatus, *int64) {
	logger := logging.From(ctx).With(slog.Any("repo", repo.FullName))

	if !x.cfg.CanManageHooks || x.cfg.CallbackURL == "" {
		logger.Debug("no hook management credential, repository stays on poll fallback")
		return types.HookStatusUnsupported, nil
	}

	owner, name := repo.Owner(), repo.Name()
	desired := model.HookConfig{
		URL:    x.cfg.CallbackURL,
		Secret: x.cfg.WebhookSecret,
	}

	hooks, err := x.clients.GitHub().ListHooks(ctx, owner, name)
	if err != nil {
		if errors.Is(err, types.ErrRepoNotAccessible) {
			logger.Info("hooks not accessible, repository stays on poll fallback")
			return types.HookStatusUnsupported, nil
		}
		errutil.Handle(ctx, "failed to list hooks", err)
		return types.HookStatusFailed, nil
	}

	for _, hook := range hooks {
		if hook.URL != desired.URL {
			continue
		}

		if hook.Active && len(hook.Events) == 1 && hook.Events[0] == "release" {
			logger.Debug("hook already up to date", slog.Int64("hook_id", hook.ID))
			return types.HookStatusActive, &hook.ID
		}

		updated, err := x.clients.GitHub().UpdateHook(ctx, owner, name, hook.ID, desired)
		if err != nil {
			if errors.Is(err, types.ErrRepoNotAccessible) {
				return types.HookStatusUnsupported, nil
			}
			errutil.Handle(ctx, "failed to update hook", err)
			return types.HookStatusFailed, nil
		}
		logger.Info("hook updated", slog.Int64("hook_id", updated.ID))
		return types.HookStatusActive, &updated.ID
	}

	created, err := x.clients.GitHub().CreateHook(ctx, owner, name, desired)
	if err != nil {
		if errors.Is(err, types.ErrRepoNotAccessible) {
			logger.Info("hook creation not allowed, repository stays on poll fallback")
			return types.HookStatusUnsupported, nil
		}
		errutil.Handle(ctx, "failed to create hook", err)
		return types.HookStatusFailed, nil
	}

	logger.Info("hook created", slog.Int64("hook_id", created.ID))
	return types.HookStatusActive, &created.ID
}
