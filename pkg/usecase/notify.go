package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

// Notify runs the delivery pipeline for one release event: resolve the
// destination chat, enrich an empty changelog, format, send, then record the
// ledger entry. Any error before the ledger write propagates so the event
// stays retryable (webhook redelivery for push, next cycle for poll).
//
// Duplicate suppression happens at the call sites, before any enrichment
// work is spent; the ledger's unique insert is the final gate.
func (x *UseCase) Notify(ctx context.Context, ev *model.ReleaseEvent, overrideChat types.ChatID) error {
	rel := ev.Release
	logger := logging.From(ctx).With(
		slog.Any("repo", ev.RepoFullName),
		slog.Int64("release_id", int64(rel.ID)),
		slog.String("tag", rel.TagName),
		slog.Any("source", ev.Source),
	)

	chat, err := x.resolveChat(ctx, ev.RepoFullName, overrideChat)
	if err != nil {
		return err
	}

	changelog := strings.TrimSpace(rel.Body)
	generated := false
	if changelog == "" {
		owner, name, _ := strings.Cut(string(ev.RepoFullName), "/")
		if enriched := x.enrichChangelog(ctx, owner, name, &rel); enriched != "" {
			changelog = enriched
			generated = true
		}
	}

	msg := buildMessage(ev, changelog, generated, x.cfg.MaxChangelogLen)
	if err := x.clients.Telegram().SendMessage(ctx, chat, msg); err != nil {
		return goerr.Wrap(err, "delivering notification",
			goerr.V("repo", ev.RepoFullName),
			goerr.V("release_id", rel.ID),
			goerr.V("chat", chat),
		)
	}

	inserted, err := x.clients.Store().MarkProcessed(ctx, &model.ProcessedRelease{
		ReleaseID:    rel.ID,
		RepoFullName: ev.RepoFullName,
		TagName:      rel.TagName,
		Source:       ev.Source,
		ProcessedAt:  logging.CtxTime(ctx),
	})
	if err != nil {
		return goerr.Wrap(err, "recording ledger entry",
			goerr.V("repo", ev.RepoFullName),
			goerr.V("release_id", rel.ID),
		)
	}
	if !inserted {
		// Another pipeline won the race after we sent. Nothing to undo; the
		// ledger still holds exactly one entry.
		logger.Warn("release delivered concurrently by another path")
		return nil
	}

	logger.Info("release notification delivered", slog.Bool("changelog_generated", generated))
	return nil
}

// resolveChat picks the destination: explicit override, then the stored
// per-repository override, then the global default.
func (x *UseCase) resolveChat(ctx context.Context, fullName types.RepoFullName, override types.ChatID) (types.ChatID, error) {
	if override != "" {
		return override, nil
	}

	repo, err := x.clients.Store().GetRepository(ctx, fullName)
	if err != nil {
		return "", err
	}
	if repo != nil && repo.ChatID != "" {
		return repo.ChatID, nil
	}

	if x.cfg.DefaultChat == "" {
		return "", goerr.Wrap(types.ErrInvalidConfig, "no destination chat for repository",
			goerr.V("repo", fullName))
	}
	return x.cfg.DefaultChat, nil
}
