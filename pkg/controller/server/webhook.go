package server

import (
	"log/slog"
	"net/http"

	"github.com/google/go-github/v55/github"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/utils/errutil"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

// handleReleaseWebhook is the push path of the pipeline. Signature
// verification is constant-time HMAC-SHA256 over the raw body via
// github.ValidatePayload. The ledger pre-check short-circuits duplicates
// before any enrichment work; delivery failure returns 500 so the provider's
// redelivery mechanism acts as the retry.
func handleReleaseWebhook(uc interfaces.UseCase, secret types.WebhookSecret) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payload, err := github.ValidatePayload(r, []byte(secret))
		if err != nil {
			logging.From(ctx).Warn("webhook signature rejected", "error", err)
			respondError(w, http.StatusUnauthorized, "invalid signature")
			return
		}

		eventType := github.WebHookType(r)
		if eventType != "release" {
			respondJSON(w, http.StatusAccepted, map[string]string{
				"status":  "ignored",
				"message": "not a release event",
			})
			return
		}

		parsed, err := github.ParseWebHook(eventType, payload)
		if err != nil {
			respondError(w, http.StatusBadRequest, "malformed payload")
			return
		}
		event, ok := parsed.(*github.ReleaseEvent)
		if !ok {
			respondError(w, http.StatusBadRequest, "malformed payload")
			return
		}

		logging.From(ctx).Info("received release webhook",
			slog.String("delivery_id", github.DeliveryID(r)),
			slog.String("action", event.GetAction()),
			slog.String("repo", event.GetRepo().GetFullName()),
		)

		if event.GetAction() != "published" {
			respondJSON(w, http.StatusAccepted, map[string]string{
				"status":  "ignored",
				"message": "not a published action",
			})
			return
		}

		ev := releaseEventToNotification(event)
		if ev == nil {
			respondError(w, http.StatusBadRequest, "missing repository or release fields")
			return
		}

		processed, err := uc.IsProcessed(ctx, ev.Release.ID, ev.RepoFullName)
		if err != nil {
			errutil.Handle(ctx, "fail to check dedup ledger", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if processed {
			respondJSON(w, http.StatusOK, map[string]string{
				"status":  "duplicate",
				"message": "release already delivered",
			})
			return
		}

		if err := uc.Notify(ctx, ev, ""); err != nil {
			errutil.Handle(ctx, "fail to deliver release notification", err)
			respondError(w, http.StatusInternalServerError, "delivery failed")
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// releaseEventToNotification maps the provider wire shape into the domain
// event. Nil means required fields are missing.
func releaseEventToNotification(event *github.ReleaseEvent) *model.ReleaseEvent {
	repo := event.GetRepo()
	rel := event.GetRelease()
	if repo.GetFullName() == "" || rel.GetID() == 0 {
		return nil
	}

	return &model.ReleaseEvent{
		RepoFullName: types.RepoFullName(repo.GetFullName()),
		Release: model.Release{
			ID:          types.ReleaseID(rel.GetID()),
			TagName:     rel.GetTagName(),
			Name:        rel.GetName(),
			Body:        rel.GetBody(),
			Author:      rel.GetAuthor().GetLogin(),
			HTMLURL:     rel.GetHTMLURL(),
			Draft:       rel.GetDraft(),
			Prerelease:  rel.GetPrerelease(),
			PublishedAt: rel.GetPublishedAt().Time,
		},
		Source: types.SourcePush,
	}
}
