package server

import (
	"context"
	"net/http"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/utils/errutil"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

func handleStats(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := uc.Stats(r.Context())
		if err != nil {
			errutil.Handle(r.Context(), "fail to collect stats", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"repositories_by_status": stats.RepositoriesByStatus,
			"processed_total":        stats.ProcessedTotal,
			"recent_deliveries":      stats.RecentDeliveries,
		})
	}
}

func handleListRepositories(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := types.HookStatus(r.URL.Query().Get("status"))
		if status != "" && !status.IsValid() {
			respondError(w, http.StatusBadRequest, "unknown status filter")
			return
		}

		repos, err := uc.ListRepositories(r.Context(), status)
		if err != nil {
			errutil.Handle(r.Context(), "fail to list repositories", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"count":        len(repos),
			"repositories": repos,
		})
	}
}

// handleDiscover and handleSyncWebhooks acknowledge immediately and run the
// job on a detached context: the request context dies with the response, but
// job failures stay observable through errutil.
func handleDiscover(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bgCtx := DetachContext(r.Context())
		go func(ctx context.Context) {
			count, err := uc.RefreshRepositories(ctx)
			if err != nil {
				errutil.Handle(ctx, "admin-triggered discovery failed", err)
				return
			}
			logging.From(ctx).Info("admin-triggered discovery finished", "count", count)
		}(bgCtx)

		respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

func handleSyncWebhooks(uc interfaces.UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bgCtx := DetachContext(r.Context())
		go func(ctx context.Context) {
			summary, err := uc.SyncAllHooks(ctx)
			if err != nil {
				errutil.Handle(ctx, "admin-triggered hook sync failed", err)
				return
			}
			logging.From(ctx).Info("admin-triggered hook sync finished",
				"total", summary.Total,
				"counts", summary.Counts,
			)
		}(bgCtx)

		respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}
