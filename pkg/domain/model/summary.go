package model

import (
	"time"

	"github.com/secmon-lab/relnote/pkg/domain/types"
)

// HookSyncSummary counts hook synchronization outcomes per status.
type HookSyncSummary struct {
	Total  int
	Counts map[types.HookStatus]int
}

// PollSummary is the result of one poll cycle over all poll-mode repos.
type PollSummary struct {
	Repositories int
	Delivered    int
	Skipped      int
	Errors       int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Stats is the admin-surface snapshot of the service state.
type Stats struct {
	RepositoriesByStatus map[types.HookStatus]int64
	ProcessedTotal       int64
	RecentDeliveries     []*ProcessedRelease
}
