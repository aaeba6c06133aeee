package model

import (
	"time"

	"github.com/secmon-lab/relnote/pkg/domain/types"
)

// Release is the provider-neutral shape of a published release.
type Release struct {
	ID          types.ReleaseID
	TagName     string
	Name        string
	Body        string
	Author      string
	HTMLURL     string
	Draft       bool
	Prerelease  bool
	PublishedAt time.Time
}

// Commit is a single entry of a commit comparison between two tags.
type Commit struct {
	SHA     string
	Message string
}

// ReleaseEvent is a release notification entering the orchestrator, from
// either the webhook path or a poll cycle.
type ReleaseEvent struct {
	RepoFullName types.RepoFullName
	Release      Release
	Source       types.DeliverySource
}

// ProcessedRelease is a dedup ledger entry: the fact that this release, for
// this repository, has been delivered. Inserted exactly once, never updated.
type ProcessedRelease struct {
	ReleaseID    types.ReleaseID
	RepoFullName types.RepoFullName
	TagName      string
	Source       types.DeliverySource
	ProcessedAt  time.Time
}

// Hook is a provider-side push registration for release events.
type Hook struct {
	ID     int64
	URL    string
	Events []string
	Active bool
}

// HookConfig is the desired state of this service's push registration.
type HookConfig struct {
	URL    string
	Secret types.WebhookSecret
}
