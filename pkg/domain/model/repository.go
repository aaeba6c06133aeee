package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/relnote/pkg/domain/types"
)

// Repository is one tracked source-control project. Provider wire shapes are
// mapped into this entity at ingestion; nothing downstream sees raw payloads.
type Repository struct {
	ID            types.RepoID
	FullName      types.RepoFullName
	Description   string
	Private       bool
	Fork          bool
	Archived      bool
	Disabled      bool
	DefaultBranch string
	HTMLURL       string

	// Profile is the account name of the profile that discovered this
	// repository. ChatID is the per-repository destination override carried
	// from the profile; empty means "use the global default".
	Profile string
	ChatID  types.ChatID

	// Hook fields are written only by the hook synchronizer.
	HookID       *int64
	HookStatus   types.HookStatus
	HookSyncedAt *time.Time

	CreatedAt    time.Time
	UpdatedAt    time.Time
	PushedAt     time.Time
	DiscoveredAt time.Time
}

// Owner returns the account part of the full name.
func (x *Repository) Owner() string {
	owner, _, _ := strings.Cut(string(x.FullName), "/")
	return owner
}

// Name returns the repository part of the full name.
func (x *Repository) Name() string {
	_, name, _ := strings.Cut(string(x.FullName), "/")
	return name
}
