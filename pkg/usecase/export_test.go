package usecase

import (
	"context"

	"github.com/secmon-lab/relnote/pkg/domain/model"
)

var (
	BuildMessage    = buildMessage
	Truncate        = truncate
	PreviousRelease = previousRelease
	CommitSubject   = commitSubject
)

const (
	NoCommitsPlaceholder = noCommitsPlaceholder
	TruncationMark       = truncationMark
	AutoGeneratedMark    = autoGeneratedMark
)

func (x *UseCase) EnrichChangelog(ctx context.Context, owner, name string, rel *model.Release) string {
	return x.enrichChangelog(ctx, owner, name, rel)
}
