package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

const (
	// noCommitsPlaceholder is emitted when two releases compare to an empty
	// commit range, so the notification never carries a silently empty body.
	noCommitsPlaceholder = "No commits found between releases."

	enrichReleaseWindow = 30
	enrichCommitCap     = 20
)

// enrichChangelog derives a changelog for a release with an empty body.
// First it re-fetches the release by id, since webhook payloads sometimes
// omit fields a direct fetch carries. Failing that, it locates the previous
// release by tag and summarizes the commits between the two tags. Every
// provider failure is absorbed: enrichment must never abort delivery.
func (x *UseCase) enrichChangelog(ctx context.Context, owner, name string, rel *model.Release) string {
	logger := logging.From(ctx).With(
		slog.String("repo", owner+"/"+name),
		slog.String("tag", rel.TagName),
	)

	if fetched, err := x.clients.GitHub().GetRelease(ctx, owner, name, rel.ID); err != nil {
		logger.Debug("release re-fetch failed", "error", err)
	} else if fetched != nil {
		if body := strings.TrimSpace(fetched.Body); body != "" {
			logger.Debug("changelog recovered from release detail")
			return body
		}
	}

	releases, err := x.clients.GitHub().ListReleases(ctx, owner, name, enrichReleaseWindow)
	if err != nil {
		logger.Debug("release listing failed", "error", err)
		return ""
	}

	prev := previousRelease(releases, rel.TagName)
	if prev == nil {
		logger.Debug("no previous release found, skipping changelog synthesis")
		return ""
	}

	commits, err := x.clients.GitHub().CompareTags(ctx, owner, name, prev.TagName, rel.TagName)
	if err != nil {
		logger.Debug("tag comparison failed", "error", err)
		return ""
	}

	if len(commits) == 0 {
		return noCommitsPlaceholder
	}
	if len(commits) > enrichCommitCap {
		commits = commits[:enrichCommitCap]
	}

	lines := make([]string, 0, len(commits))
	for _, commit := range commits {
		lines = append(lines, fmt.Sprintf("• %s (%s)", commitSubject(commit.Message), shortSHA(commit.SHA)))
	}

	logger.Debug("changelog synthesized from commits", slog.Int("commits", len(lines)))
	return strings.Join(lines, "\n")
}

// previousRelease finds the release listed right after the given tag, i.e.
// the next-older one. Nil when the tag is absent or already the oldest.
func previousRelease(releases []*model.Release, tag string) *model.Release {
	for i, rel := range releases {
		if rel.TagName == tag {
			if i+1 < len(releases) {
				return releases[i+1]
			}
			return nil
		}
	}
	return nil
}

func commitSubject(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
