package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/relnote/pkg/domain/model"
)

const (
	truncationMark    = "… (truncated)"
	autoGeneratedMark = "🤖 <i>auto-generated from commit history</i>"
	unknownAuthor     = "unknown"
	publishDateLayout = "January 2, 2006"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// buildMessage renders the notification in Telegram's HTML subset. All
// user-controlled text is escaped; the changelog is truncated to maxLen with
// a visible marker.
func buildMessage(ev *model.ReleaseEvent, changelog string, generated bool, maxLen int) string {
	rel := ev.Release

	title := rel.Name
	if strings.TrimSpace(title) == "" {
		title = rel.TagName
	}
	author := rel.Author
	if author == "" {
		author = unknownAuthor
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🚀 <b>%s</b> — <b>%s</b>\n",
		escapeHTML(string(ev.RepoFullName)), escapeHTML(title))
	fmt.Fprintf(&sb, "📅 Published %s by %s\n\n",
		rel.PublishedAt.Format(publishDateLayout), escapeHTML(author))

	sb.WriteString("📝 <b>Changelog</b>\n")
	if generated {
		sb.WriteString(autoGeneratedMark + "\n")
	}
	if strings.TrimSpace(changelog) == "" {
		sb.WriteString("No changelog provided.\n")
	} else {
		sb.WriteString(escapeHTML(truncate(changelog, maxLen)))
		sb.WriteString("\n")
	}

	if rel.HTMLURL != "" {
		fmt.Fprintf(&sb, "\n🔗 <a href=\"%s\">View release</a>", escapeHTML(rel.HTMLURL))
	}

	return sb.String()
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n" + truncationMark
}
