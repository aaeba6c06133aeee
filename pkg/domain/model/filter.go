package model

import (
	"regexp"
	"strings"
)

// FilterConfig holds the global repository filter knobs.
type FilterConfig struct {
	Allowlist       []string
	Blocklist       []string
	IncludeArchived bool
	IncludeForks    bool
}

// MatchesAny reports whether name matches any of the glob patterns. An empty
// pattern list never matches; the caller decides the default. Only `*` and
// `?` are special, matching is anchored and case-insensitive.
func MatchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "*" {
			return true
		}
		if globToRegexp(pattern).MatchString(name) {
			return true
		}
	}
	return false
}

func globToRegexp(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString(`(?i)^`)
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(`.*`)
		case '?':
			sb.WriteString(`.`)
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString(`$`)
	return regexp.MustCompile(sb.String())
}

// Include decides whether a discovered repository is tracked. The rules are
// evaluated in fixed precedence order and the first matching rule wins:
// archived gate, fork gate, global blocklist, global allowlist, profile
// exclude, profile include, then include by default.
func (x *FilterConfig) Include(repo *Repository, profile *Profile) bool {
	name := repo.Name()

	if repo.Archived && !x.IncludeArchived {
		return false
	}
	if repo.Fork && !x.IncludeForks {
		return false
	}
	if MatchesAny(name, x.Blocklist) {
		return false
	}
	if len(x.Allowlist) > 0 && !MatchesAny(name, x.Allowlist) {
		return false
	}
	if profile != nil {
		if MatchesAny(name, profile.Exclude) {
			return false
		}
		if len(profile.Include) > 0 {
			return MatchesAny(name, profile.Include)
		}
	}
	return true
}
