package model

import (
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

// Profile is a configured source-control account to monitor. Profiles are
// built once at startup and immutable during a run.
type Profile struct {
	URL     string
	Account string
	ChatID  types.ChatID
	Include []string
	Exclude []string
}

// NewProfile derives the account name from the profile URL. The account is
// the first path segment, e.g. https://github.com/torvalds -> torvalds. A
// bare account name without scheme is accepted as well.
func NewProfile(rawURL string) (*Profile, error) {
	account := strings.Trim(rawURL, "/")

	if strings.Contains(rawURL, "://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, goerr.Wrap(err, "parsing profile URL", goerr.V("url", rawURL))
		}
		seg := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(seg) == 0 || seg[0] == "" {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "profile URL has no account path", goerr.V("url", rawURL))
		}
		account = seg[0]
	}

	if account == "" {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "empty profile", goerr.V("url", rawURL))
	}

	return &Profile{
		URL:     rawURL,
		Account: account,
	}, nil
}
