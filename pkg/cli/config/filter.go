package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/relnote/pkg/domain/model"
)

type Filter struct {
	allowlist       string
	blocklist       string
	includeArchived bool
	includeForks    bool
}

func (x *Filter) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "allowlist",
			Usage:       "Comma-separated glob patterns; when set, only matching repositories are tracked",
			Category:    "Filter",
			Destination: &x.allowlist,
			Sources:     cli.EnvVars("RELNOTE_ALLOWLIST"),
		},
		&cli.StringFlag{
			Name:        "blocklist",
			Usage:       "Comma-separated glob patterns; matching repositories are never tracked",
			Category:    "Filter",
			Destination: &x.blocklist,
			Sources:     cli.EnvVars("RELNOTE_BLOCKLIST"),
		},
		&cli.BoolFlag{
			Name:        "include-archived",
			Usage:       "Track archived repositories",
			Category:    "Filter",
			Destination: &x.includeArchived,
			Sources:     cli.EnvVars("RELNOTE_INCLUDE_ARCHIVED"),
		},
		&cli.BoolFlag{
			Name:        "include-forks",
			Usage:       "Track forked repositories",
			Category:    "Filter",
			Destination: &x.includeForks,
			Sources:     cli.EnvVars("RELNOTE_INCLUDE_FORKS"),
		},
	}
}

func (x Filter) Build() model.FilterConfig {
	return model.FilterConfig{
		Allowlist:       splitList(x.allowlist),
		Blocklist:       splitList(x.blocklist),
		IncludeArchived: x.includeArchived,
		IncludeForks:    x.includeForks,
	}
}

func (x Filter) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("allowlist", x.allowlist),
		slog.String("blocklist", x.blocklist),
		slog.Bool("includeArchived", x.includeArchived),
		slog.Bool("includeForks", x.includeForks),
	)
}
