package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
)

type Poll struct {
	disabled bool
	interval time.Duration
}

func (x *Poll) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-poll",
			Usage:       "Disable the poll fallback for repositories without webhooks",
			Category:    "Poll",
			Destination: &x.disabled,
			Sources:     cli.EnvVars("RELNOTE_NO_POLL"),
		},
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Period of the poll fallback cycle",
			Category:    "Poll",
			Destination: &x.interval,
			Sources:     cli.EnvVars("RELNOTE_POLL_INTERVAL"),
			Value:       15 * time.Minute,
		},
	}
}

func (x Poll) Enabled() bool {
	return !x.disabled
}

func (x Poll) Interval() time.Duration {
	return x.interval
}

func (x Poll) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", !x.disabled),
		slog.Duration("interval", x.interval),
	)
}
