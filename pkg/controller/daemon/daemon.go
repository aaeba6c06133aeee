package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/utils/errutil"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
)

const (
	defaultPollInterval = 15 * time.Minute
	defaultStartupDelay = 10 * time.Second
	defaultLedgerKeep   = 1000
)

// Daemon drives the background work of the service: discovery and hook sync
// at startup, then the periodic poll fallback. Every cycle failure is
// reported and swallowed; only context cancellation stops the loop.
type Daemon struct {
	uc           interfaces.UseCase
	pollEnabled  bool
	pollInterval time.Duration
	startupDelay time.Duration
	ledgerKeep   int
}

type Option func(*Daemon)

func WithPoll(enabled bool, interval time.Duration) Option {
	return func(d *Daemon) {
		d.pollEnabled = enabled
		if interval > 0 {
			d.pollInterval = interval
		}
	}
}

func WithStartupDelay(delay time.Duration) Option {
	return func(d *Daemon) {
		d.startupDelay = delay
	}
}

func WithLedgerKeep(keep int) Option {
	return func(d *Daemon) {
		d.ledgerKeep = keep
	}
}

func New(uc interfaces.UseCase, options ...Option) *Daemon {
	d := &Daemon{
		uc:           uc,
		pollEnabled:  true,
		pollInterval: defaultPollInterval,
		startupDelay: defaultStartupDelay,
		ledgerKeep:   defaultLedgerKeep,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Run blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	logger := logging.From(ctx)

	if count, err := d.uc.RefreshRepositories(ctx); err != nil {
		errutil.Handle(ctx, "startup discovery failed", err)
	} else {
		logger.Info("startup discovery finished", slog.Int("count", count))
	}

	if summary, err := d.uc.SyncAllHooks(ctx); err != nil {
		errutil.Handle(ctx, "startup hook sync failed", err)
	} else {
		logger.Info("startup hook sync finished",
			slog.Int("total", summary.Total),
			slog.Any("counts", summary.Counts),
		)
	}

	if !d.pollEnabled {
		logger.Info("poll fallback disabled, waiting for webhooks only")
		<-ctx.Done()
		return ctx.Err()
	}

	// First poll shortly after startup, then on the fixed period.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.startupDelay):
	}
	d.pollCycle(ctx)

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("daemon shutting down", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			d.pollCycle(ctx)
		}
	}
}

func (d *Daemon) pollCycle(ctx context.Context) {
	if _, err := d.uc.PollOnce(ctx); err != nil {
		errutil.Handle(ctx, "poll cycle failed", err)
	}

	if pruned, err := d.uc.PruneLedger(ctx, d.ledgerKeep); err != nil {
		errutil.Handle(ctx, "ledger pruning failed", err)
	} else if pruned > 0 {
		logging.From(ctx).Debug("pruned dedup ledger", slog.Int64("pruned", pruned))
	}
}
