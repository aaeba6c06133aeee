package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/relnote/pkg/cli/config"
	"github.com/secmon-lab/relnote/pkg/controller/daemon"
	"github.com/secmon-lab/relnote/pkg/controller/server"
	"github.com/secmon-lab/relnote/pkg/infra"
	"github.com/secmon-lab/relnote/pkg/usecase"
	"github.com/secmon-lab/relnote/pkg/utils/logging"
	"github.com/secmon-lab/relnote/pkg/utils/safe"
)

func serveCommand() *cli.Command {
	var (
		addr string

		githubCfg   config.GitHub
		telegramCfg config.Telegram
		profilesCfg config.Profiles
		filterCfg   config.Filter
		pollCfg     config.Poll
		storageCfg  config.Storage
		sentryCfg   config.Sentry
	)
	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("RELNOTE_ADDR"),
			Destination: &addr,
		},
	}

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Server mode",
		Flags: slice.Flatten(
			serveFlags,
			githubCfg.Flags(),
			telegramCfg.Flags(),
			profilesCfg.Flags(),
			filterCfg.Flags(),
			pollCfg.Flags(),
			storageCfg.Flags(),
			sentryCfg.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("GitHub", githubCfg),
				slog.Any("Telegram", telegramCfg),
				slog.Any("Profiles", profilesCfg),
				slog.Any("Filter", filterCfg),
				slog.Any("Poll", pollCfg),
				slog.Any("Storage", storageCfg),
				slog.Any("Sentry", sentryCfg),
			)

			if err := sentryCfg.Configure(ctx); err != nil {
				return err
			}

			if githubCfg.Secret() == "" {
				return goerr.New("github-webhook-secret is required in serve mode")
			}

			profiles, err := profilesCfg.Build()
			if err != nil {
				return err
			}

			store, err := storageCfg.Open()
			if err != nil {
				return err
			}
			defer safe.Close(store)

			ghClient, err := githubCfg.NewClient()
			if err != nil {
				return err
			}
			tgClient, err := telegramCfg.NewClient()
			if err != nil {
				return err
			}

			clients := infra.New(
				infra.WithGitHub(ghClient),
				infra.WithTelegram(tgClient),
				infra.WithStore(store),
			)

			uc := usecase.New(clients, usecase.Config{
				Profiles:        profiles,
				Filter:          filterCfg.Build(),
				DefaultChat:     telegramCfg.DefaultChat(),
				CallbackURL:     githubCfg.CallbackURL(),
				WebhookSecret:   githubCfg.Secret(),
				CanManageHooks:  githubCfg.CanManageHooks(),
				MaxChangelogLen: telegramCfg.MaxChangelogLen(),

				ProfileDelay: 2 * time.Second,
				RepoDelay:    time.Second,
				ReleaseDelay: time.Second,
			})

			s := server.New(uc, server.WithWebhookSecret(githubCfg.Secret()))

			bgCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			d := daemon.New(uc, daemon.WithPoll(pollCfg.Enabled(), pollCfg.Interval()))
			go func() {
				if err := d.Run(bgCtx); err != nil && bgCtx.Err() == nil {
					logging.Default().Error("daemon stopped", slog.Any("error", err))
				}
			}()

			serverErr := make(chan error, 1)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: s.Mux(),

				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
			}

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)
				cancel()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer shutdownCancel()

				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
			}

			return nil
		},
	}
}
