package config

import (
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/relnote/pkg/domain/types"
	"github.com/secmon-lab/relnote/pkg/infra/ghrelease"
)

// WebhookPath is the inbound push endpoint, appended to the public base URL
// when registering hooks.
const WebhookPath = "/webhook/github/releases"

type GitHub struct {
	token         types.GitHubToken     `masq:"secret"`
	webhookSecret types.WebhookSecret   `masq:"secret"`
	baseURL       string
	apiURL        string
}

func (x *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub access token (optional; required for private repos and hook management)",
			Category:    "GitHub",
			Destination: (*string)(&x.token),
			Sources:     cli.EnvVars("RELNOTE_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "Shared secret for webhook signature verification",
			Category:    "GitHub",
			Destination: (*string)(&x.webhookSecret),
			Sources:     cli.EnvVars("RELNOTE_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL of this service, used as the hook callback",
			Category:    "GitHub",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("RELNOTE_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub Enterprise API base URL (optional)",
			Category:    "GitHub",
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("RELNOTE_GITHUB_API_URL"),
		},
	}
}

func (x GitHub) NewClient() (*ghrelease.Client, error) {
	var options []ghrelease.Option
	if x.apiURL != "" {
		options = append(options, ghrelease.WithBaseURL(x.apiURL))
	}
	return ghrelease.New(x.token, options...)
}

func (x GitHub) Secret() types.WebhookSecret {
	return x.webhookSecret
}

// CallbackURL is empty when no public base URL is configured, which disables
// hook management.
func (x GitHub) CallbackURL() string {
	if x.baseURL == "" {
		return ""
	}
	return strings.TrimSuffix(x.baseURL, "/") + WebhookPath
}

func (x GitHub) CanManageHooks() bool {
	return x.token != "" && x.baseURL != ""
}

func (x GitHub) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("token.len", len(x.token)),
		slog.Int("webhookSecret.len", len(x.webhookSecret)),
		slog.String("baseURL", x.baseURL),
		slog.String("apiURL", x.apiURL),
	)
}
