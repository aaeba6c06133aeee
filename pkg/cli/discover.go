package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/relnote/pkg/cli/config"
	"github.com/secmon-lab/relnote/pkg/infra"
	"github.com/secmon-lab/relnote/pkg/usecase"
)

// discoverCommand runs one discovery pass and prints the filtered repository
// set, without touching any store. Useful for validating filter patterns
// before running the daemon.
func discoverCommand() *cli.Command {
	var (
		githubCfg   config.GitHub
		profilesCfg config.Profiles
		filterCfg   config.Filter
	)

	return &cli.Command{
		Name:    "discover",
		Aliases: []string{"d"},
		Usage:   "One-shot repository discovery (dry run)",
		Flags: slice.Flatten(
			githubCfg.Flags(),
			profilesCfg.Flags(),
			filterCfg.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			profiles, err := profilesCfg.Build()
			if err != nil {
				return err
			}

			ghClient, err := githubCfg.NewClient()
			if err != nil {
				return err
			}

			uc := usecase.New(infra.New(infra.WithGitHub(ghClient)), usecase.Config{
				Profiles: profiles,
				Filter:   filterCfg.Build(),
			})

			repos, err := uc.DiscoverAll(ctx)
			if err != nil {
				return err
			}

			for _, repo := range repos {
				flags := ""
				if repo.Archived {
					flags += " [archived]"
				}
				if repo.Fork {
					flags += " [fork]"
				}
				fmt.Fprintf(os.Stdout, "%s (profile: %s)%s\n", repo.FullName, repo.Profile, flags)
			}
			fmt.Fprintf(os.Stdout, "total: %d repositories\n", len(repos))

			return nil
		},
	}
}
