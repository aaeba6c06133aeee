package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/secmon-lab/relnote/pkg/domain/model"
	"github.com/secmon-lab/relnote/pkg/domain/types"
)

// Profiles configures the monitored accounts. Precedence: the structured
// YAML file beats the comma-separated list, which beats the legacy single
// repository fallback.
type Profiles struct {
	list       string
	file       string
	legacyRepo string
}

func (x *Profiles) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profiles",
			Usage:       "Comma-separated profile URLs or account names",
			Category:    "Profiles",
			Destination: &x.list,
			Sources:     cli.EnvVars("RELNOTE_PROFILES"),
		},
		&cli.StringFlag{
			Name:        "profiles-file",
			Usage:       "YAML file with per-profile include/exclude/chat configuration",
			Category:    "Profiles",
			Destination: &x.file,
			Sources:     cli.EnvVars("RELNOTE_PROFILES_FILE"),
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Single owner/name repository to watch (legacy fallback)",
			Category:    "Profiles",
			Destination: &x.legacyRepo,
			Sources:     cli.EnvVars("RELNOTE_REPO"),
		},
	}
}

type profileFile struct {
	Profiles []struct {
		URL     string   `yaml:"url"`
		ChatID  string   `yaml:"chat_id"`
		Include []string `yaml:"include"`
		Exclude []string `yaml:"exclude"`
	} `yaml:"profiles"`
}

func (x Profiles) Build() ([]*model.Profile, error) {
	switch {
	case x.file != "":
		return x.buildFromFile()

	case x.list != "":
		var profiles []*model.Profile
		for _, raw := range splitList(x.list) {
			profile, err := model.NewProfile(raw)
			if err != nil {
				return nil, err
			}
			profiles = append(profiles, profile)
		}
		return profiles, nil

	case x.legacyRepo != "":
		owner, name, ok := strings.Cut(x.legacyRepo, "/")
		if !ok || owner == "" || name == "" {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "repo must be owner/name",
				goerr.V("repo", x.legacyRepo))
		}
		profile, err := model.NewProfile(owner)
		if err != nil {
			return nil, err
		}
		profile.Include = []string{name}
		return []*model.Profile{profile}, nil
	}

	return nil, goerr.Wrap(types.ErrInvalidConfig, "no profiles configured")
}

func (x Profiles) buildFromFile() ([]*model.Profile, error) {
	raw, err := os.ReadFile(filepath.Clean(x.file))
	if err != nil {
		return nil, goerr.Wrap(err, "reading profiles file", goerr.V("path", x.file))
	}

	var parsed profileFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, goerr.Wrap(err, "parsing profiles file", goerr.V("path", x.file))
	}
	if len(parsed.Profiles) == 0 {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "profiles file is empty", goerr.V("path", x.file))
	}

	var profiles []*model.Profile
	for _, entry := range parsed.Profiles {
		profile, err := model.NewProfile(entry.URL)
		if err != nil {
			return nil, err
		}
		profile.ChatID = types.ChatID(entry.ChatID)
		profile.Include = entry.Include
		profile.Exclude = entry.Exclude
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (x Profiles) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("list", x.list),
		slog.String("file", x.file),
		slog.String("legacyRepo", x.legacyRepo),
	)
}
