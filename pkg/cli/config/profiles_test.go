package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/relnote/pkg/domain/types"
)

func TestProfilesBuild(t *testing.T) {
	t.Run("comma-separated list", func(t *testing.T) {
		cfg := Profiles{list: "https://github.com/torvalds, golang"}
		profiles := gt.R1(cfg.Build()).NoError(t)
		gt.V(t, len(profiles)).Equal(2)
		gt.V(t, profiles[0].Account).Equal("torvalds")
		gt.V(t, profiles[1].Account).Equal("golang")
	})

	t.Run("structured file beats the list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yml")
		gt.NoError(t, os.WriteFile(path, []byte(`
profiles:
  - url: https://github.com/octocat
    chat_id: "-100555"
    include: ["app-*"]
    exclude: ["*-docs"]
  - url: golang
`), 0o600))

		cfg := Profiles{list: "ignored", file: path}
		profiles := gt.R1(cfg.Build()).NoError(t)
		gt.V(t, len(profiles)).Equal(2)
		gt.V(t, profiles[0].Account).Equal("octocat")
		gt.V(t, profiles[0].ChatID).Equal(types.ChatID("-100555"))
		gt.V(t, profiles[0].Include).Equal([]string{"app-*"})
		gt.V(t, profiles[0].Exclude).Equal([]string{"*-docs"})
		gt.V(t, profiles[1].Account).Equal("golang")
	})

	t.Run("empty profiles file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yml")
		gt.NoError(t, os.WriteFile(path, []byte("profiles: []\n"), 0o600))
		gt.R1(Profiles{file: path}.Build()).Error(t)
	})

	t.Run("legacy repo becomes a single-repository profile", func(t *testing.T) {
		cfg := Profiles{legacyRepo: "octocat/hello"}
		profiles := gt.R1(cfg.Build()).NoError(t)
		gt.V(t, len(profiles)).Equal(1)
		gt.V(t, profiles[0].Account).Equal("octocat")
		gt.V(t, profiles[0].Include).Equal([]string{"hello"})
	})

	t.Run("malformed legacy repo is rejected", func(t *testing.T) {
		gt.R1(Profiles{legacyRepo: "just-a-name"}.Build()).Error(t)
	})

	t.Run("nothing configured is an error", func(t *testing.T) {
		gt.R1(Profiles{}.Build()).Error(t)
	})
}

func TestSplitList(t *testing.T) {
	gt.V(t, splitList("a, b ,,c")).Equal([]string{"a", "b", "c"})
	gt.V(t, splitList("")).Equal([]string(nil))
}
