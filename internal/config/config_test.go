package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mirrorkit.dev/mirrorkit/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("parses a full config", func(t *testing.T) {
		path := writeFile(t, "config.json", `{
			"workdir": "/tmp/mirrors",
			"owner": "mirror-org",
			"authorName": "Mirror Bot",
			"authorEmail": "bot@example.com",
			"projects": [
				{"name": "My Script", "sourceUrl": "https://example.com/my.user.js"}
			]
		}`)

		cfg, err := config.Load(path)

		require.NoError(t, err)
		require.Equal(t, "/tmp/mirrors", cfg.Workdir)
		require.Equal(t, "mirror-org", cfg.Owner)
		require.Len(t, cfg.Projects, 1)
		require.Equal(t, "My Script", cfg.Projects[0].Name)
	})

	t.Run("defaults the workdir", func(t *testing.T) {
		path := writeFile(t, "config.json", `{"projects": []}`)

		cfg, err := config.Load(path)

		require.NoError(t, err)
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		require.Equal(t, filepath.Join(home, ".mirrorkit", "repos"), cfg.Workdir)
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})

	t.Run("fails on malformed JSON", func(t *testing.T) {
		path := writeFile(t, "config.json", `{`)
		_, err := config.Load(path)
		require.Error(t, err)
	})
}

func TestLoadCredentials(t *testing.T) {
	t.Run("parses login and token", func(t *testing.T) {
		path := writeFile(t, "credentials.json", `{"login": "bot", "token": "secret"}`)

		creds, err := config.LoadCredentials(path)

		require.NoError(t, err)
		require.Equal(t, "bot", creds.Login)
		require.Equal(t, "secret", creds.Token)
	})

	t.Run("rejects an empty token", func(t *testing.T) {
		path := writeFile(t, "credentials.json", `{"login": "bot"}`)

		_, err := config.LoadCredentials(path)

		require.ErrorContains(t, err, "token must be set")
	})
}

func TestDefaultPaths(t *testing.T) {
	t.Run("environment overrides config path", func(t *testing.T) {
		t.Setenv("MIRRORKIT_CONFIG", "/custom/config.json")
		require.Equal(t, "/custom/config.json", config.DefaultConfigPath())
	})

	t.Run("environment overrides credentials path", func(t *testing.T) {
		t.Setenv("MIRRORKIT_CREDENTIALS", "/custom/credentials.json")
		require.Equal(t, "/custom/credentials.json", config.DefaultCredentialsPath())
	})
}

func TestProjectDefaults(t *testing.T) {
	t.Run("repository name falls back to a slug", func(t *testing.T) {
		p := config.Project{Name: "My Cool Script!"}
		require.Equal(t, "my-cool-script", p.RepositoryName())

		p.Repository = "explicit-name"
		require.Equal(t, "explicit-name", p.RepositoryName())
	})

	t.Run("tracked file name derives from the repository", func(t *testing.T) {
		p := config.Project{Name: "My Script"}
		require.Equal(t, "my-script.user.js", p.TrackedFileName())

		p.FileName = "custom.user.js"
		require.Equal(t, "custom.user.js", p.TrackedFileName())
	})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Simple":              "simple",
		"Two Words":           "two-words",
		"lots   of   spaces":  "lots-of-spaces",
		"Trailing Symbols!!!": "trailing-symbols",
		"__Leading":           "leading",
		"MiXeD CaSe 42":       "mixed-case-42",
	}

	for input, want := range cases {
		require.Equal(t, want, config.Slugify(input), "input %q", input)
	}
}
