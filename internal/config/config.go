// Package config provides mirrorkit configuration management,
// including the mirrored project list and credential loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Project describes one externally-hosted script to mirror.
type Project struct {
	// Name is the human-readable project name.
	Name string `json:"name"`
	// SourceURL is where the script content is fetched from.
	SourceURL string `json:"sourceUrl"`
	// Repository is the remote repository name. Defaults to a
	// slug derived from Name.
	Repository string `json:"repository,omitempty"`
	// FileName is the tracked file name inside the repository.
	// Defaults to "<repository>.user.js".
	FileName string `json:"fileName,omitempty"`
	// Description and Homepage are applied when the remote
	// repository is first created.
	Description string `json:"description,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
}

// RepositoryName returns the remote repository name for the project.
func (p Project) RepositoryName() string {
	if p.Repository != "" {
		return p.Repository
	}
	return Slugify(p.Name)
}

// TrackedFileName returns the file name the script is stored under.
func (p Project) TrackedFileName() string {
	if p.FileName != "" {
		return p.FileName
	}
	return p.RepositoryName() + ".user.js"
}

// Config is the top-level mirrorkit configuration.
type Config struct {
	// Workdir holds the local clones, one subdirectory per project.
	Workdir string `json:"workdir,omitempty"`
	// Owner is the GitHub account the mirrors live under.
	Owner string `json:"owner,omitempty"`
	// AuthorName and AuthorEmail sign the mirror commits.
	AuthorName  string `json:"authorName,omitempty"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	// Projects is the list of scripts to mirror.
	Projects []Project `json:"projects"`
}

// Credentials is the token/login pair used against the platform API.
type Credentials struct {
	Login string `json:"login"`
	Token string `json:"token"`
}

// DefaultConfigPath returns the path of the mirrorkit config file,
// ~/.mirrorkit/config.json unless MIRRORKIT_CONFIG overrides it.
func DefaultConfigPath() string {
	if customPath := os.Getenv("MIRRORKIT_CONFIG"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "mirrorkit.json"
	}
	return filepath.Join(homeDir, ".mirrorkit", "config.json")
}

// DefaultCredentialsPath returns the path of the credentials file,
// ~/.mirrorkit/credentials.json unless MIRRORKIT_CREDENTIALS
// overrides it.
func DefaultCredentialsPath() string {
	if customPath := os.Getenv("MIRRORKIT_CREDENTIALS"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(homeDir, ".mirrorkit", "credentials.json")
}

// Load reads the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Workdir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.Workdir = filepath.Join(homeDir, ".mirrorkit", "repos")
	}

	return &cfg, nil
}

// LoadCredentials reads the credentials file at path.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials %s: %w", path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}

	if creds.Token == "" {
		return nil, fmt.Errorf("credentials %s: token must be set", path)
	}

	return &creds, nil
}

// Slugify lowercases a project name and replaces every run of
// non-alphanumeric characters with a single dash.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
