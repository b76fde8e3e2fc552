// Package mirror drives the mirroring of externally-hosted scripts
// into their remote repositories: one project at a time, fetch the
// script, rewrite the tracked content in a single commit, tag new
// versions, push.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mirrorkit.dev/mirrorkit/internal/config"
	"mirrorkit.dev/mirrorkit/internal/git"
	"mirrorkit.dev/mirrorkit/internal/github"
	"mirrorkit.dev/mirrorkit/internal/output"
)

// DefaultFetchTimeout bounds a single script download.
const DefaultFetchTimeout = 2 * time.Minute

// Mirrorer mirrors the configured projects. Operations are
// sequential; one repository is processed at a time.
type Mirrorer struct {
	cfg    *config.Config
	gh     github.Client
	creds  *config.Credentials
	splog  *output.Splog
	client *http.Client

	// ConfirmWipe decides whether an existing, unusable target
	// directory may be removed and re-cloned. When nil the project
	// fails instead.
	ConfirmWipe func(dir string) (bool, error)
}

// New creates a Mirrorer for the given configuration.
func New(cfg *config.Config, gh github.Client, creds *config.Credentials, splog *output.Splog) *Mirrorer {
	return &Mirrorer{
		cfg:    cfg,
		gh:     gh,
		creds:  creds,
		splog:  splog,
		client: &http.Client{Timeout: DefaultFetchTimeout},
	}
}

// Projects returns the configured project list.
func (m *Mirrorer) Projects() []config.Project {
	return m.cfg.Projects
}

// MirrorAll mirrors every configured project in order. A failing
// project does not stop the rest; the first error is reported after
// the full pass.
func (m *Mirrorer) MirrorAll(ctx context.Context) error {
	var firstErr error
	for _, project := range m.cfg.Projects {
		detail, err := m.MirrorProject(ctx, project)
		if err != nil {
			m.splog.Error("%s: %v", project.Name, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to mirror %s: %w", project.Name, err)
			}
			continue
		}
		m.splog.Info("%s: %s", project.Name, detail)
	}
	return firstErr
}

// MirrorProject mirrors one project and returns a short human-readable
// result description.
func (m *Mirrorer) MirrorProject(ctx context.Context, project config.Project) (string, error) {
	repoName := project.RepositoryName()

	remote, err := m.ensureRemoteRepository(ctx, project, repoName)
	if err != nil {
		return "", err
	}

	repo, err := m.ensureLocalClone(ctx, remote, repoName)
	if err != nil {
		return "", err
	}

	script, err := m.fetchScript(ctx, project.SourceURL)
	if err != nil {
		return "", err
	}

	changed, err := m.commitScript(repo, project, script)
	if err != nil {
		return "", err
	}

	version := ScriptVersion(script)
	tagged, err := m.tagVersion(ctx, repo, version)
	if err != nil {
		return "", err
	}

	if !changed && !tagged {
		return "up to date", nil
	}

	if err := repo.Push(ctx, "origin", "HEAD", "--tags"); err != nil {
		return "", err
	}

	if version != "" {
		return fmt.Sprintf("mirrored version %s", version), nil
	}
	return "mirrored", nil
}

// ensureRemoteRepository looks up the remote repository, creating it
// with its issue tracker and wiki disabled when it does not exist.
func (m *Mirrorer) ensureRemoteRepository(ctx context.Context, project config.Project, repoName string) (*github.RepositoryInfo, error) {
	remote, err := m.gh.GetRepository(ctx, repoName)
	if err != nil {
		return nil, err
	}
	if remote != nil {
		return remote, nil
	}

	m.splog.Info("Creating repository %s/%s", m.gh.GetOwner(), repoName)

	remote, err = m.gh.CreateRepository(ctx, repoName, github.CreateRepositoryOptions{
		Description: project.Description,
		Homepage:    project.Homepage,
	})
	if err != nil {
		return nil, err
	}

	if err := m.gh.DisableProjectFeatures(ctx, repoName); err != nil {
		return nil, err
	}

	return remote, nil
}

// ensureLocalClone opens the local clone for the project, cloning it
// when missing. An existing directory that fails repository
// validation is only wiped after explicit confirmation.
func (m *Mirrorer) ensureLocalClone(ctx context.Context, remote *github.RepositoryInfo, repoName string) (*git.Repository, error) {
	dest := filepath.Join(m.cfg.Workdir, repoName)

	if _, err := os.Stat(dest); err == nil {
		repo, err := git.Open(dest, false)
		if err == nil {
			return repo, nil
		}

		if m.ConfirmWipe == nil {
			return nil, err
		}
		confirmed, confirmErr := m.ConfirmWipe(dest)
		if confirmErr != nil {
			return nil, confirmErr
		}
		if !confirmed {
			return nil, err
		}
		if err := os.RemoveAll(dest); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", dest, err)
		}
	}

	if err := os.MkdirAll(m.cfg.Workdir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workdir: %w", err)
	}

	return git.Clone(ctx, m.remoteURL(remote, repoName), dest, git.CloneOptions{})
}

// remoteURL builds the clone/push URL, embedding the credential pair
// so push does not depend on ambient git credential helpers.
func (m *Mirrorer) remoteURL(remote *github.RepositoryInfo, repoName string) string {
	if m.creds != nil && m.creds.Token != "" {
		return fmt.Sprintf("https://%s:%s@github.com/%s/%s.git", m.creds.Login, m.creds.Token, m.gh.GetOwner(), repoName)
	}
	if remote != nil && remote.CloneURL != "" {
		return remote.CloneURL
	}
	return fmt.Sprintf("https://github.com/%s/%s.git", m.gh.GetOwner(), repoName)
}

// fetchScript downloads the script content.
func (m *Mirrorer) fetchScript(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
	}

	return readAllBody(resp)
}

// commitScript resets the tracked content and writes the script as
// the repository's single tracked file, in one commit. Returns false
// without committing when the stored content already matches.
func (m *Mirrorer) commitScript(repo *git.Repository, project config.Project, script []byte) (bool, error) {
	fileName := project.TrackedFileName()
	author := git.Identity{Name: m.cfg.AuthorName, Email: m.cfg.AuthorEmail}

	changed := false
	message := commitMessage(project, ScriptVersion(script))

	err := repo.Commit(message, author, nil, func(tx *git.Transaction) error {
		current, err := tx.Entry(fileName)
		if err != nil {
			return err
		}
		if current != nil && current.Type == git.BlobEntry &&
			bytes.Equal(current.Content, script) && len(tx.Entries()) == 1 {
			return errUnchanged
		}

		tx.EmptyIndex()
		if err := tx.Add(fileName, script); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err == errUnchanged {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return changed, nil
}

// tagVersion creates an annotated tag for version when one does not
// exist yet. Returns true when a tag was created.
func (m *Mirrorer) tagVersion(ctx context.Context, repo *git.Repository, version string) (bool, error) {
	if version == "" {
		return false, nil
	}

	tagName := "v" + version

	existing, err := repo.FindTag(ctx, tagName)
	if err != nil {
		return false, err
	}
	if existing != "" {
		return false, nil
	}

	tagger := git.Identity{Name: m.cfg.AuthorName, Email: m.cfg.AuthorEmail}
	if err := repo.CreateTag(ctx, tagName, fmt.Sprintf("Version %s", version), tagger); err != nil {
		return false, err
	}
	return true, nil
}

// errUnchanged aborts the transaction scope when the mirrored content
// is already current; no commit is produced.
var errUnchanged = fmt.Errorf("content unchanged")

func commitMessage(project config.Project, version string) string {
	if version != "" {
		return fmt.Sprintf("Update %s to version %s", project.Name, version)
	}
	return fmt.Sprintf("Update %s", project.Name)
}
