package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	mirrorerrors "mirrorkit.dev/mirrorkit/internal/errors"
	"mirrorkit.dev/mirrorkit/internal/retry"
)

// Repository is a handle on a local git repository, bare or not. It
// composes a CommandRunner for operations that go through the git
// binary and a go-git handle for direct object access. A Repository
// is not safe for concurrent use; drive it from one flow at a time.
type Repository struct {
	root    string
	bare    bool
	runner  *CommandRunner
	retrier *retry.Policy
	repo    *gogit.Repository
}

// CloneOptions controls how a repository is cloned.
type CloneOptions struct {
	// Bare clones without a working tree checkout.
	Bare bool
	// Retry overrides the policy governing the network operation.
	// Nil selects retry.DefaultPolicy.
	Retry *retry.Policy
}

// InitOptions controls how a repository is initialized.
type InitOptions struct {
	// Bare initializes without a working tree checkout.
	Bare bool
}

// permanentFailureMarkers are output fragments that identify a failed
// pull or push as a merge or ref problem rather than a transient
// network error. Anything matching these is never retried: a merge
// conflict or rejected ref fails the same way on every attempt.
var permanentFailureMarkers = []string{
	"CONFLICT (",
	"Automatic merge failed",
	"Merge conflict",
	"needs merge",
	"non-fast-forward",
	"fetch first",
	"[rejected]",
}

// Clone clones source into root and returns a validated handle. The
// clone subprocess runs from the parent of root since root itself may
// not exist yet. The network operation is retry-governed.
func Clone(ctx context.Context, source, root string, opts CloneOptions) (*Repository, error) {
	retrier := opts.Retry
	if retrier == nil {
		retrier = retry.DefaultPolicy()
	}

	parent := filepath.Dir(root)
	runner := NewCommandRunner(parent)

	args := []string{"clone", source, root}
	if opts.Bare {
		args = append(args, "--bare")
	}

	err := retrier.Do(ctx, fmt.Sprintf("clone %s", source), func() error {
		_, err := runner.Run(ctx, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", source, err)
	}

	return open(root, opts.Bare, retrier)
}

// Init initializes a repository at root. When root already exists the
// init subprocess is skipped entirely; the handle just attaches to
// whatever is there, so initializing twice is harmless.
func Init(root string, opts InitOptions) (*Repository, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", root, err)
		}

		args := []string{"init"}
		if opts.Bare {
			args = append(args, "--bare")
		}

		if _, err := NewCommandRunner(root).Run(context.Background(), args...); err != nil {
			return nil, err
		}
	}

	return open(root, opts.Bare, retry.DefaultPolicy())
}

// Open attaches to an existing repository at root without creating
// anything.
func Open(root string, bare bool) (*Repository, error) {
	return open(root, bare, retry.DefaultPolicy())
}

// open validates the on-disk layout and builds the handle. Validation
// is unconditional: it is the only defense against silently operating
// on a corrupt or non-git directory.
func open(root string, bare bool, retrier *retry.Policy) (*Repository, error) {
	if err := validateLayout(root, bare); err != nil {
		return nil, err
	}

	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, mirrorerrors.NewRepositoryInvalidError(root, err.Error())
	}

	return &Repository{
		root:    root,
		bare:    bare,
		runner:  NewCommandRunner(root),
		retrier: retrier,
		repo:    repo,
	}, nil
}

// validateLayout checks that root exists and contains the expected
// object store: objects/ for bare repositories, .git/objects/
// otherwise. It performs no filesystem mutation.
func validateLayout(root string, bare bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return mirrorerrors.NewRepositoryInvalidError(root, "directory does not exist")
	}
	if !info.IsDir() {
		return mirrorerrors.NewRepositoryInvalidError(root, "not a directory")
	}

	objects := filepath.Join(root, "objects")
	if !bare {
		objects = filepath.Join(root, ".git", "objects")
	}

	if info, err := os.Stat(objects); err != nil || !info.IsDir() {
		return mirrorerrors.NewRepositoryInvalidError(root, fmt.Sprintf("missing object store %s", objects))
	}

	return nil
}

// Root returns the repository root directory.
func (r *Repository) Root() string {
	return r.root
}

// Bare reports whether the repository has no working tree.
func (r *Repository) Bare() bool {
	return r.bare
}

// RemoteAdd registers a remote. Local metadata operation, no retry.
func (r *Repository) RemoteAdd(ctx context.Context, name, url string) error {
	_, err := r.runner.Run(ctx, "remote", "add", name, url)
	return err
}

// RemoteRemove removes a remote. Local metadata operation, no retry.
func (r *Repository) RemoteRemove(ctx context.Context, name string) error {
	_, err := r.runner.Run(ctx, "remote", "rm", name)
	return err
}

// Pull fetches and merges with --no-rebase so merge semantics stay
// predictable across retries. Failures whose output carries a
// permanent-failure marker fail fast; everything else is treated as
// transient and retried.
func (r *Repository) Pull(ctx context.Context, args ...string) error {
	pullArgs := append([]string{"pull", "--no-rebase"}, args...)

	return r.retrier.Do(ctx, "pull", func() error {
		_, err := r.runner.Run(ctx, pullArgs...)
		return classifyNetworkError(err)
	})
}

// Push publishes local refs to the remote. Retry-governed.
func (r *Repository) Push(ctx context.Context, args ...string) error {
	pushArgs := append([]string{"push"}, args...)

	return r.retrier.Do(ctx, "push", func() error {
		_, err := r.runner.Run(ctx, pushArgs...)
		return classifyNetworkError(err)
	})
}

// CreateTag creates an annotated tag pointing at HEAD. go-git cannot
// author annotated tags, so this shells out and injects the tagger
// identity through the committer environment variables for the
// duration of that one child process.
func (r *Repository) CreateTag(ctx context.Context, name, message string, tagger Identity) error {
	tagger = tagger.withDefaults()

	_, err := r.runner.RunWithEnv(ctx, tagger.committerEnv(), "tag", "-a", name, "-m", message)
	return err
}

// FindTag looks up a tag by name. A missing tag is not an error: the
// result is the empty string.
func (r *Repository) FindTag(ctx context.Context, name string) (string, error) {
	out, err := r.runner.Run(ctx, "tag", "-l", name)
	if err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return "", nil
	}
	return trimmed, nil
}

// classifyNetworkError wraps failures that cannot be cured by another
// attempt so the retry loop fails fast on them.
func classifyNetworkError(err error) error {
	if err == nil {
		return nil
	}

	var cmdErr *mirrorerrors.GitCommandError
	if errors.As(err, &cmdErr) {
		for _, marker := range permanentFailureMarkers {
			if strings.Contains(cmdErr.Output, marker) {
				return retry.Permanent(err)
			}
		}
	}

	return err
}
