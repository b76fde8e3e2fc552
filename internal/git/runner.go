// Package git wraps a local git repository: it shells out to the
// system git binary for network and porcelain operations and uses
// go-git for direct object-model access when building commits.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	mirrorerrors "mirrorkit.dev/mirrorkit/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// CommandRunner handles execution of git commands in a fixed working
// directory. Execution is synchronous; the caller blocks until the
// child process exits.
type CommandRunner struct {
	workingDir string
}

// NewCommandRunner creates a new CommandRunner rooted at workingDir.
// Pass an empty string to run from the current directory.
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir}
}

// WorkingDir returns the directory commands run in.
func (r *CommandRunner) WorkingDir() string {
	return r.workingDir
}

// Run executes a git command and returns its combined stdout+stderr
// output, trimmed. A non-zero exit status is surfaced as a
// *errors.GitCommandError carrying the command line and the output.
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	return r.run(ctx, nil, args...)
}

// RunWithEnv executes a git command with the given environment
// overlay appended to the parent environment. The overlay applies to
// that child invocation only; the parent process environment is never
// mutated.
func (r *CommandRunner) RunWithEnv(ctx context.Context, env []string, args ...string) (string, error) {
	return r.run(ctx, env, args...)
}

func (r *CommandRunner) run(ctx context.Context, env []string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", mirrorerrors.NewGitCommandError("git", args, combined.String(), ctx.Err())
		}
		return "", mirrorerrors.NewGitCommandError("git", args, combined.String(), err)
	}
	return strings.TrimSpace(combined.String()), nil
}
