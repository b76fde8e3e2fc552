// Package errors provides sentinel errors and custom error types for the mirrorkit application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrGit is the umbrella sentinel for every git-layer failure:
	// subprocess exit, invalid repository layout, bad transaction input.
	ErrGit = errors.New("git error")

	// ErrRepositoryInvalid indicates a directory that is not a usable repository
	ErrRepositoryInvalid = errors.New("invalid repository")

	// ErrMissingBlobContent indicates a transaction add with no content
	ErrMissingBlobContent = errors.New("missing blob content")

	// ErrEntryTypeMismatch indicates a tree entry of an unexpected type
	ErrEntryTypeMismatch = errors.New("entry type mismatch")
)

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Output  string
	Err     error
}

// urlCredentials matches a user:password pair embedded in a URL.
var urlCredentials = regexp.MustCompile(`://[^/@\s]+:[^/@\s]+@`)

// redactCredentials masks embedded URL credentials so the error can
// be logged without leaking tokens.
func redactCredentials(s string) string {
	return urlCredentials.ReplaceAllString(s, "://***@")
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %s", redactCredentials(strings.Join(e.Args, " ")))
	}
	if e.Output != "" {
		msg += fmt.Sprintf("\noutput: %s", redactCredentials(e.Output))
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrGit
func (e *GitCommandError) Is(target error) bool {
	return target == ErrGit
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, output string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Output:  output,
		Err:     err,
	}
}

// RepositoryInvalidError represents a repository root that failed validation
type RepositoryInvalidError struct {
	Root   string
	Reason string
}

func (e *RepositoryInvalidError) Error() string {
	return fmt.Sprintf("repository at %s is invalid: %s", e.Root, e.Reason)
}

// Is returns true for ErrGit and ErrRepositoryInvalid
func (e *RepositoryInvalidError) Is(target error) bool {
	return target == ErrGit || target == ErrRepositoryInvalid
}

// NewRepositoryInvalidError creates a new RepositoryInvalidError
func NewRepositoryInvalidError(root, reason string) *RepositoryInvalidError {
	return &RepositoryInvalidError{Root: root, Reason: reason}
}

// MissingBlobContentError represents a transaction add called without content
type MissingBlobContentError struct {
	Name string
}

func (e *MissingBlobContentError) Error() string {
	return fmt.Sprintf("no content supplied for blob %s", e.Name)
}

// Is returns true for ErrGit and ErrMissingBlobContent
func (e *MissingBlobContentError) Is(target error) bool {
	return target == ErrGit || target == ErrMissingBlobContent
}

// NewMissingBlobContentError creates a new MissingBlobContentError
func NewMissingBlobContentError(name string) *MissingBlobContentError {
	return &MissingBlobContentError{Name: name}
}

// EntryTypeMismatchError represents a tree entry whose type differs from the expected one
type EntryTypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *EntryTypeMismatchError) Error() string {
	return fmt.Sprintf("entry %s is a %s, expected a %s", e.Name, e.Actual, e.Expected)
}

// Is returns true for ErrGit and ErrEntryTypeMismatch
func (e *EntryTypeMismatchError) Is(target error) bool {
	return target == ErrGit || target == ErrEntryTypeMismatch
}

// NewEntryTypeMismatchError creates a new EntryTypeMismatchError
func NewEntryTypeMismatchError(name, expected, actual string) *EntryTypeMismatchError {
	return &EntryTypeMismatchError{Name: name, Expected: expected, Actual: actual}
}
