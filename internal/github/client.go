// Package github provides a rate-limited client for the GitHub API,
// covering the repository administration calls mirrorkit needs.
package github

import (
	"context"
)

// RepositoryInfo describes a remote repository.
// This is a simplified struct to avoid coupling to the go-github library.
type RepositoryInfo struct {
	Owner     string
	Name      string
	CloneURL  string
	HasIssues bool
	HasWiki   bool
}

// CreateRepositoryOptions are the settings for a newly created
// remote repository.
type CreateRepositoryOptions struct {
	Description string
	Homepage    string
}

// Client is an interface for the GitHub API interactions mirrorkit
// performs. Every call is routed through the shared rate limiter.
type Client interface {
	// GetRepository looks up a repository by name under the client's
	// owner. A missing repository returns (nil, nil).
	GetRepository(ctx context.Context, name string) (*RepositoryInfo, error)

	// CreateRepository creates a repository under the client's owner.
	CreateRepository(ctx context.Context, name string, opts CreateRepositoryOptions) (*RepositoryInfo, error)

	// DisableProjectFeatures turns off the issue tracker and wiki on
	// an existing repository.
	DisableProjectFeatures(ctx context.Context, name string) error

	// GetOwner returns the account the client operates on.
	GetOwner() string
}
