package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"mirrorkit.dev/mirrorkit/internal/ratelimit"
)

// RealClient implements Client using the real GitHub API. Outbound
// calls go through the limiter so the process stays under the
// per-minute quota; the counter is shared across all calls made by
// this client.
type RealClient struct {
	client  *github.Client
	limiter *ratelimit.Limiter
	login   string
	owner   string
}

// NewRealClient creates a client authenticating with token and
// operating on repositories under owner. If owner is empty the
// authenticated login is used.
func NewRealClient(ctx context.Context, login, token, owner string, limiter *ratelimit.Limiter) (*RealClient, error) {
	if token == "" {
		return nil, fmt.Errorf("empty GitHub token")
	}
	if limiter == nil {
		limiter = ratelimit.NewDefaultLimiter()
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if owner == "" {
		owner = login
	}

	return &RealClient{
		client:  client,
		limiter: limiter,
		login:   login,
		owner:   owner,
	}, nil
}

// GetOwner returns the account the client operates on
func (c *RealClient) GetOwner() string {
	return c.owner
}

// GetRepository looks up a repository by name. A 404 is not an
// error: the result is (nil, nil).
func (c *RealClient) GetRepository(ctx context.Context, name string) (*RepositoryInfo, error) {
	var repo *github.Repository
	var resp *github.Response

	err := c.limiter.Call(func() error {
		var err error
		repo, resp, err = c.client.Repositories.Get(ctx, c.owner, name)
		return err
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", c.owner, name, err)
	}

	return toRepositoryInfo(repo), nil
}

// CreateRepository creates a repository under the client's owner.
func (c *RealClient) CreateRepository(ctx context.Context, name string, opts CreateRepositoryOptions) (*RepositoryInfo, error) {
	// Creating under the authenticated user requires an empty org
	org := c.owner
	if org == c.login {
		org = ""
	}

	req := &github.Repository{
		Name: github.String(name),
	}
	if opts.Description != "" {
		req.Description = github.String(opts.Description)
	}
	if opts.Homepage != "" {
		req.Homepage = github.String(opts.Homepage)
	}

	var repo *github.Repository
	err := c.limiter.Call(func() error {
		var err error
		repo, _, err = c.client.Repositories.Create(ctx, org, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repository %s/%s: %w", c.owner, name, err)
	}

	return toRepositoryInfo(repo), nil
}

// DisableProjectFeatures turns off the issue tracker and wiki on a
// repository. Mirrored repositories track their upstream project, so
// neither feature should accept contributions.
func (c *RealClient) DisableProjectFeatures(ctx context.Context, name string) error {
	req := &github.Repository{
		HasIssues: github.Bool(false),
		HasWiki:   github.Bool(false),
	}

	err := c.limiter.Call(func() error {
		_, _, err := c.client.Repositories.Edit(ctx, c.owner, name, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to edit repository %s/%s: %w", c.owner, name, err)
	}

	return nil
}

func toRepositoryInfo(repo *github.Repository) *RepositoryInfo {
	if repo == nil {
		return nil
	}

	info := &RepositoryInfo{
		Name:      repo.GetName(),
		CloneURL:  repo.GetCloneURL(),
		HasIssues: repo.GetHasIssues(),
		HasWiki:   repo.GetHasWiki(),
	}
	if repo.Owner != nil {
		info.Owner = repo.Owner.GetLogin()
	}
	return info
}
