package github_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"mirrorkit.dev/mirrorkit/internal/github"
	"mirrorkit.dev/mirrorkit/internal/ratelimit"
)

func TestNewRealClient(t *testing.T) {
	t.Run("rejects an empty token", func(t *testing.T) {
		_, err := github.NewRealClient(context.Background(), "bot", "", "", ratelimit.NewDefaultLimiter())
		require.ErrorContains(t, err, "token")
	})

	t.Run("owner defaults to the login", func(t *testing.T) {
		client, err := github.NewRealClient(context.Background(), "bot", "token", "", nil)
		require.NoError(t, err)
		require.Equal(t, "bot", client.GetOwner())
	})

	t.Run("explicit owner wins", func(t *testing.T) {
		client, err := github.NewRealClient(context.Background(), "bot", "token", "mirror-org", nil)
		require.NoError(t, err)
		require.Equal(t, "mirror-org", client.GetOwner())
	})
}

func TestMockClient(t *testing.T) {
	ctx := context.Background()

	t.Run("missing repository is nil, not an error", func(t *testing.T) {
		mock := github.NewMockClient("owner")

		repo, err := mock.GetRepository(ctx, "missing")

		require.NoError(t, err)
		require.Nil(t, repo)
		require.Equal(t, []string{"missing"}, mock.GetCalls)
	})

	t.Run("create then get round trip", func(t *testing.T) {
		mock := github.NewMockClient("owner")

		created, err := mock.CreateRepository(ctx, "mirror", github.CreateRepositoryOptions{})
		require.NoError(t, err)
		require.Equal(t, "mirror", created.Name)
		require.True(t, created.HasIssues)

		require.NoError(t, mock.DisableProjectFeatures(ctx, "mirror"))

		repo, err := mock.GetRepository(ctx, "mirror")
		require.NoError(t, err)
		require.False(t, repo.HasIssues)
		require.False(t, repo.HasWiki)
	})

	t.Run("injected errors surface", func(t *testing.T) {
		mock := github.NewMockClient("owner")
		mock.GetErr = errors.New("api unavailable")

		_, err := mock.GetRepository(ctx, "any")
		require.ErrorContains(t, err, "api unavailable")
	})
}
