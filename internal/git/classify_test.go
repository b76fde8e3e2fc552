package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	mirrorerrors "mirrorkit.dev/mirrorkit/internal/errors"
)

func TestClassifyNetworkError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		require.NoError(t, classifyNetworkError(nil))
	})

	t.Run("transient command failure stays retryable", func(t *testing.T) {
		cause := mirrorerrors.NewGitCommandError("git", []string{"pull"}, "fatal: unable to access remote", errors.New("exit status 128"))

		err := classifyNetworkError(cause)

		require.ErrorIs(t, err, mirrorerrors.ErrGit)
		// Not wrapped as permanent: the retry loop keeps going
		require.Equal(t, cause, err)
	})

	t.Run("merge conflict and ref rejection output is permanent", func(t *testing.T) {
		for _, output := range []string{
			"CONFLICT (content): Merge conflict in mirror.user.js\nAutomatic merge failed; fix conflicts and then commit the result.",
			"error: you need to resolve your current index first\nmirror.user.js: needs merge",
			"! [rejected]        main -> main (non-fast-forward)\nerror: failed to push some refs\nhint: Updates were rejected because the tip of your current branch is behind",
			"! [rejected]        main -> main (fetch first)",
		} {
			cause := mirrorerrors.NewGitCommandError("git", []string{"pull"}, output, errors.New("exit status 1"))

			err := classifyNetworkError(cause)

			require.NotEqual(t, cause, err)
			require.ErrorIs(t, err, mirrorerrors.ErrGit)
		}
	})

	t.Run("non-command errors stay retryable", func(t *testing.T) {
		cause := errors.New("plain failure")
		require.Equal(t, cause, classifyNetworkError(cause))
	})
}
