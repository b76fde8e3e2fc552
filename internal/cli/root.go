// Package cli wires the mirrorkit commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "mirrorkit",
		Short:   "Mirrorkit mirrors externally-hosted scripts into git repositories",
		Long:    `Mirrorkit mirrors externally-hosted scripts into version-controlled repositories on GitHub, creating the remote repositories as needed and committing directly against the git object model.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	// Add subcommands
	rootCmd.AddCommand(newMirrorCmd())
	rootCmd.AddCommand(newProjectsCmd())

	return rootCmd
}
