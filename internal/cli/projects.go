package cli

import (
	"github.com/spf13/cobra"

	"mirrorkit.dev/mirrorkit/internal/config"
	"mirrorkit.dev/mirrorkit/internal/output"
)

func newProjectsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the configured projects",
		RunE: func(_ *cobra.Command, _ []string) error {
			splog := output.NewSplog()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			for _, project := range cfg.Projects {
				splog.Info("%s → %s/%s (%s)", project.Name, cfg.Owner, project.RepositoryName(), project.SourceURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultConfigPath(), "path to the project config file")

	return cmd
}
