package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mirrorkit.dev/mirrorkit/internal/config"
	"mirrorkit.dev/mirrorkit/internal/github"
	"mirrorkit.dev/mirrorkit/internal/mirror"
	"mirrorkit.dev/mirrorkit/internal/output"
	"mirrorkit.dev/mirrorkit/internal/ratelimit"
	"mirrorkit.dev/mirrorkit/internal/tui"
)

func newMirrorCmd() *cobra.Command {
	var configPath string
	var credentialsPath string
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Mirror every configured project to its repository",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMirror(cmd.Context(), configPath, credentialsPath, noTUI)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultConfigPath(), "path to the project config file")
	cmd.Flags().StringVar(&credentialsPath, "credentials", config.DefaultCredentialsPath(), "path to the credentials file")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "disable the progress display")

	return cmd
}

func runMirror(ctx context.Context, configPath, credentialsPath string, noTUI bool) error {
	splog, err := output.NewSplogWithFile(output.GetLogFilePath())
	if err != nil {
		return err
	}
	defer splog.Close()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	creds, err := config.LoadCredentials(credentialsPath)
	if err != nil {
		return err
	}

	gh, err := github.NewRealClient(ctx, creds.Login, creds.Token, cfg.Owner, ratelimit.NewDefaultLimiter())
	if err != nil {
		return err
	}

	m := mirror.New(cfg, gh, creds, splog)
	m.ConfirmWipe = tui.ConfirmWipe

	projects := m.Projects()
	if len(projects) == 0 {
		splog.Warn("no projects configured in %s", configPath)
		return nil
	}

	items := make([]tui.MirrorItem, len(projects))
	for i, project := range projects {
		items[i] = tui.MirrorItem{ProjectName: project.Name, Status: "pending"}
	}

	if noTUI || !tui.IsTTY() {
		return tui.RunMirrorSimple(items, func(idx int) (string, error) {
			return m.MirrorProject(ctx, projects[idx])
		}, splog)
	}

	// File logging stays on while the TUI owns the console
	splog.SetQuiet(true)
	defer splog.SetQuiet(false)

	return tui.RunMirrorTUI(items, func(idx int) tea.Cmd {
		return func() tea.Msg {
			detail, err := m.MirrorProject(ctx, projects[idx])
			return tui.MirrorResultMsg{Idx: idx, Detail: detail, Error: err}
		}
	})
}
