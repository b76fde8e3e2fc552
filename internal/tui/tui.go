// Package tui provides the terminal progress display used while
// mirroring projects.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"mirrorkit.dev/mirrorkit/internal/output"
)

// MirrorItem represents one project being mirrored
type MirrorItem struct {
	ProjectName string
	Status      string // "pending", "mirroring", "done", "error"
	Detail      string // e.g. resulting repository URL
	Error       error
}

// MirrorTUIModel is the bubbletea model for mirror progress
type MirrorTUIModel struct {
	items      []MirrorItem
	currentIdx int
	spinner    spinner.Model
	done       bool
	quitting   bool
	mirrorFunc func(idx int) tea.Cmd
	styles     mirrorStyles
}

type mirrorStyles struct {
	spinnerStyle lipgloss.Style
	doneStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	nameStyle    lipgloss.Style
	detailStyle  lipgloss.Style
	dimStyle     lipgloss.Style
}

// MirrorResultMsg is sent when a single project finishes
type MirrorResultMsg struct {
	Idx    int
	Detail string
	Error  error
}

// NewMirrorTUIModel creates a new mirror progress model
func NewMirrorTUIModel(items []MirrorItem, mirrorFunc func(idx int) tea.Cmd) MirrorTUIModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return MirrorTUIModel{
		items:      items,
		currentIdx: 0,
		spinner:    s,
		mirrorFunc: mirrorFunc,
		styles: mirrorStyles{
			spinnerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
			doneStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			nameStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			detailStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			dimStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		},
	}
}

func (m MirrorTUIModel) Init() tea.Cmd {
	// Start spinner and first project
	if len(m.items) > 0 {
		m.items[0].Status = "mirroring"
		return tea.Batch(m.spinner.Tick, m.mirrorFunc(0))
	}
	return nil
}

func (m MirrorTUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case MirrorResultMsg:
		if msg.Idx < len(m.items) {
			if msg.Error != nil {
				m.items[msg.Idx].Status = "error"
				m.items[msg.Idx].Error = msg.Error
			} else {
				m.items[msg.Idx].Status = "done"
				m.items[msg.Idx].Detail = msg.Detail
			}
		}

		// Projects run strictly one at a time
		m.currentIdx++
		if m.currentIdx < len(m.items) {
			m.items[m.currentIdx].Status = "mirroring"
			return m, tea.Batch(m.spinner.Tick, m.mirrorFunc(m.currentIdx))
		}

		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m MirrorTUIModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, item := range m.items {
		var icon string
		var status string

		switch item.Status {
		case "pending":
			icon = m.styles.dimStyle.Render("○")
			status = m.styles.dimStyle.Render("pending")
		case "mirroring":
			icon = m.spinner.View()
			status = m.styles.spinnerStyle.Render("Mirroring...")
		case "done":
			icon = m.styles.doneStyle.Render("✓")
			status = m.styles.doneStyle.Render("mirrored")
		case "error":
			icon = m.styles.errorStyle.Render("✗")
			status = m.styles.errorStyle.Render("failed")
		}

		name := m.styles.nameStyle.Render(item.ProjectName)
		line := fmt.Sprintf("  %s %s %s", icon, name, status)

		if item.Status == "done" && item.Detail != "" {
			line += " " + m.styles.detailStyle.Render("→ "+item.Detail)
		}
		if item.Status == "error" && item.Error != nil {
			line += " " + m.styles.errorStyle.Render(item.Error.Error())
		}

		b.WriteString(line)
		if i < len(m.items)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")

	if m.done {
		completed := 0
		failed := 0
		for _, item := range m.items {
			if item.Status == "done" {
				completed++
			} else if item.Status == "error" {
				failed++
			}
		}
		b.WriteString("\n")
		if failed > 0 {
			b.WriteString(m.styles.errorStyle.Render(fmt.Sprintf("Completed: %d, Failed: %d", completed, failed)))
		} else {
			b.WriteString(m.styles.doneStyle.Render(fmt.Sprintf("✓ All %d projects mirrored", completed)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// IsTTY returns true if we can use a TTY for the interactive TUI
func IsTTY() bool {
	// First check if stdin/stdout are terminals
	if !((isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))) {
		return false
	}
	// Also try to open /dev/tty to verify it's actually available
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// RunMirrorTUI runs the mirror progress TUI and returns when complete
func RunMirrorTUI(items []MirrorItem, mirrorFunc func(idx int) tea.Cmd) error {
	m := NewMirrorTUIModel(items, mirrorFunc)
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	_, err := p.Run()
	return err
}

// RunMirrorSimple runs a plain sequential version for non-TTY environments
func RunMirrorSimple(items []MirrorItem, mirrorFunc func(idx int) (string, error), splog *output.Splog) error {
	failed := 0
	for i, item := range items {
		splog.Info("  ⋯ Mirroring %s...", item.ProjectName)

		detail, err := mirrorFunc(i)
		if err != nil {
			splog.Error("  ✗ %s: %v", item.ProjectName, err)
			failed++
			continue
		}

		if detail != "" {
			splog.Info("  ✓ %s → %s", item.ProjectName, detail)
		} else {
			splog.Info("  ✓ %s", item.ProjectName)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects failed", failed, len(items))
	}
	return nil
}
