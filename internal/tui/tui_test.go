package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force color output for all tests in this file to ensure ANSI escape codes are generated
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func testItems() []MirrorItem {
	return []MirrorItem{
		{ProjectName: "First Script", Status: "pending"},
		{ProjectName: "Second Script", Status: "pending"},
	}
}

func noopMirror(_ int) tea.Cmd {
	return func() tea.Msg { return nil }
}

func TestMirrorTUIModel_Init(t *testing.T) {
	t.Run("starts the first project", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)

		cmd := m.Init()

		require.NotNil(t, cmd)
		require.Equal(t, "mirroring", m.items[0].Status)
		require.Equal(t, "pending", m.items[1].Status)
	})

	t.Run("empty project list yields no work", func(t *testing.T) {
		m := NewMirrorTUIModel(nil, noopMirror)
		require.Nil(t, m.Init())
	})
}

func TestMirrorTUIModel_Update(t *testing.T) {
	t.Run("a result advances to the next project", func(t *testing.T) {
		started := []int{}
		m := NewMirrorTUIModel(testItems(), func(idx int) tea.Cmd {
			started = append(started, idx)
			return func() tea.Msg { return nil }
		})
		m.Init()

		next, cmd := m.Update(MirrorResultMsg{Idx: 0, Detail: "mirrored version 1.0.0"})
		m = next.(MirrorTUIModel)

		require.NotNil(t, cmd)
		require.Equal(t, []int{0, 1}, started)
		require.Equal(t, "done", m.items[0].Status)
		require.Equal(t, "mirrored version 1.0.0", m.items[0].Detail)
		require.Equal(t, "mirroring", m.items[1].Status)
		require.False(t, m.done)
	})

	t.Run("a failed result records the error and continues", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)
		m.Init()

		boom := errors.New("fetch failed")
		next, _ := m.Update(MirrorResultMsg{Idx: 0, Error: boom})
		m = next.(MirrorTUIModel)

		require.Equal(t, "error", m.items[0].Status)
		require.Equal(t, boom, m.items[0].Error)
		require.Equal(t, "mirroring", m.items[1].Status)
	})

	t.Run("the last result finishes the run", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)
		m.Init()

		next, _ := m.Update(MirrorResultMsg{Idx: 0, Detail: "mirrored"})
		m = next.(MirrorTUIModel)
		next, cmd := m.Update(MirrorResultMsg{Idx: 1, Detail: "up to date"})
		m = next.(MirrorTUIModel)

		require.True(t, m.done)
		require.NotNil(t, cmd)
	})

	t.Run("ctrl+c quits", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)

		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		m = next.(MirrorTUIModel)

		require.True(t, m.quitting)
		require.NotNil(t, cmd)
	})
}

func TestMirrorTUIModel_View(t *testing.T) {
	t.Run("shows every project with its status", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)
		m.Init()

		view := m.View()

		require.Contains(t, view, "First Script")
		require.Contains(t, view, "Second Script")
		require.Contains(t, view, "Mirroring...")
		require.Contains(t, view, "pending")
	})

	t.Run("done items show their detail", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)
		m.Init()

		next, _ := m.Update(MirrorResultMsg{Idx: 0, Detail: "mirrored version 1.0.0"})
		m = next.(MirrorTUIModel)

		view := m.View()
		require.Contains(t, view, "✓")
		require.Contains(t, view, "mirrored version 1.0.0")
	})

	t.Run("all-done summary counts successes", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)
		m.Init()

		next, _ := m.Update(MirrorResultMsg{Idx: 0, Detail: "mirrored"})
		m = next.(MirrorTUIModel)
		next, _ = m.Update(MirrorResultMsg{Idx: 1, Detail: "mirrored"})
		m = next.(MirrorTUIModel)

		require.Contains(t, m.View(), "All 2 projects mirrored")
	})

	t.Run("failures appear in the summary", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)
		m.Init()

		next, _ := m.Update(MirrorResultMsg{Idx: 0, Error: errors.New("fetch failed")})
		m = next.(MirrorTUIModel)
		next, _ = m.Update(MirrorResultMsg{Idx: 1, Detail: "mirrored"})
		m = next.(MirrorTUIModel)

		view := m.View()
		require.Contains(t, view, "✗")
		require.Contains(t, view, "fetch failed")
		require.Contains(t, view, "Completed: 1, Failed: 1")
	})

	t.Run("renders nothing after quitting", func(t *testing.T) {
		m := NewMirrorTUIModel(testItems(), noopMirror)

		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		m = next.(MirrorTUIModel)

		require.Empty(t, m.View())
	})
}
