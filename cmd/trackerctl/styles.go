package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// statusMark renders one cell of the week grid.
func statusMark(s domain.CompletionStatus) string {
	switch s {
	case domain.StatusCompleted:
		return okStyle.Render("●")
	case domain.StatusFailed:
		return failStyle.Render("✗")
	default:
		return mutedStyle.Render("·")
	}
}

func syncStateStyle(s domain.SyncState) lipgloss.Style {
	switch s {
	case domain.SyncIdle:
		return okStyle
	case domain.SyncError:
		return failStyle
	case domain.SyncOffline, domain.SyncSyncing:
		return warnStyle
	default:
		return mutedStyle
	}
}
