package ui

import "github.com/charmbracelet/lipgloss"

// stylesheet groups the wizard's lipgloss styles by message role. Every
// view pulls from the same four roles so the TUI reads consistently from
// folder pick through export result.
type stylesheet struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
}

var styles = stylesheet{
	title: fg("#AF87FF").Bold(true).MarginBottom(1),
	ok:    fg("#5FD787").Bold(true),
	err:   fg("#D75F5F").Bold(true),
	warn:  fg("#D7AF5F"),
}

func fg(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
