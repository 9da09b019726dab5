package main

import "github.com/charmbracelet/lipgloss"

type theme struct {
	Header   lipgloss.Style
	Frame    lipgloss.Style
	Panel    lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Danger   lipgloss.Style
	Selected lipgloss.Style
	Label    lipgloss.Style
}

func defaultTheme() theme {
	accent := lipgloss.Color("#00AFFF")
	secondary := lipgloss.Color("#7D7D7D")
	success := lipgloss.Color("#00D787")
	danger := lipgloss.Color("#FF5F5F")

	return theme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondary).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(secondary),
		Accent: lipgloss.NewStyle().
			Foreground(accent),
		Success: lipgloss.NewStyle().
			Foreground(success),
		Danger: lipgloss.NewStyle().
			Foreground(danger),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent),
		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(secondary),
	}
}
