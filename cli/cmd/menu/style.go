package menu

import "github.com/charmbracelet/lipgloss"

// Styles.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	menuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)
	choiceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	commentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)
