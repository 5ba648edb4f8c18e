// internal/tui/styles.go
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by every pane.
var (
	cyan   = lipgloss.Color("#00E5FF") // highlights
	green  = lipgloss.Color("#2AFFAA") // successful trades
	red    = lipgloss.Color("#FF5555") // rejections
	yellow = lipgloss.Color("#FFB500") // quotes
	base02 = lipgloss.Color("#262831") // pane background
	base01 = lipgloss.Color("#6C7280") // muted text
	base2  = lipgloss.Color("#ECEFF4") // primary text
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(base01).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(base01)

	valueStyle = lipgloss.NewStyle().
			Foreground(base2)

	selectedOpStyle = lipgloss.NewStyle().
			Foreground(base02).
			Background(cyan).
			Bold(true).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(base01).
		Padding(0, 1)

	quoteStyle = lipgloss.NewStyle().
			Foreground(yellow)

	successStyle = lipgloss.NewStyle().
			Foreground(green)

	errorStyle = lipgloss.NewStyle().
			Foreground(red)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(base01)
)
