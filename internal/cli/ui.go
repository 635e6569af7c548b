package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// UI styles
var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	tickerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	headlineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))
)

const version = "1.0.0"

// welcomeBanner is printed once on shell startup.
func welcomeBanner() string {
	banner := bannerStyle.Render(fmt.Sprintf("VolSuite v%s", version))
	hint := dimStyle.Render("Enter 'ticker <symbol>' or 'help' to get started.")
	return banner + "\n" + hint
}

// promptString builds the shell prompt with the wall clock and, when set,
// the active ticker.
func promptString(ticker string, now time.Time) string {
	clock := dimStyle.Render(fmt.Sprintf("[%s]", now.Format("15:04:05")))
	if ticker == "" {
		return clock + " > "
	}
	return clock + " " + tickerStyle.Render(ticker) + " > "
}
