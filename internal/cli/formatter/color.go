package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
	ColorCursor = lipgloss.Color("#504945")
)

// Predefined lipgloss styles.
var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleCursor     = lipgloss.NewStyle().Background(ColorCursor)
)

// KindStyle returns the bar style for a task kind.
func KindStyle(kind domain.TaskKind) lipgloss.Style {
	switch kind {
	case domain.KindPhase:
		return StylePurple
	case domain.KindMilestone:
		return StyleYellow
	default:
		return StyleBlue
	}
}

// KindBadge returns a short colored label such as "◆ milestone".
func KindBadge(kind domain.TaskKind) string {
	switch kind {
	case domain.KindPhase:
		return StylePurple.Render("▣ phase")
	case domain.KindMilestone:
		return StyleYellow.Render("◆ milestone")
	case domain.KindTask:
		return StyleBlue.Render("■ task")
	default:
		return StyleDim.Render(string(kind))
	}
}

// ConstraintPill renders the outcome of a dependency date check.
func ConstraintPill(status gantt.ConstraintStatus) string {
	switch status {
	case gantt.ConstraintMet:
		return StyleGreen.Render("✔ met")
	case gantt.ConstraintViolated:
		return StyleRed.Render("✖ violated")
	default:
		return StyleDim.Render("? unknown")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
