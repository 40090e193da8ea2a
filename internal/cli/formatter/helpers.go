package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// HumanDate returns a compact absolute date such as "Mar 4, 2024".
func HumanDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// OptionalDate renders a nullable date, or a dim placeholder.
func OptionalDate(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return t.Format(time.DateOnly)
}

// DateRange renders "start → end (Nd)" for a task, handling milestones and
// missing dates.
func DateRange(t *domain.Task) string {
	switch {
	case t.PlannedStart == nil:
		return Dim("undated")
	case t.IsMilestone():
		return t.PlannedStart.Format(time.DateOnly)
	case t.PlannedEnd == nil:
		return t.PlannedStart.Format(time.DateOnly) + " → " + Dim("?")
	}
	return fmt.Sprintf("%s → %s %s",
		t.PlannedStart.Format(time.DateOnly),
		t.PlannedEnd.Format(time.DateOnly),
		Dim(fmt.Sprintf("(%s)", Days(t.DurationDays()))))
}

// Days formats a day count, e.g. "1 day", "-3 days".
func Days(n int) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d day", n)
	}
	return fmt.Sprintf("%d days", n)
}

// Lag formats a dependency lag as "+2d", "-1d" or "".
func Lag(days int) string {
	switch {
	case days > 0:
		return fmt.Sprintf("+%dd", days)
	case days < 0:
		return fmt.Sprintf("%dd", days)
	}
	return ""
}

// StatusPill returns a colored status indicator for project status.
func StatusPill(status domain.ProjectStatus) string {
	switch status {
	case domain.ProjectActive:
		return StyleGreen.Render("● Active")
	case domain.ProjectOnHold:
		return StyleYellow.Render("○ On hold")
	case domain.ProjectCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.ProjectArchived:
		return StyleDim.Render("✖ Archived")
	default:
		return StyleDim.Render(string(status))
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Truncate shortens s to at most width display cells, ending with "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// PadRight pads s with spaces to width display cells.
func PadRight(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
