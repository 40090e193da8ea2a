package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// ProjectSummary holds the derived figures shown by `project show`.
type ProjectSummary struct {
	Project      *domain.Project
	Tasks        int
	Milestones   int
	Dependencies int
	Progress     int
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	Roots        string // rendered top-level tree
}

// FormatProjectList renders a styled project list inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	headers := []string{"ID", "NAME", "CLIENT", "STATUS", "START", "TARGET"}
	rows := make([][]string, 0, len(projects))

	for _, p := range projects {
		client := p.Client
		if strings.TrimSpace(client) == "" {
			client = Dim("--")
		}
		rows = append(rows, []string{
			p.DisplayID(),
			Bold(p.Name),
			client,
			StatusPill(p.Status),
			p.StartDate.Format(time.DateOnly),
			OptionalDate(p.TargetDate),
		})
	}

	return RenderBox("Obras", RenderTable(headers, rows))
}

// FormatProjectShow renders a project card: metadata on the left, schedule
// figures and the top-level WBS on the right.
func FormatProjectShow(s ProjectSummary) string {
	p := s.Project
	var left strings.Builder
	left.WriteString(StyleBold.Render(p.Name) + "\n")
	if p.Client != "" {
		left.WriteString(StylePurple.Render(p.Client) + "\n")
	}
	left.WriteString("\n")
	left.WriteString(fmt.Sprintf("%s  %s\n", Dim("STATUS  "), StatusPill(p.Status)))
	left.WriteString(fmt.Sprintf("%s  %s\n", Dim("ID      "), p.ShortID))
	left.WriteString(fmt.Sprintf("%s  %s\n", Dim("UUID    "), TruncID(p.ID)))
	if p.Location != "" {
		left.WriteString(fmt.Sprintf("%s  %s\n", Dim("LOCATION"), p.Location))
	}
	left.WriteString(fmt.Sprintf("%s  %s\n", Dim("START   "), HumanDate(p.StartDate)))
	if p.TargetDate != nil {
		left.WriteString(fmt.Sprintf("%s  %s\n", Dim("TARGET  "), HumanDate(*p.TargetDate)))
	}
	leftPanel := lipgloss.NewStyle().Width(40).Render(left.String())

	var right strings.Builder
	right.WriteString(StyleHeader.Render("SCHEDULE") + "  " + RenderProgress(s.Progress, 16) + "\n\n")
	right.WriteString(fmt.Sprintf("%s  %d\n", Dim("TASKS       "), s.Tasks))
	right.WriteString(fmt.Sprintf("%s  %d\n", Dim("MILESTONES  "), s.Milestones))
	right.WriteString(fmt.Sprintf("%s  %d\n", Dim("DEPENDENCIES"), s.Dependencies))
	if s.PlannedStart != nil && s.PlannedEnd != nil {
		right.WriteString(fmt.Sprintf("%s  %s → %s\n", Dim("PLANNED     "),
			s.PlannedStart.Format(time.DateOnly), s.PlannedEnd.Format(time.DateOnly)))
		if p.TargetDate != nil && s.PlannedEnd.After(*p.TargetDate) {
			late := domain.DaysBetween(*p.TargetDate, *s.PlannedEnd)
			right.WriteString(fmt.Sprintf("%s  %s\n", Dim("            "),
				StyleRed.Render(fmt.Sprintf("ends %s after target", Days(late)))))
		}
	}
	if s.Roots != "" {
		right.WriteString("\n" + s.Roots)
	}

	return RenderBox("", lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, "    ", right.String()))
}
