package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/obra/internal/domain"
)

// TaskDetail holds everything `task show` prints.
type TaskDetail struct {
	Task         *domain.Task
	Parent       *domain.Task
	Children     []*domain.Task
	Progress     int // rolled up for phases
	Predecessors []LinkedTask
	Successors   []LinkedTask
}

// LinkedTask is a neighbour across a dependency.
type LinkedTask struct {
	Task       *domain.Task
	Dependency *domain.Dependency
}

// FormatTaskDetail renders a task card.
func FormatTaskDetail(d TaskDetail) string {
	t := d.Task
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %s  %s\n\n", Dim(t.WBSCode), Bold(t.Name), KindBadge(t.Kind)))
	b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("ID      "), TruncID(t.ID)))
	b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("DATES   "), DateRange(t)))
	b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("PROGRESS"), RenderProgress(d.Progress, 16)))
	if d.Parent != nil {
		b.WriteString(fmt.Sprintf("  %s  %s %s\n", Dim("PARENT  "), Dim(d.Parent.WBSCode), d.Parent.Name))
	}
	if len(d.Children) > 0 {
		b.WriteString(fmt.Sprintf("  %s  %d\n", Dim("CHILDREN"), len(d.Children)))
	}
	if strings.TrimSpace(t.Description) != "" {
		b.WriteString("\n  " + StyleFg.Render(t.Description) + "\n")
	}

	if len(d.Predecessors) > 0 {
		b.WriteString("\n" + Header("Depends on") + "\n")
		for _, l := range d.Predecessors {
			b.WriteString(linkLine(l))
		}
	}
	if len(d.Successors) > 0 {
		b.WriteString("\n" + Header("Required by") + "\n")
		for _, l := range d.Successors {
			b.WriteString(linkLine(l))
		}
	}
	return b.String()
}

func linkLine(l LinkedTask) string {
	return fmt.Sprintf("  %s %s  %s\n",
		Dim(l.Task.WBSCode), l.Task.Name,
		StyleBlue.Render(strings.TrimSpace(string(l.Dependency.Type)+" "+Lag(l.Dependency.LagDays))))
}

// FormatTaskList renders tasks as a flat table ordered as given.
func FormatTaskList(tasks []*domain.Task, progress map[string]int) string {
	headers := []string{"WBS", "NAME", "KIND", "START", "END", "%"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		pct, ok := progress[t.ID]
		if !ok {
			pct = t.PercentComplete
		}
		name := strings.Repeat("  ", t.Level) + t.Name
		rows = append(rows, []string{
			t.WBSCode,
			name,
			KindBadge(t.Kind),
			OptionalDate(t.PlannedStart),
			OptionalDate(t.PlannedEnd),
			fmt.Sprintf("%d", pct),
		})
	}
	return RenderTable(headers, rows, AlignRight(5))
}
