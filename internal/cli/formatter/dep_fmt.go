package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
)

// FormatDependencyList renders dependencies with their endpoints resolved
// through tasks. Unknown endpoints show a truncated id.
func FormatDependencyList(deps []*domain.Dependency, tasks map[string]*domain.Task) string {
	headers := []string{"ID", "PREDECESSOR", "SUCCESSOR", "TYPE", "LAG"}
	rows := make([][]string, 0, len(deps))
	for _, d := range deps {
		rows = append(rows, []string{
			TruncID(d.ID),
			endpoint(tasks, d.PredecessorID),
			endpoint(tasks, d.SuccessorID),
			fmt.Sprintf("%s %s", d.Type, Dim(d.Type.Label())),
			Lag(d.LagDays),
		})
	}
	return RenderTable(headers, rows, AlignRight(4))
}

// FormatConstraintReport renders the result of checking every dependency
// against the planned dates.
func FormatConstraintReport(results []gantt.ConstraintResult, tasks map[string]*domain.Task) string {
	headers := []string{"PREDECESSOR", "SUCCESSOR", "TYPE", "REQUIRED", "PLANNED", "SLACK", "STATUS"}
	rows := make([][]string, 0, len(results))
	violated := 0
	for _, r := range results {
		d := r.Dependency
		required, planned, slack := Dim("--"), Dim("--"), Dim("--")
		if r.Status != gantt.ConstraintUnknown {
			required = r.Required.Format(time.DateOnly)
			planned = r.Actual.Format(time.DateOnly)
			slack = fmt.Sprintf("%+d", r.SlackDays)
		}
		if r.Status == gantt.ConstraintViolated {
			violated++
			slack = StyleRed.Render(slack)
		}
		status := ConstraintPill(r.Status)
		if r.Reason != "" && r.Status == gantt.ConstraintUnknown {
			status += " " + Dim(r.Reason)
		}
		rows = append(rows, []string{
			endpoint(tasks, d.PredecessorID),
			endpoint(tasks, d.SuccessorID),
			fmt.Sprintf("%s %s", d.Type, Lag(d.LagDays)),
			required,
			planned,
			slack,
			status,
		})
	}

	summary := StyleGreen.Render("All dependencies are satisfied by the planned dates.")
	if violated > 0 {
		summary = StyleRed.Render(fmt.Sprintf("%d of %d dependencies are violated by the planned dates.", violated, len(results)))
	}
	return RenderTable(headers, rows, AlignRight(5)) + "\n" + summary + "\n"
}

func endpoint(tasks map[string]*domain.Task, id string) string {
	if t, ok := tasks[id]; ok {
		return Dim(t.WBSCode) + " " + t.Name
	}
	return TruncID(id)
}
