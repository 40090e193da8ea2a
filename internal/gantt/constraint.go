package gantt

import (
	"fmt"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
)

// ConstraintStatus is the outcome of checking one dependency against the
// planned dates of its endpoints.
type ConstraintStatus string

const (
	ConstraintMet      ConstraintStatus = "met"
	ConstraintViolated ConstraintStatus = "violated"
	ConstraintUnknown  ConstraintStatus = "unknown"
)

// ConstraintResult reports how far a successor sits from the date its
// dependency requires. SlackDays is negative when the constraint is violated.
type ConstraintResult struct {
	Dependency *domain.Dependency
	Status     ConstraintStatus
	Required   time.Time
	Actual     time.Time
	SlackDays  int
	Reason     string
}

// CheckConstraint evaluates dep against the planned dates of pred and succ.
// It never changes any date.
//
//	FS: succ.start >= pred.end   + lag
//	SS: succ.start >= pred.start + lag
//	FF: succ.end   >= pred.end   + lag
//	SF: succ.end   >= pred.start + lag
func CheckConstraint(dep *domain.Dependency, pred, succ *domain.Task) ConstraintResult {
	res := ConstraintResult{Dependency: dep, Status: ConstraintUnknown}
	if pred == nil || succ == nil {
		res.Reason = "endpoint missing"
		return res
	}

	var anchor, actual *time.Time
	switch dep.Type {
	case domain.FinishToStart:
		anchor, actual = endOf(pred), succ.PlannedStart
	case domain.StartToStart:
		anchor, actual = pred.PlannedStart, succ.PlannedStart
	case domain.FinishToFinish:
		anchor, actual = endOf(pred), endOf(succ)
	case domain.StartToFinish:
		anchor, actual = pred.PlannedStart, endOf(succ)
	default:
		res.Reason = fmt.Sprintf("unknown dependency type %q", dep.Type)
		return res
	}
	if anchor == nil || actual == nil {
		res.Reason = "undated endpoint"
		return res
	}

	res.Required = domain.TruncateDay(*anchor).AddDate(0, 0, dep.LagDays)
	res.Actual = domain.TruncateDay(*actual)
	res.SlackDays = domain.DaysBetween(res.Required, res.Actual)
	if res.SlackDays >= 0 {
		res.Status = ConstraintMet
		return res
	}
	res.Status = ConstraintViolated
	res.Reason = fmt.Sprintf("%s requires %s on or after %s, planned %s",
		dep.Type.Label(), actualLabel(dep.Type), res.Required.Format(time.DateOnly), res.Actual.Format(time.DateOnly))
	return res
}

// CheckConstraints evaluates every dependency kept by the graph.
func (dg *DependencyGraph) CheckConstraints() []ConstraintResult {
	out := make([]ConstraintResult, 0, len(dg.deps))
	for _, d := range dg.deps {
		out = append(out, CheckConstraint(d, dg.tasks[d.PredecessorID], dg.tasks[d.SuccessorID]))
	}
	return out
}

func endOf(t *domain.Task) *time.Time {
	if t.IsMilestone() && t.PlannedEnd == nil {
		return t.PlannedStart
	}
	return t.PlannedEnd
}

func actualLabel(t domain.DependencyType) string {
	switch t {
	case domain.FinishToStart, domain.StartToStart:
		return "successor start"
	default:
		return "successor end"
	}
}
