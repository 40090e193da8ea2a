package domain

import (
	"math"
	"time"
)

// Task is a WBS item: a phase, a schedulable task or a milestone.
type Task struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"projectId"`
	ParentID        *string    `json:"parentId"`
	WBSCode         string     `json:"wbsCode"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Kind            TaskKind   `json:"kind"`
	PlannedStart    *time.Time `json:"plannedStart"`
	PlannedEnd      *time.Time `json:"plannedEnd"`
	PercentComplete int        `json:"percentComplete"`
	Order           int        `json:"order"`
	Level           int        `json:"level"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// IsMilestone reports whether the task is a zero-duration marker.
func (t *Task) IsMilestone() bool { return t.Kind == KindMilestone }

// IsPhase reports whether the task is a grouping item.
func (t *Task) IsPhase() bool { return t.Kind == KindPhase }

// HasDates reports whether both planned dates are set.
func (t *Task) HasDates() bool {
	return t.PlannedStart != nil && t.PlannedEnd != nil
}

// DurationDays returns the number of calendar days between the planned dates,
// or 0 when either date is missing.
func (t *Task) DurationDays() int {
	if !t.HasDates() {
		return 0
	}
	return DaysBetween(*t.PlannedStart, *t.PlannedEnd)
}

// CollapseMilestone forces PlannedEnd to equal PlannedStart for milestones.
func (t *Task) CollapseMilestone() {
	if !t.IsMilestone() || t.PlannedStart == nil {
		return
	}
	end := *t.PlannedStart
	t.PlannedEnd = &end
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.ParentID != nil {
		v := *t.ParentID
		c.ParentID = &v
	}
	if t.PlannedStart != nil {
		v := *t.PlannedStart
		c.PlannedStart = &v
	}
	if t.PlannedEnd != nil {
		v := *t.PlannedEnd
		c.PlannedEnd = &v
	}
	return &c
}

// TruncateDay returns midnight UTC of t's calendar day as read in t's own
// location, so 2024-01-10T22:00-03:00 stays on the 10th.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	d := TruncateDay(b).Sub(TruncateDay(a)).Hours() / 24
	return int(math.Round(d))
}
