package domain

import (
	"regexp"
	"strings"
	"time"
)

var shortIDPattern = regexp.MustCompile(`^[A-Z]{3,6}[0-9]{2,4}$`)

// Project is a construction job (an "obra") that owns a WBS.
type Project struct {
	ID         string
	ShortID    string
	Name       string
	Client     string
	Location   string
	StartDate  time.Time
	TargetDate *time.Time
	Status     ProjectStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsValid reports whether s is a known project status.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// Validate checks the fields a stored project must have. An empty status is
// accepted; the store defaults it to active.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if err := p.ValidateShortID(); err != nil {
		return err
	}
	if p.StartDate.IsZero() {
		return NewValidationError("startDate", "is required")
	}
	if p.TargetDate != nil && DaysBetween(p.StartDate, *p.TargetDate) < 0 {
		return NewValidationError("targetDate", "must not be before startDate")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return NewValidationError("status", "invalid value %q", p.Status)
	}
	return nil
}

// ValidateShortID checks that ShortID is 3-6 uppercase letters followed by
// 2-4 digits (OBR01, TORRE204).
func (p *Project) ValidateShortID() error {
	if p.ShortID == "" {
		return NewValidationError("shortId", "is required (use --id)")
	}
	if !shortIDPattern.MatchString(p.ShortID) {
		return NewValidationError("shortId", "%q must be 3-6 uppercase letters followed by 2-4 digits (e.g. OBR01)", p.ShortID)
	}
	return nil
}

// DisplayID is the short ID, or the first 8 characters of the UUID for
// records that predate short IDs.
func (p *Project) DisplayID() string {
	switch {
	case p.ShortID != "":
		return p.ShortID
	case len(p.ID) > 8:
		return p.ID[:8]
	}
	return p.ID
}
