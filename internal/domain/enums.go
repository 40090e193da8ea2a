package domain

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// TaskKind classifies a WBS item.
type TaskKind string

const (
	KindTask      TaskKind = "task"
	KindPhase     TaskKind = "phase"
	KindMilestone TaskKind = "milestone"
)

// ValidTaskKinds is the canonical set of accepted task kind strings.
var ValidTaskKinds = map[string]bool{
	"task": true, "phase": true, "milestone": true,
}

// IsValid reports whether k is one of the known kinds.
func (k TaskKind) IsValid() bool {
	return ValidTaskKinds[string(k)]
}

// DependencyType is the constraint between a predecessor and a successor.
type DependencyType string

const (
	FinishToStart  DependencyType = "FS"
	StartToStart   DependencyType = "SS"
	FinishToFinish DependencyType = "FF"
	StartToFinish  DependencyType = "SF"
)

// ValidDependencyTypes is the canonical set of accepted dependency type strings.
var ValidDependencyTypes = map[string]bool{
	"FS": true, "SS": true, "FF": true, "SF": true,
}

func (t DependencyType) IsValid() bool {
	return ValidDependencyTypes[string(t)]
}

// Label returns the long form used in listings, e.g. "finish-to-start".
func (t DependencyType) Label() string {
	switch t {
	case FinishToStart:
		return "finish-to-start"
	case StartToStart:
		return "start-to-start"
	case FinishToFinish:
		return "finish-to-finish"
	case StartToFinish:
		return "start-to-finish"
	default:
		return string(t)
	}
}
