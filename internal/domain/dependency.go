package domain

import "time"

// Dependency is a directed predecessor -> successor constraint between two tasks.
type Dependency struct {
	ID            string         `json:"id"`
	ProjectID     string         `json:"projectId"`
	PredecessorID string         `json:"predecessorId"`
	SuccessorID   string         `json:"successorId"`
	Type          DependencyType `json:"type"`
	LagDays       int            `json:"lagDays"`
	CreatedAt     time.Time      `json:"createdAt"`
}
