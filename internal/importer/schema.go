package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure for a project import.
type ImportSchema struct {
	Project      ProjectImport      `json:"project"`
	Tasks        []TaskImport       `json:"tasks"`
	Dependencies []DependencyImport `json:"dependencies,omitempty"`
}

// ProjectImport defines the project-level fields in the import file.
type ProjectImport struct {
	ShortID    string  `json:"short_id"`
	Name       string  `json:"name"`
	Client     string  `json:"client,omitempty"`
	Location   string  `json:"location,omitempty"`
	StartDate  string  `json:"start_date"`
	TargetDate *string `json:"target_date,omitempty"`
}

// TaskImport defines a WBS item in the import file. Parents must appear
// before their children.
type TaskImport struct {
	Ref             string  `json:"ref"`
	ParentRef       *string `json:"parent_ref,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Kind            string  `json:"kind,omitempty"`
	PlannedStart    *string `json:"planned_start,omitempty"`
	PlannedEnd      *string `json:"planned_end,omitempty"`
	PercentComplete int     `json:"percent_complete,omitempty"`
	Order           int     `json:"order,omitempty"`
}

// DependencyImport defines a dependency between two tasks by ref.
type DependencyImport struct {
	PredecessorRef string `json:"predecessor_ref"`
	SuccessorRef   string `json:"successor_ref"`
	Type           string `json:"type,omitempty"`
	LagDays        int    `json:"lag_days,omitempty"`
}

// LoadImportSchema reads and parses a project import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}

// ParseImportSchema parses an import document already in memory.
func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
