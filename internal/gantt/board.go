package gantt

import (
	"github.com/alexanderramin/obra/internal/domain"
)

// BoardInput is the full record set for one render.
type BoardInput struct {
	Tasks        []*domain.Task
	Dependencies []*domain.Dependency
	Zoom         ZoomMode
	Expanded     ExpansionSet
	Weighting    Weighting
}

// Board is everything a renderer needs, rebuilt from scratch on every call.
type Board struct {
	Zoom     ZoomMode                       `json:"zoom"`
	Rows     []Row                          `json:"-"`
	Layout   *Layout                        `json:"layout"`
	Geometry []Geometry                     `json:"geometry"`
	Progress map[string]int                 `json:"progress"`
	Paths    []Path                         `json:"paths"`
	Cycles   [][]string                     `json:"cycles,omitempty"`
	Warnings []domain.StaleReferenceWarning `json:"-"`

	tree  *Tree
	graph *DependencyGraph
}

// Build runs the whole pipeline: tree, flattened rows, layout, geometry,
// progress roll-up and routed connectors.
func (e *Engine) Build(in BoardInput) (*Board, error) {
	if in.Zoom == "" {
		in.Zoom = ZoomWeek
	}
	if in.Weighting == "" {
		in.Weighting = EqualWeighted
	}
	if !in.Weighting.IsValid() {
		return nil, domain.NewValidationError("weighting", "must be equal or duration (got %q)", in.Weighting)
	}

	tree := BuildTree(in.Tasks)
	rows := tree.Flatten(in.Expanded)

	layout, err := e.ComputeLayout(in.Tasks, in.Zoom)
	if err != nil {
		return nil, err
	}
	geometry := layout.Geometry(rows)

	graph := NewDependencyGraph(in.Tasks, in.Dependencies)
	paths := e.RouteResolved(graph.Resolve(rows), geometry)

	warnings := make([]domain.StaleReferenceWarning, 0, len(tree.Warnings)+len(graph.Warnings))
	warnings = append(warnings, tree.Warnings...)
	warnings = append(warnings, graph.Warnings...)

	return &Board{
		Zoom:     in.Zoom,
		Rows:     rows,
		Layout:   layout,
		Geometry: geometry,
		Progress: aggregateTree(tree, in.Weighting),
		Paths:    paths,
		Cycles:   graph.Cycles(),
		Warnings: warnings,
		tree:     tree,
		graph:    graph,
	}, nil
}

// Tree returns the hierarchy the board was built from.
func (b *Board) Tree() *Tree { return b.tree }

// Graph returns the dependency index the board was built from.
func (b *Board) Graph() *DependencyGraph { return b.graph }
