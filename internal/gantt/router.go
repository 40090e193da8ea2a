package gantt

import (
	"github.com/alexanderramin/obra/internal/domain"
)

// Point is a pixel coordinate on the chart.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Path is the routed connector for one dependency.
type Path struct {
	DependencyID  string                `json:"dependencyId"`
	PredecessorID string                `json:"predecessorId"`
	SuccessorID   string                `json:"successorId"`
	Type          domain.DependencyType `json:"type"`
	LagDays       int                   `json:"lagDays"`
	FromRow       int                   `json:"fromRow"`
	ToRow         int                   `json:"toRow"`
	Points        []Point               `json:"points"` // polyline, 4 points
	Arrow         [3]Point              `json:"arrow"`  // tip first
	Backward      bool                  `json:"backward,omitempty"`
}

// RouteDependencies routes deps over rows with the default pixel constants.
func RouteDependencies(deps []*domain.Dependency, rows []Row, geometry []Geometry) []Path {
	return routeResolved(DefaultLayoutConfig(), resolveRows(deps, rows), geometry)
}

// RouteDependencies routes deps over rows using the engine's route offset and
// arrow size.
func (e *Engine) RouteDependencies(deps []*domain.Dependency, rows []Row, geometry []Geometry) []Path {
	return routeResolved(e.cfg, resolveRows(deps, rows), geometry)
}

// RouteResolved routes dependencies already resolved to rows, as returned by
// DependencyGraph.Resolve. geometry is indexed by row.
func (e *Engine) RouteResolved(resolved []ResolvedDependency, geometry []Geometry) []Path {
	return routeResolved(e.cfg, resolved, geometry)
}

// resolveRows indexes deps against the visible tasks only, so edges into
// collapsed rows drop out as unresolved.
func resolveRows(deps []*domain.Dependency, rows []Row) []ResolvedDependency {
	tasks := make([]*domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.Task)
	}
	return NewDependencyGraph(tasks, deps).Resolve(rows)
}

// routeResolved draws every resolved dependency whose endpoints are dated as
// three orthogonal segments: out of the predecessor's right edge, down or up
// to the successor row, then into the successor's left edge.
// The route does not depend on the dependency type.
func routeResolved(cfg LayoutConfig, resolved []ResolvedDependency, geometry []Geometry) []Path {
	paths := make([]Path, 0, len(resolved))
	for _, rd := range resolved {
		d, fi, ti := rd.Dependency, rd.FromRow, rd.ToRow
		if fi >= len(geometry) || ti >= len(geometry) {
			continue
		}
		from, to := geometry[fi], geometry[ti]
		if from.Undated || to.Undated {
			continue
		}

		x0 := from.Right()
		y0 := from.Top + from.Height/2
		xm := x0 + cfg.RouteOffset
		x1 := to.Left
		y1 := to.Top + to.Height/2
		a := cfg.ArrowSize

		paths = append(paths, Path{
			DependencyID:  d.ID,
			PredecessorID: d.PredecessorID,
			SuccessorID:   d.SuccessorID,
			Type:          d.Type,
			LagDays:       d.LagDays,
			FromRow:       fi,
			ToRow:         ti,
			Points: []Point{
				{X: x0, Y: y0},
				{X: xm, Y: y0},
				{X: xm, Y: y1},
				{X: x1, Y: y1},
			},
			Arrow: [3]Point{
				{X: x1, Y: y1},
				{X: x1 - a, Y: y1 - a},
				{X: x1 - a, Y: y1 + a},
			},
			Backward: x1 < x0,
		})
	}
	return paths
}
