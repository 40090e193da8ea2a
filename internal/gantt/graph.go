package gantt

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/alexanderramin/obra/internal/domain"
)

// ResolvedDependency is a dependency whose endpoints are both visible rows.
type ResolvedDependency struct {
	Dependency *domain.Dependency
	FromRow    int
	ToRow      int
}

// DependencyGraph indexes dependencies by task. Edges point from predecessor
// to successor.
type DependencyGraph struct {
	deps     []*domain.Dependency
	tasks    map[string]*domain.Task
	preds    map[string][]string
	succs    map[string][]string
	edges    map[[2]string]*domain.Dependency
	g        *simple.DirectedGraph
	nodeOf   map[string]int64
	taskOf   map[int64]string
	Warnings []domain.StaleReferenceWarning
}

// NewDependencyGraph indexes deps against tasks. Dependencies whose endpoints
// are unknown, self-loops and repeated pairs are skipped with a warning.
func NewDependencyGraph(tasks []*domain.Task, deps []*domain.Dependency) *DependencyGraph {
	dg := &DependencyGraph{
		tasks:  make(map[string]*domain.Task, len(tasks)),
		preds:  make(map[string][]string),
		succs:  make(map[string][]string),
		edges:  make(map[[2]string]*domain.Dependency, len(deps)),
		g:      simple.NewDirectedGraph(),
		nodeOf: make(map[string]int64, len(tasks)),
		taskOf: make(map[int64]string, len(tasks)),
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if _, dup := dg.tasks[t.ID]; dup {
			continue
		}
		dg.tasks[t.ID] = t
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	for i, id := range ids {
		n := int64(i)
		dg.nodeOf[id] = n
		dg.taskOf[n] = id
		dg.g.AddNode(simple.Node(n))
	}

	for _, d := range deps {
		if d == nil {
			continue
		}
		switch {
		case dg.tasks[d.PredecessorID] == nil:
			dg.warn(d, d.PredecessorID, "predecessor not found")
			continue
		case dg.tasks[d.SuccessorID] == nil:
			dg.warn(d, d.SuccessorID, "successor not found")
			continue
		case d.PredecessorID == d.SuccessorID:
			dg.warn(d, d.SuccessorID, "self-dependency ignored")
			continue
		}
		key := [2]string{d.PredecessorID, d.SuccessorID}
		if dg.edges[key] != nil {
			dg.warn(d, d.SuccessorID, "duplicate edge ignored")
			continue
		}
		dg.edges[key] = d

		dg.deps = append(dg.deps, d)
		dg.preds[d.SuccessorID] = append(dg.preds[d.SuccessorID], d.PredecessorID)
		dg.succs[d.PredecessorID] = append(dg.succs[d.PredecessorID], d.SuccessorID)
		dg.g.SetEdge(dg.g.NewEdge(
			simple.Node(dg.nodeOf[d.PredecessorID]),
			simple.Node(dg.nodeOf[d.SuccessorID]),
		))
	}
	return dg
}

func (dg *DependencyGraph) warn(d *domain.Dependency, ref, reason string) {
	dg.Warnings = append(dg.Warnings, domain.StaleReferenceWarning{
		Entity: "dependency", ID: d.ID, Ref: ref, Reason: reason,
	})
}

// Dependencies returns the dependencies that survived indexing, in input order.
func (dg *DependencyGraph) Dependencies() []*domain.Dependency { return dg.deps }

// Resolve maps each dependency to its endpoint rows. Dependencies with an
// endpoint that is not among rows (collapsed away) are omitted.
func (dg *DependencyGraph) Resolve(rows []Row) []ResolvedDependency {
	rowOf := make(map[string]int, len(rows))
	for i, r := range rows {
		rowOf[r.Task.ID] = i
	}
	out := make([]ResolvedDependency, 0, len(dg.deps))
	for _, d := range dg.deps {
		from, ok := rowOf[d.PredecessorID]
		if !ok {
			continue
		}
		to, ok := rowOf[d.SuccessorID]
		if !ok {
			continue
		}
		out = append(out, ResolvedDependency{Dependency: d, FromRow: from, ToRow: to})
	}
	return out
}

// Task returns the indexed task with the given id.
func (dg *DependencyGraph) Task(id string) (*domain.Task, bool) {
	t, ok := dg.tasks[id]
	return t, ok
}

// Predecessors returns the tasks id depends on, ordered by WBS code.
func (dg *DependencyGraph) Predecessors(id string) []*domain.Task {
	return dg.lookup(dg.preds[id])
}

// Successors returns the tasks that depend on id, ordered by WBS code.
func (dg *DependencyGraph) Successors(id string) []*domain.Task {
	return dg.lookup(dg.succs[id])
}

// Edge returns the dependency from predID to succID, or nil.
func (dg *DependencyGraph) Edge(predID, succID string) *domain.Dependency {
	return dg.edges[[2]string{predID, succID}]
}

func (dg *DependencyGraph) lookup(ids []string) []*domain.Task {
	out := make([]*domain.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, dg.tasks[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WBSCode != out[j].WBSCode {
			return out[i].WBSCode < out[j].WBSCode
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// WouldCreateCycle reports whether adding predID -> succID closes a cycle.
// Unknown ids never close a cycle unless they are equal.
func (dg *DependencyGraph) WouldCreateCycle(predID, succID string) bool {
	if predID == succID {
		return true
	}
	from, ok := dg.nodeOf[succID]
	if !ok {
		return false
	}
	to, ok := dg.nodeOf[predID]
	if !ok {
		return false
	}
	return topo.PathExistsIn(dg.g, simple.Node(from), simple.Node(to))
}

// Cycles returns every strongly connected set of tasks that forms a cycle.
// Each cycle is sorted by id and the cycles are sorted by their first id.
func (dg *DependencyGraph) Cycles() [][]string {
	_, err := topo.Sort(dg.g)
	if err == nil {
		return nil
	}
	var unorderable topo.Unorderable
	if !errors.As(err, &unorderable) {
		return nil
	}
	cycles := make([][]string, 0, len(unorderable))
	for _, component := range unorderable {
		cycles = append(cycles, dg.taskIDs(component))
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

func (dg *DependencyGraph) taskIDs(nodes []graph.Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, dg.taskOf[n.ID()])
	}
	sort.Strings(ids)
	return ids
}
