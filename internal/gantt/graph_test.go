package gantt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/obra/internal/domain"
)

func chainTasks() []*domain.Task {
	return []*domain.Task{
		newTask("a", withOrder(1, "1")),
		newTask("b", withOrder(2, "2")),
		newTask("c", withOrder(3, "3")),
	}
}

func TestDependencyGraph_PredecessorsAndSuccessors(t *testing.T) {
	g := NewDependencyGraph(chainTasks(), []*domain.Dependency{
		dep("d1", "a", "c"),
		dep("d2", "b", "c"),
		dep("d3", "a", "b"),
	})

	preds := g.Predecessors("c")
	require.Len(t, preds, 2)
	assert.Equal(t, "a", preds[0].ID)
	assert.Equal(t, "b", preds[1].ID)

	succs := g.Successors("a")
	require.Len(t, succs, 2)
	assert.Equal(t, "b", succs[0].ID)
	assert.Equal(t, "c", succs[1].ID)

	assert.Empty(t, g.Predecessors("a"))
	assert.Empty(t, g.Successors("missing"))

	assert.Equal(t, "d2", g.Edge("b", "c").ID)
	assert.Nil(t, g.Edge("c", "b"), "edges are directed")
}

func TestDependencyGraph_SkipsStaleSelfAndDuplicate(t *testing.T) {
	g := NewDependencyGraph(chainTasks(), []*domain.Dependency{
		dep("ok", "a", "b"),
		dep("stale-pred", "gone", "b"),
		dep("stale-succ", "a", "gone"),
		dep("self", "c", "c"),
		dep("dup", "a", "b"),
	})

	require.Len(t, g.Dependencies(), 1)
	assert.Equal(t, "ok", g.Dependencies()[0].ID)

	require.Len(t, g.Warnings, 4)
	byID := map[string]domain.StaleReferenceWarning{}
	for _, w := range g.Warnings {
		assert.Equal(t, "dependency", w.Entity)
		byID[w.ID] = w
	}
	assert.Equal(t, "gone", byID["stale-pred"].Ref)
	assert.Equal(t, "gone", byID["stale-succ"].Ref)
	assert.Contains(t, byID, "self")
	assert.Contains(t, byID, "dup")
}

func TestDependencyGraph_WouldCreateCycle(t *testing.T) {
	g := NewDependencyGraph(chainTasks(), []*domain.Dependency{
		dep("d1", "a", "b"),
		dep("d2", "b", "c"),
	})

	assert.True(t, g.WouldCreateCycle("c", "a"), "closing the chain")
	assert.True(t, g.WouldCreateCycle("b", "a"))
	assert.True(t, g.WouldCreateCycle("a", "a"), "self edge")
	assert.False(t, g.WouldCreateCycle("a", "c"), "parallel edge is fine")
	assert.False(t, g.WouldCreateCycle("a", "unknown"))
	assert.Empty(t, g.Cycles())
}

func TestDependencyGraph_CyclesReported(t *testing.T) {
	tasks := append(chainTasks(), newTask("d"))
	g := NewDependencyGraph(tasks, []*domain.Dependency{
		dep("d1", "a", "b"),
		dep("d2", "b", "a"),
		dep("d3", "c", "d"),
	})

	assert.Equal(t, [][]string{{"a", "b"}}, g.Cycles())
}

func TestDependencyGraph_ResolveSkipsHiddenRows(t *testing.T) {
	tasks := []*domain.Task{
		newTask("phase", withKind(domain.KindPhase), withOrder(1, "1")),
		newTask("child", withParent("phase"), withOrder(1, "1.1")),
		newTask("other", withOrder(2, "2")),
	}
	g := NewDependencyGraph(tasks, []*domain.Dependency{
		dep("visible", "phase", "other"),
		dep("hidden", "child", "other"),
	})

	collapsed := g.Resolve(BuildFlattenedView(tasks, nil))
	require.Len(t, collapsed, 1)
	assert.Equal(t, "visible", collapsed[0].Dependency.ID)
	assert.Equal(t, 0, collapsed[0].FromRow)
	assert.Equal(t, 1, collapsed[0].ToRow)

	expanded := g.Resolve(BuildFlattenedView(tasks, ExpandAll(tasks)))
	require.Len(t, expanded, 2)
	assert.Equal(t, 1, expanded[1].FromRow)
	assert.Equal(t, 2, expanded[1].ToRow)
}
