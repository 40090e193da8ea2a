package gantt

import (
	"sort"

	"github.com/alexanderramin/obra/internal/domain"
)

// ExpansionSet holds the ids of tasks whose children are currently shown.
// It is owned by the caller and passed into every flatten call.
type ExpansionSet map[string]bool

// NewExpansionSet returns a set with the given ids expanded.
func NewExpansionSet(ids ...string) ExpansionSet {
	s := make(ExpansionSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// ExpandAll returns a set with every task id expanded.
func ExpandAll(tasks []*domain.Task) ExpansionSet {
	s := make(ExpansionSet, len(tasks))
	for _, t := range tasks {
		s[t.ID] = true
	}
	return s
}

func (s ExpansionSet) IsExpanded(id string) bool { return s[id] }

// Toggle flips the expansion state of id and reports the new state.
func (s ExpansionSet) Toggle(id string) bool {
	if s[id] {
		delete(s, id)
		return false
	}
	s[id] = true
	return true
}

// Node is a task positioned in the WBS hierarchy. A node exclusively owns its
// Children slice.
type Node struct {
	Task        *domain.Task
	Parent      *Node
	Children    []*Node
	HasChildren bool
	Level       int
}

// Tree is the parent/child hierarchy built from a flat task list.
type Tree struct {
	Roots    []*Node
	ByID     map[string]*Node
	Warnings []domain.StaleReferenceWarning
}

// Row is one line of the flattened, expansion-aware view.
type Row struct {
	Index       int
	Task        *domain.Task
	Level       int
	HasChildren bool
	Expanded    bool
	IsLast      bool // last among its visible siblings
}

// BuildTree converts a flat task list (any order) into a hierarchy.
// A task whose parent id is unknown becomes a root. Parent-pointer cycles are
// broken at their lowest-id member, which becomes a root.
func BuildTree(tasks []*domain.Task) *Tree {
	tree := &Tree{ByID: make(map[string]*Node, len(tasks))}

	for _, t := range tasks {
		if t == nil {
			continue
		}
		if _, dup := tree.ByID[t.ID]; dup {
			tree.Warnings = append(tree.Warnings, domain.StaleReferenceWarning{
				Entity: "task", ID: t.ID, Ref: t.ID, Reason: "duplicate id ignored",
			})
			continue
		}
		tree.ByID[t.ID] = &Node{Task: t}
	}

	parents := tree.resolveParents()

	ids := make([]string, 0, len(tree.ByID))
	for id := range tree.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := tree.ByID[id]
		pid, ok := parents[id]
		if !ok {
			tree.Roots = append(tree.Roots, n)
			continue
		}
		p := tree.ByID[pid]
		n.Parent = p
		p.Children = append(p.Children, n)
		p.HasChildren = true
	}

	sortNodes(tree.Roots)
	for _, n := range tree.ByID {
		sortNodes(n.Children)
	}
	for _, r := range tree.Roots {
		assignLevels(r, 0)
	}
	return tree
}

// resolveParents returns the effective child -> parent mapping after dropping
// unknown parents and breaking cycles. Dropped links are recorded as warnings.
func (t *Tree) resolveParents() map[string]string {
	parents := make(map[string]string, len(t.ByID))
	ids := make([]string, 0, len(t.ByID))
	for id, n := range t.ByID {
		ids = append(ids, id)
		if n.Task.ParentID == nil || *n.Task.ParentID == "" {
			continue
		}
		pid := *n.Task.ParentID
		if _, ok := t.ByID[pid]; !ok {
			t.Warnings = append(t.Warnings, domain.StaleReferenceWarning{
				Entity: "task", ID: id, Ref: pid, Reason: "parent not found, treated as root",
			})
			continue
		}
		parents[id] = pid
	}
	sort.Strings(ids)

	const (
		unvisited = 0
		onPath    = 1
		settled   = 2
	)
	state := make(map[string]int, len(ids))

	for _, start := range ids {
		if state[start] != unvisited {
			continue
		}
		var path []string
		cur := start
		for {
			if state[cur] == settled {
				break
			}
			if state[cur] == onPath {
				cut := lowestFrom(path, cur)
				t.Warnings = append(t.Warnings, domain.StaleReferenceWarning{
					Entity: "task", ID: cut, Ref: parents[cut], Reason: "parent cycle, link ignored",
				})
				delete(parents, cut)
				break
			}
			state[cur] = onPath
			path = append(path, cur)
			next, ok := parents[cur]
			if !ok {
				break
			}
			cur = next
		}
		for _, id := range path {
			state[id] = settled
		}
	}
	return parents
}

// lowestFrom returns the smallest id in path starting at the first occurrence of from.
func lowestFrom(path []string, from string) string {
	low := from
	seen := false
	for _, id := range path {
		if id == from {
			seen = true
		}
		if seen && id < low {
			low = id
		}
	}
	return low
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Task, nodes[j].Task
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.WBSCode != b.WBSCode {
			return a.WBSCode < b.WBSCode
		}
		return a.ID < b.ID
	})
}

func assignLevels(n *Node, level int) {
	n.Level = level
	for _, c := range n.Children {
		assignLevels(c, level+1)
	}
}

// Flatten walks the tree depth-first in sibling order, descending into a node's
// children only when the node is expanded.
func (t *Tree) Flatten(expanded ExpansionSet) []Row {
	rows := make([]Row, 0, len(t.ByID))
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for i, n := range nodes {
			open := n.HasChildren && expanded.IsExpanded(n.Task.ID)
			rows = append(rows, Row{
				Index:       len(rows),
				Task:        n.Task,
				Level:       n.Level,
				HasChildren: n.HasChildren,
				Expanded:    open,
				IsLast:      i == len(nodes)-1,
			})
			if open {
				walk(n.Children)
			}
		}
	}
	walk(t.Roots)
	return rows
}

// Descendants returns the ids of every task below id, depth-first.
func (t *Tree) Descendants(id string) []string {
	n, ok := t.ByID[id]
	if !ok {
		return nil
	}
	var out []string
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			out = append(out, c.Task.ID)
			walk(c)
		}
	}
	walk(n)
	return out
}

// IsAncestor reports whether ancestorID appears on the parent chain of id.
func (t *Tree) IsAncestor(ancestorID, id string) bool {
	n, ok := t.ByID[id]
	if !ok {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Task.ID == ancestorID {
			return true
		}
	}
	return false
}

// BuildFlattenedView is the one-call form of BuildTree followed by Flatten.
func BuildFlattenedView(tasks []*domain.Task, expanded ExpansionSet) []Row {
	return BuildTree(tasks).Flatten(expanded)
}
