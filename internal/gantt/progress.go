package gantt

import (
	"math"

	"github.com/alexanderramin/obra/internal/domain"
)

// Weighting selects how a parent weighs its children.
type Weighting string

const (
	EqualWeighted    Weighting = "equal"
	DurationWeighted Weighting = "duration"
)

func (w Weighting) IsValid() bool {
	return w == EqualWeighted || w == DurationWeighted
}

// AggregateProgress returns the displayed percent for every task. Any task with
// children shows the equal-weight mean of its children's displayed values and
// its stored percent is ignored. Leaves show their own percent, except an
// empty phase, which shows 0. Nothing is written back to the tasks.
func AggregateProgress(tasks []*domain.Task) map[string]int {
	return AggregateProgressWith(tasks, EqualWeighted)
}

// AggregateProgressWith is AggregateProgress with a selectable weighting.
// DurationWeighted weighs each child by max(1, planned days).
func AggregateProgressWith(tasks []*domain.Task, w Weighting) map[string]int {
	return aggregateTree(BuildTree(tasks), w)
}

func aggregateTree(tree *Tree, w Weighting) map[string]int {
	out := make(map[string]int, len(tree.ByID))
	var visit func(n *Node) float64
	visit = func(n *Node) float64 {
		if len(n.Children) == 0 {
			v := 0
			if !n.Task.IsPhase() {
				v = clampPercent(n.Task.PercentComplete)
			}
			out[n.Task.ID] = v
			return float64(v)
		}
		var sum, weights float64
		for _, c := range n.Children {
			cv := visit(c)
			cw := 1.0
			if w == DurationWeighted {
				cw = float64(max(1, c.Task.DurationDays()))
			}
			sum += cv * cw
			weights += cw
		}
		out[n.Task.ID] = int(math.Round(sum / weights))
		return float64(out[n.Task.ID])
	}
	for _, r := range tree.Roots {
		visit(r)
	}
	return out
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
