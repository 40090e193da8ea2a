package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

type fixture struct {
	tasks []*domain.Task
	deps  []*domain.Dependency
	byWBS map[string]*domain.Task
}

func buildingFixture() fixture {
	d := testutil.Date
	fund := testutil.NewTestTask("p", "Fundaciones", testutil.WithKind(domain.KindPhase), testutil.WithOrder(1, "1"),
		testutil.WithDates(d(2024, time.January, 2), d(2024, time.January, 31)))
	exc := testutil.NewTestTask("p", "Excavación", testutil.WithParent(fund), testutil.WithOrder(1, "1.1"),
		testutil.WithDates(d(2024, time.January, 2), d(2024, time.January, 12)), testutil.WithPercent(100))
	pour := testutil.NewTestTask("p", "Hormigonado", testutil.WithParent(fund), testutil.WithOrder(2, "1.2"),
		testutil.WithDates(d(2024, time.January, 15), d(2024, time.January, 31)), testutil.WithPercent(50))
	est := testutil.NewTestTask("p", "Estructura", testutil.WithOrder(2, "2"),
		testutil.WithDates(d(2024, time.February, 1), d(2024, time.March, 29)))
	hito := testutil.NewTestTask("p", "Obra gruesa", testutil.WithKind(domain.KindMilestone), testutil.WithOrder(3, "3"),
		testutil.WithDates(d(2024, time.April, 1), d(2024, time.April, 1)))

	tasks := []*domain.Task{fund, exc, pour, est, hito}
	f := fixture{tasks: tasks, byWBS: map[string]*domain.Task{}}
	for _, t := range tasks {
		f.byWBS[t.WBSCode] = t
	}
	f.deps = []*domain.Dependency{
		testutil.NewTestDependency("p", exc.ID, pour.ID),
		testutil.NewTestDependency("p", pour.ID, est.ID, testutil.WithLag(1)),
		testutil.NewTestDependency("p", est.ID, hito.ID, testutil.WithDependencyType(domain.FinishToFinish)),
	}
	return f
}

func (f fixture) board(t *testing.T, expanded gantt.ExpansionSet) *gantt.Board {
	t.Helper()
	b, err := gantt.NewEngine(gantt.DefaultLayoutConfig()).Build(gantt.BoardInput{
		Tasks:        f.tasks,
		Dependencies: f.deps,
		Zoom:         gantt.ZoomWeek,
		Expanded:     expanded,
	})
	require.NoError(t, err)
	return b
}

func TestTreePrefixes(t *testing.T) {
	task := func(name string) *domain.Task { return &domain.Task{ID: name, Name: name} }
	rows := []gantt.Row{
		{Task: task("A"), Level: 0},
		{Task: task("A1"), Level: 1},
		{Task: task("A1a"), Level: 2, IsLast: true},
		{Task: task("A2"), Level: 1, IsLast: true},
		{Task: task("A2a"), Level: 2, IsLast: true},
		{Task: task("B"), Level: 0, IsLast: true},
	}

	assert.Equal(t, []string{"", "├─ ", "│  └─ ", "└─ ", "   └─ ", ""}, TreePrefixes(rows))
}

func TestRenderTree(t *testing.T) {
	f := buildingFixture()
	b := f.board(t, gantt.ExpandAll(f.tasks))

	out := stripANSI(RenderTree(b.Rows, b.Progress))
	lines := splitLines(out)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "▾ 1 Fundaciones")
	assert.Contains(t, lines[0], "75%")
	assert.Contains(t, lines[1], "├─")
	assert.Contains(t, lines[2], "└─")
	assert.Contains(t, lines[2], "1.2 Hormigonado")
	assert.Contains(t, lines[4], "2024-04-01")
}

func TestRenderGantt_ExpandedBoard(t *testing.T) {
	f := buildingFixture()
	b := f.board(t, gantt.ExpandAll(f.tasks))

	chart := RenderGantt(b, GanttOptions{Width: 100, LabelWidth: 30, Cursor: 1})
	require.Len(t, chart.Header, 3)
	require.Len(t, chart.Rows, 5)

	header := stripANSI(strings.Join(chart.Header, "\n"))
	assert.Contains(t, header, "Jan 2024")

	rows := make([]string, len(chart.Rows))
	for i, r := range chart.Rows {
		rows[i] = stripANSI(r)
	}
	assert.True(t, strings.HasPrefix(rows[1], "▶ "), "cursor row is marked")
	assert.True(t, strings.HasPrefix(rows[0], "  "))
	assert.Contains(t, rows[0], "75%")
	assert.Contains(t, rows[1], "█", "completed work is filled")
	assert.NotContains(t, rows[3], "█", "no progress on the structure")
	assert.Contains(t, rows[3], "░")
	assert.Contains(t, rows[4], "◆")
	assert.Contains(t, rows[4], "0%")

	width := -1
	for _, r := range rows {
		w := len([]rune(r))
		if width < 0 {
			width = w
		}
		assert.Equal(t, width, w, "rows line up")
	}
}

func TestRenderGantt_UndatedAndToday(t *testing.T) {
	f := buildingFixture()
	f.tasks = append(f.tasks, testutil.NewTestTask("p", "Limpieza final", testutil.WithOrder(4, "4")))
	b := f.board(t, gantt.NewExpansionSet())
	today := testutil.Date(2024, time.February, 15)

	chart := RenderGantt(b, GanttOptions{Width: 100, LabelWidth: 30, Cursor: -1, Today: &today})
	require.Len(t, chart.Rows, 4)
	last := stripANSI(chart.Rows[3])
	assert.Contains(t, last, "Limpieza final")
	assert.Contains(t, last, "--")
	assert.Contains(t, last, "┊", "today marker crosses empty rows")
}

func TestFormatGantt_DependencyList(t *testing.T) {
	f := buildingFixture()
	b := f.board(t, gantt.NewExpansionSet())

	out := stripANSI(FormatGantt(b, GanttOptions{Width: 100}))

	assert.Contains(t, out, "DEPENDENCIES")
	assert.Contains(t, out, "1.1 Excavación → 1.2 Hormigonado  FS  (hidden)")
	assert.Contains(t, out, "1.2 Hormigonado → 2 Estructura  FS +1d  (hidden)")
	assert.Contains(t, out, "2 Estructura → 3 Obra gruesa  FF")
	assert.NotContains(t, out, "cycle:")
}

func TestRenderGantt_NilBoard(t *testing.T) {
	chart := RenderGantt(nil, GanttOptions{})
	assert.Empty(t, chart.Rows)
	assert.Greater(t, chart.Cols, 0)
}
