package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultGanttWidth = 120
	defaultLabelWidth = 36
	minChartCols      = 10
)

// GanttOptions controls the terminal Gantt chart.
type GanttOptions struct {
	Width      int        // total line width in cells
	LabelWidth int        // WBS column width in cells
	Cursor     int        // highlighted row index; negative for none
	Today      *time.Time // draws a marker column when inside the window
}

func (o GanttOptions) normalized() GanttOptions {
	if o.Width <= 0 {
		o.Width = defaultGanttWidth
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = defaultLabelWidth
	}
	return o
}

// GanttChart is a board rendered to terminal lines. Header lines are kept
// apart so a scrolling view can pin them.
type GanttChart struct {
	Header []string
	Rows   []string
	Cols   int
}

// String joins the header and rows.
func (c GanttChart) String() string {
	return strings.Join(append(append([]string{}, c.Header...), c.Rows...), "\n") + "\n"
}

// cell is one character of the timeline with its style.
type cell struct {
	ch    string
	style *lipgloss.Style
}

var (
	styleToday = StyleRed
	styleRule  = StyleDim
)

// RenderGantt lays the board out as a text chart: a tree column followed by a
// scaled timeline with one bar per visible row.
func RenderGantt(b *gantt.Board, opts GanttOptions) GanttChart {
	opts = opts.normalized()
	// marker(2) + label + " │" + chart + "│" + " 100%"
	cols := opts.Width - 2 - opts.LabelWidth - 2 - 1 - 5
	if cols < minChartCols {
		cols = minChartCols
	}
	chart := GanttChart{Cols: cols}
	if b == nil || b.Layout == nil {
		return chart
	}
	l := b.Layout
	colOf := func(px int) int {
		if l.TotalWidth <= 0 {
			return 0
		}
		c := px * cols / l.TotalWidth
		if c < 0 {
			return 0
		}
		if c > cols {
			return cols
		}
		return c
	}

	todayCol := -1
	if opts.Today != nil {
		d := domain.TruncateDay(*opts.Today)
		if !d.Before(l.WindowStart) && d.Before(l.WindowEnd) {
			todayCol = colOf(l.X(d))
			if todayCol >= cols {
				todayCol = -1
			}
		}
	}

	groups, labels := headerLines(l, cols, colOf)
	pad := strings.Repeat(" ", 2+opts.LabelWidth) + " " + styleRule.Render("│")
	chart.Header = []string{
		pad + StyleHeader.Render(groups),
		pad + Dim(labels),
		strings.Repeat(" ", 2+opts.LabelWidth) + " " + Dim("┼"+strings.Repeat("─", cols)+"┤"),
	}

	prefixes := TreePrefixes(b.Rows)
	for i, r := range b.Rows {
		var g gantt.Geometry
		if i < len(b.Geometry) {
			g = b.Geometry[i]
		} else {
			g.Undated = true
		}
		pct, ok := b.Progress[r.Task.ID]
		if !ok {
			pct = r.Task.PercentComplete
		}

		marker := "  "
		label := Truncate(prefixes[i]+plainLabel(r), opts.LabelWidth)
		label = PadRight(label, opts.LabelWidth)
		switch {
		case i == opts.Cursor:
			marker = StyleHeader.Render("▶ ")
			label = StyleYellowBold.Render(label)
		case r.HasChildren:
			label = StyleBold.Render(label)
		}

		cells := make([]cell, cols)
		for c := range cells {
			cells[c] = cell{ch: " "}
		}
		if todayCol >= 0 {
			cells[todayCol] = cell{ch: "┊", style: &styleToday}
		}
		drawBar(cells, r.Task, g, pct, colOf)

		pctText := Dim(fmt.Sprintf("%4d%%", pct))
		if g.Undated {
			pctText = Dim("   --")
		}
		chart.Rows = append(chart.Rows,
			marker+label+" "+styleRule.Render("│")+renderCells(cells)+styleRule.Render("│")+pctText)
	}
	return chart
}

// FormatGantt renders the whole chart followed by the dependency list.
func FormatGantt(b *gantt.Board, opts GanttOptions) string {
	var sb strings.Builder
	sb.WriteString(RenderGantt(b, opts).String())
	if b == nil {
		return sb.String()
	}
	if deps := FormatBoardDependencies(b); deps != "" {
		sb.WriteString("\n")
		sb.WriteString(deps)
	}
	return sb.String()
}

func plainLabel(r gantt.Row) string {
	marker := "  "
	switch {
	case r.HasChildren && r.Expanded:
		marker = "▾ "
	case r.HasChildren:
		marker = "▸ "
	}
	return marker + r.Task.WBSCode + " " + r.Task.Name
}

func drawBar(cells []cell, t *domain.Task, g gantt.Geometry, pct int, colOf func(int) int) {
	if g.Undated {
		return
	}
	cols := len(cells)
	style := KindStyle(t.Kind)
	if g.Milestone {
		c := colOf(g.Left + g.Width/2)
		if c >= cols {
			c = cols - 1
		}
		cells[c] = cell{ch: "◆", style: &style}
		return
	}

	c0, c1 := colOf(g.Left), colOf(g.Right())
	if c0 >= cols {
		c0 = cols - 1
	}
	if c1 <= c0 {
		c1 = c0 + 1
	}
	done := c0 + (c1-c0)*pct/100
	fill, rest := "█", "░"
	if t.IsPhase() || g.Width == 0 {
		fill, rest = "▀", "▔"
	}
	doneStyle := StyleGreen
	for c := c0; c < c1; c++ {
		if c < done {
			cells[c] = cell{ch: fill, style: &doneStyle}
		} else {
			cells[c] = cell{ch: rest, style: &style}
		}
	}
}

// renderCells groups runs of equally styled cells into single renders.
func renderCells(cells []cell) string {
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i
		var run strings.Builder
		for j < len(cells) && cells[j].style == cells[i].style {
			run.WriteString(cells[j].ch)
			j++
		}
		if cells[i].style != nil {
			b.WriteString(cells[i].style.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		i = j
	}
	return b.String()
}

// headerLines places the group names (months or years) and bucket labels on
// two lines of cols cells. Labels that would overlap their neighbour are
// dropped.
func headerLines(l *gantt.Layout, cols int, colOf func(int) int) (string, string) {
	groups := []rune(strings.Repeat(" ", cols))
	labels := []rune(strings.Repeat(" ", cols))
	place := func(line []rune, at int, text string, room int) {
		rs := []rune(text)
		if at < 0 || at >= len(line) || len(rs) > room {
			return
		}
		copy(line[at:], rs)
	}

	lastGroup := ""
	groupEnd := 0
	for i, h := range l.Headers {
		start := colOf(h.Left)
		end := colOf(h.Left + h.Width)
		if h.Group != lastGroup && start >= groupEnd {
			next := cols
			for _, n := range l.Headers[i+1:] {
				if n.Group != h.Group {
					next = colOf(n.Left)
					break
				}
			}
			place(groups, start, h.Group, next-start-1)
			groupEnd = start + len([]rune(h.Group)) + 1
			lastGroup = h.Group
		}
		place(labels, start, h.Label, end-start-1)
	}
	return string(groups), string(labels)
}

// FormatBoardDependencies lists every dependency on the board by WBS code,
// flags the ones hidden by collapsed phases, and reports cycles.
func FormatBoardDependencies(b *gantt.Board) string {
	g := b.Graph()
	if g == nil || len(g.Dependencies()) == 0 {
		return ""
	}
	visible := make(map[string]bool, len(b.Paths))
	backward := make(map[string]bool)
	for _, p := range b.Paths {
		visible[p.DependencyID] = true
		backward[p.DependencyID] = p.Backward
	}

	var sb strings.Builder
	sb.WriteString(Header("Dependencies"))
	sb.WriteString("\n")
	for _, d := range g.Dependencies() {
		line := fmt.Sprintf("%s → %s  %s %s",
			taskRef(g, d.PredecessorID), taskRef(g, d.SuccessorID), d.Type, Lag(d.LagDays))
		line = strings.TrimRight(line, " ")
		switch {
		case !visible[d.ID]:
			line = Dim(line + "  (hidden)")
		case backward[d.ID]:
			line += "  " + StyleYellow.Render("↺ backward")
		}
		sb.WriteString("  " + line + "\n")
	}
	for _, cycle := range b.Cycles {
		names := make([]string, 0, len(cycle))
		for _, id := range cycle {
			names = append(names, taskRef(g, id))
		}
		sb.WriteString("  " + StyleRed.Render("cycle: "+strings.Join(names, ", ")) + "\n")
	}
	return sb.String()
}

func taskRef(g *gantt.DependencyGraph, id string) string {
	t, ok := g.Task(id)
	if !ok {
		return TruncID(id)
	}
	return t.WBSCode + " " + t.Name
}
