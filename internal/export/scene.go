package export

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
)

const (
	defaultLabelWidth = 280
	headerBand        = 20
	indentPx          = 14
	margin            = 8
)

// Options controls snapshot rendering.
type Options struct {
	Title      string
	LabelWidth int // width of the WBS column, pixels
}

func (o Options) labelWidth() int {
	if o.LabelWidth > 0 {
		return o.LabelWidth
	}
	return defaultLabelWidth
}

// scene is a board translated into absolute canvas coordinates, shared by the
// raster and vector renderers.
type scene struct {
	title  string
	width  int
	height int
	chartX int // left edge of the timeline area
	chartY int // top edge of the first row
	rowH   int
	groups []band
	labels []band
	rows   []sceneRow
	paths  []scenePath
	gridXs []int
}

type band struct {
	x, w int
	text string
}

type sceneRow struct {
	y        int
	label    string
	ascii    string
	indent   int
	kind     domain.TaskKind
	undated  bool
	x, w     int
	percent  int
	striped  bool
	summary  bool
	barTitle string
}

type scenePath struct {
	xs, ys   []int
	arrowXs  []int
	arrowYs  []int
	backward bool
}

func buildScene(b *gantt.Board, opts Options) (*scene, error) {
	if b == nil || b.Layout == nil {
		return nil, fmt.Errorf("board has no layout")
	}
	rowH := b.Layout.RowHeight()
	if rowH <= 0 {
		rowH = gantt.DefaultLayoutConfig().RowHeight
	}

	sc := &scene{
		title:  opts.Title,
		chartX: opts.labelWidth(),
		rowH:   rowH,
	}
	top := margin
	if sc.title != "" {
		top += headerBand
	}
	sc.chartY = top + 2*headerBand
	sc.width = sc.chartX + b.Layout.TotalWidth + margin
	sc.height = sc.chartY + len(b.Rows)*rowH + margin

	lastGroup := ""
	for _, h := range b.Layout.Headers {
		x := sc.chartX + h.Left
		if h.Group != lastGroup || len(sc.groups) == 0 {
			sc.groups = append(sc.groups, band{x: x, w: h.Width, text: h.Group})
			lastGroup = h.Group
		} else {
			sc.groups[len(sc.groups)-1].w += h.Width
		}
		sc.labels = append(sc.labels, band{x: x, w: h.Width, text: h.Label})
		sc.gridXs = append(sc.gridXs, x)
	}

	for i, r := range b.Rows {
		if i >= len(b.Geometry) {
			break
		}
		g := b.Geometry[i]
		t := r.Task
		pct := t.PercentComplete
		if p, ok := b.Progress[t.ID]; ok {
			pct = p
		}
		sr := sceneRow{
			y:       sc.chartY + g.Top,
			label:   rowLabel(r, "▾ ", "▸ "),
			ascii:   rowLabel(r, "- ", "+ "),
			indent:  r.Level * indentPx,
			kind:    t.Kind,
			undated: g.Undated,
			x:       sc.chartX + g.Left,
			w:       g.Width,
			percent: pct,
			striped: i%2 == 1,
			summary: r.HasChildren,
		}
		sr.barTitle = fmt.Sprintf("%s %s (%d%%)", t.WBSCode, t.Name, pct)
		sc.rows = append(sc.rows, sr)
	}

	for _, p := range b.Paths {
		sp := scenePath{backward: p.Backward}
		for _, pt := range p.Points {
			sp.xs = append(sp.xs, sc.chartX+pt.X)
			sp.ys = append(sp.ys, sc.chartY+pt.Y)
		}
		for _, pt := range p.Arrow {
			sp.arrowXs = append(sp.arrowXs, sc.chartX+pt.X)
			sp.arrowYs = append(sp.arrowYs, sc.chartY+pt.Y)
		}
		sc.paths = append(sc.paths, sp)
	}
	return sc, nil
}

// rowLabel is the WBS code and name, prefixed with the open or closed marker
// when the row has children.
func rowLabel(r gantt.Row, open, closed string) string {
	var sb strings.Builder
	switch {
	case r.HasChildren && r.Expanded:
		sb.WriteString(open)
	case r.HasChildren:
		sb.WriteString(closed)
	}
	if r.Task.WBSCode != "" {
		sb.WriteString(r.Task.WBSCode)
		sb.WriteString(" ")
	}
	sb.WriteString(r.Task.Name)
	return sb.String()
}

// progressWidth is the filled share of a bar of width w.
func progressWidth(w, percent int) int {
	if percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return w
	}
	return w * percent / 100
}

// diamond returns the corners of a milestone marker centred on the bar.
func diamond(r sceneRow, rowH int) ([]int, []int) {
	cx := r.x + r.w/2
	cy := r.y + rowH/2
	h := r.w / 2
	if h < 3 {
		h = 3
	}
	return []int{cx, cx + h, cx, cx - h}, []int{cy - h, cy, cy + h, cy}
}

var kindColors = map[domain.TaskKind]string{
	domain.KindPhase:     "#37474f",
	domain.KindTask:      "#4a90d9",
	domain.KindMilestone: "#e6a23c",
}

const (
	progressColor = "#2e7d32"
	gridColor     = "#e0e0e0"
	stripeColor   = "#f7f7f7"
	textColor     = "#212121"
	pathColor     = "#607d8b"
	backwardColor = "#c62828"
)

func colorFor(kind domain.TaskKind) string {
	if c, ok := kindColors[kind]; ok {
		return c
	}
	return kindColors[domain.KindTask]
}
