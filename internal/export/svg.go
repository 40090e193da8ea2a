package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
)

// WriteSVG renders the board as a standalone SVG document.
func WriteSVG(w io.Writer, b *gantt.Board, opts Options) error {
	sc, err := buildScene(b, opts)
	if err != nil {
		return err
	}

	canvas := svg.New(w)
	canvas.Start(sc.width, sc.height)
	canvas.Rect(0, 0, sc.width, sc.height, "fill:#ffffff")
	canvas.Gstyle(fmt.Sprintf("font-family:sans-serif;font-size:11px;fill:%s", textColor))

	if sc.title != "" {
		canvas.Text(margin, margin+headerBand-6, sc.title, "font-size:14px;font-weight:bold")
	}

	groupY := sc.chartY - 2*headerBand
	for _, g := range sc.groups {
		canvas.Text(g.x+3, groupY+headerBand-6, g.text, "font-weight:bold")
	}
	for _, l := range sc.labels {
		canvas.Text(l.x+3, groupY+2*headerBand-6, l.text)
	}

	for _, r := range sc.rows {
		if r.striped {
			canvas.Rect(0, r.y, sc.width, sc.rowH, "fill:"+stripeColor)
		}
	}
	for _, x := range sc.gridXs {
		canvas.Line(x, groupY+headerBand, x, sc.height-margin, "stroke:"+gridColor+";stroke-width:1")
	}
	canvas.Line(sc.chartX, groupY, sc.chartX, sc.height-margin, "stroke:#9e9e9e;stroke-width:1")

	for _, r := range sc.rows {
		weight := "normal"
		if r.summary {
			weight = "bold"
		}
		canvas.Text(margin+r.indent, r.y+sc.rowH/2+4, r.label, "font-weight:"+weight)
		drawSVGBar(canvas, r, sc.rowH)
	}

	for _, p := range sc.paths {
		color := pathColor
		if p.backward {
			color = backwardColor
		}
		canvas.Polyline(p.xs, p.ys, "fill:none;stroke-width:1.5;stroke:"+color)
		canvas.Polygon(p.arrowXs, p.arrowYs, "stroke:none;fill:"+color)
	}

	canvas.Gend()
	canvas.End()
	return nil
}

func drawSVGBar(canvas *svg.SVG, r sceneRow, rowH int) {
	if r.undated {
		return
	}
	canvas.Group()
	canvas.Title(r.barTitle)
	defer canvas.Gend()

	color := colorFor(r.kind)
	if r.kind == domain.KindMilestone {
		xs, ys := diamond(r, rowH)
		canvas.Polygon(xs, ys, "stroke:none;fill:"+color)
		return
	}

	pad := rowH / 4
	h := rowH - 2*pad
	if r.summary {
		pad = rowH / 3
		h = rowH - 2*pad
	}
	canvas.Rect(r.x, r.y+pad, r.w, h, "fill:"+color+";fill-opacity:0.35")
	if pw := progressWidth(r.w, r.percent); pw > 0 {
		canvas.Rect(r.x, r.y+pad, pw, h, "fill:"+progressColor)
	}
}
