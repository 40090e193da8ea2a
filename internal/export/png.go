package export

import (
	"io"

	"git.sr.ht/~sbinet/gg"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
)

// WritePNG rasterises the board with the built-in bitmap font.
func WritePNG(w io.Writer, b *gantt.Board, opts Options) error {
	sc, err := buildScene(b, opts)
	if err != nil {
		return err
	}

	dc := gg.NewContext(sc.width, sc.height)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	for _, r := range sc.rows {
		if r.striped {
			dc.SetHexColor(stripeColor)
			dc.DrawRectangle(0, float64(r.y), float64(sc.width), float64(sc.rowH))
			dc.Fill()
		}
	}

	groupY := float64(sc.chartY - 2*headerBand)
	dc.SetLineWidth(1)
	dc.SetHexColor(gridColor)
	for _, x := range sc.gridXs {
		dc.DrawLine(float64(x), groupY+headerBand, float64(x), float64(sc.height-margin))
	}
	dc.Stroke()
	dc.SetHexColor("#9e9e9e")
	dc.DrawLine(float64(sc.chartX), groupY, float64(sc.chartX), float64(sc.height-margin))
	dc.Stroke()

	dc.SetHexColor(textColor)
	if sc.title != "" {
		dc.DrawString(sc.title, margin, float64(margin+headerBand-6))
	}
	for _, g := range sc.groups {
		dc.DrawString(g.text, float64(g.x+3), groupY+headerBand-6)
	}
	for _, l := range sc.labels {
		dc.DrawString(l.text, float64(l.x+3), groupY+2*headerBand-6)
	}

	for _, r := range sc.rows {
		dc.SetHexColor(textColor)
		dc.DrawString(r.ascii, float64(margin+r.indent), float64(r.y+sc.rowH/2+4))
		drawPNGBar(dc, r, sc.rowH)
	}

	for _, p := range sc.paths {
		color := pathColor
		if p.backward {
			color = backwardColor
		}
		dc.SetHexColor(color)
		dc.SetLineWidth(1.5)
		polyline(dc, p.xs, p.ys, false)
		dc.Stroke()
		polyline(dc, p.arrowXs, p.arrowYs, true)
		dc.Fill()
	}

	return dc.EncodePNG(w)
}

func drawPNGBar(dc *gg.Context, r sceneRow, rowH int) {
	if r.undated {
		return
	}
	if r.kind == domain.KindMilestone {
		xs, ys := diamond(r, rowH)
		dc.SetHexColor(colorFor(r.kind))
		polyline(dc, xs, ys, true)
		dc.Fill()
		return
	}

	pad := rowH / 4
	if r.summary {
		pad = rowH / 3
	}
	h := float64(rowH - 2*pad)
	y := float64(r.y + pad)

	dc.SetHexColor(colorFor(r.kind) + "59")
	dc.DrawRectangle(float64(r.x), y, float64(r.w), h)
	dc.Fill()
	if pw := progressWidth(r.w, r.percent); pw > 0 {
		dc.SetHexColor(progressColor)
		dc.DrawRectangle(float64(r.x), y, float64(pw), h)
		dc.Fill()
	}
}

func polyline(dc *gg.Context, xs, ys []int, closed bool) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return
	}
	dc.MoveTo(float64(xs[0]), float64(ys[0]))
	for i := 1; i < len(xs); i++ {
		dc.LineTo(float64(xs[i]), float64(ys[i]))
	}
	if closed {
		dc.ClosePath()
	}
}
