package gantt

import (
	"fmt"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
)

// ZoomMode is the timeline granularity.
type ZoomMode string

const (
	ZoomDay     ZoomMode = "day"
	ZoomWeek    ZoomMode = "week"
	ZoomMonth   ZoomMode = "month"
	ZoomQuarter ZoomMode = "quarter"
)

// ZoomModes lists the modes from finest to coarsest.
var ZoomModes = []ZoomMode{ZoomDay, ZoomWeek, ZoomMonth, ZoomQuarter}

func (z ZoomMode) IsValid() bool {
	switch z {
	case ZoomDay, ZoomWeek, ZoomMonth, ZoomQuarter:
		return true
	}
	return false
}

// ParseZoom converts a user supplied string to a ZoomMode.
func ParseZoom(s string) (ZoomMode, error) {
	z := ZoomMode(s)
	if !z.IsValid() {
		return "", domain.NewValidationError("zoom", "must be one of day, week, month, quarter (got %q)", s)
	}
	return z, nil
}

// Finer returns the next finer zoom, or z itself at the finest level.
func (z ZoomMode) Finer() ZoomMode {
	for i, m := range ZoomModes {
		if m == z && i > 0 {
			return ZoomModes[i-1]
		}
	}
	return z
}

// Coarser returns the next coarser zoom, or z itself at the coarsest level.
func (z ZoomMode) Coarser() ZoomMode {
	for i, m := range ZoomModes {
		if m == z && i < len(ZoomModes)-1 {
			return ZoomModes[i+1]
		}
	}
	return z
}

const (
	emptyWindowDays = 90
	padBeforeDays   = 7
	padAfterDays    = 14
)

// LayoutConfig holds the pixel constants used by the layout engine and the
// dependency router.
type LayoutConfig struct {
	PixelsPerDay  map[ZoomMode]int
	RowHeight     int
	BarMargin     int
	MilestoneSize int
	RouteOffset   int
	ArrowSize     int
}

// DefaultLayoutConfig returns the stock pixel scale.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PixelsPerDay: map[ZoomMode]int{
			ZoomDay:     30,
			ZoomWeek:    20,
			ZoomMonth:   8,
			ZoomQuarter: 4,
		},
		RowHeight:     32,
		BarMargin:     4,
		MilestoneSize: 12,
		RouteOffset:   12,
		ArrowSize:     5,
	}
}

// Engine computes layouts and boards. The zero value is not usable; use NewEngine.
type Engine struct {
	cfg LayoutConfig
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for the empty-project window.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine using cfg. Missing per-zoom scales fall back to
// the defaults.
func NewEngine(cfg LayoutConfig, opts ...Option) *Engine {
	def := DefaultLayoutConfig()
	scale := make(map[ZoomMode]int, len(def.PixelsPerDay))
	for z, v := range def.PixelsPerDay {
		scale[z] = v
		if c, ok := cfg.PixelsPerDay[z]; ok && c > 0 {
			scale[z] = c
		}
	}
	cfg.PixelsPerDay = scale
	if cfg.RowHeight <= 0 {
		cfg.RowHeight = def.RowHeight
	}
	if cfg.BarMargin < 0 {
		cfg.BarMargin = 0
	}
	if cfg.MilestoneSize <= 0 {
		cfg.MilestoneSize = def.MilestoneSize
	}
	if cfg.RouteOffset <= 0 {
		cfg.RouteOffset = def.RouteOffset
	}
	if cfg.ArrowSize <= 0 {
		cfg.ArrowSize = def.ArrowSize
	}
	e := &Engine{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective layout configuration.
func (e *Engine) Config() LayoutConfig { return e.cfg }

// Header is one timeline bucket.
type Header struct {
	Label string    `json:"label"`
	Group string    `json:"group"`
	Start time.Time `json:"start"`
	Days  int       `json:"days"`
	Left  int       `json:"left"`
	Width int       `json:"width"`
}

// BarGeometry is the horizontal placement of a task bar.
type BarGeometry struct {
	TaskID    string `json:"taskId"`
	Left      int    `json:"left"`
	Width     int    `json:"width"`
	Milestone bool   `json:"milestone,omitempty"`
	Undated   bool   `json:"undated,omitempty"`
}

// Right is the x coordinate of the bar's trailing edge.
func (b BarGeometry) Right() int { return b.Left + b.Width }

// Layout is the result of ComputeLayout.
type Layout struct {
	Zoom         ZoomMode               `json:"zoom"`
	WindowStart  time.Time              `json:"windowStart"`
	WindowEnd    time.Time              `json:"windowEnd"` // exclusive
	TotalDays    int                    `json:"totalDays"`
	PixelsPerDay int                    `json:"pixelsPerDay"`
	TotalWidth   int                    `json:"totalWidth"`
	Headers      []Header               `json:"headers"`
	Bars         map[string]BarGeometry `json:"bars"`

	rowHeight     int
	milestoneSize int
}

// Geometry is a bar placed on a row.
type Geometry struct {
	BarGeometry
	Row    int `json:"row"`
	Top    int `json:"top"`
	Height int `json:"height"`
}

// ComputeLayout derives the padded date window, header buckets and bar
// geometry for tasks at the given zoom.
func (e *Engine) ComputeLayout(tasks []*domain.Task, zoom ZoomMode) (*Layout, error) {
	if !zoom.IsValid() {
		return nil, domain.NewValidationError("zoom", "unknown zoom mode %q", zoom)
	}
	ppd := e.cfg.PixelsPerDay[zoom]

	start, end := e.window(tasks)
	total := domain.DaysBetween(start, end)

	l := &Layout{
		Zoom:          zoom,
		WindowStart:   start,
		WindowEnd:     end,
		TotalDays:     total,
		PixelsPerDay:  ppd,
		TotalWidth:    total * ppd,
		Bars:          make(map[string]BarGeometry, len(tasks)),
		rowHeight:     e.cfg.RowHeight,
		milestoneSize: e.cfg.MilestoneSize,
	}
	l.Headers = buildHeaders(zoom, start, end, ppd)

	for _, t := range tasks {
		if t == nil {
			continue
		}
		l.Bars[t.ID] = e.bar(t, start, ppd)
	}
	return l, nil
}

func (e *Engine) bar(t *domain.Task, windowStart time.Time, ppd int) BarGeometry {
	b := BarGeometry{TaskID: t.ID}
	if t.PlannedStart == nil || (t.PlannedEnd == nil && !t.IsMilestone()) {
		b.Undated = true
		return b
	}
	b.Left = domain.DaysBetween(windowStart, *t.PlannedStart) * ppd
	if t.IsMilestone() {
		b.Milestone = true
		b.Width = e.cfg.MilestoneSize
		return b
	}
	days := domain.DaysBetween(*t.PlannedStart, *t.PlannedEnd)
	b.Width = max(1, days)*ppd - e.cfg.BarMargin
	if b.Width < 1 {
		b.Width = 1
	}
	return b
}

// window returns the padded [start, end) range covering tasks.
func (e *Engine) window(tasks []*domain.Task) (time.Time, time.Time) {
	var lo, hi time.Time
	found := false
	for _, t := range tasks {
		if t == nil || t.PlannedStart == nil {
			continue
		}
		s := domain.TruncateDay(*t.PlannedStart)
		en := s
		if t.PlannedEnd != nil {
			en = domain.TruncateDay(*t.PlannedEnd)
		}
		if !found || s.Before(lo) {
			lo = s
		}
		if !found || en.After(hi) {
			hi = en
		}
		found = true
	}
	if !found {
		start := firstOfMonth(domain.TruncateDay(e.now()))
		return start, start.AddDate(0, 0, emptyWindowDays)
	}
	return firstOfMonth(lo).AddDate(0, 0, -padBeforeDays),
		firstOfMonth(hi).AddDate(0, 1, padAfterDays)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func buildHeaders(zoom ZoomMode, start, end time.Time, ppd int) []Header {
	var headers []Header
	add := func(from, to time.Time, label, group string) {
		days := domain.DaysBetween(from, to)
		headers = append(headers, Header{
			Label: label,
			Group: group,
			Start: from,
			Days:  days,
			Left:  domain.DaysBetween(start, from) * ppd,
			Width: days * ppd,
		})
	}

	switch zoom {
	case ZoomDay:
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			add(d, d.AddDate(0, 0, 1), fmt.Sprintf("%d", d.Day()), d.Format("Jan 2006"))
		}
	case ZoomWeek:
		for d := start; d.Before(end); {
			next := d.AddDate(0, 0, 7-int(d.Weekday()))
			if next.After(end) {
				next = end
			}
			add(d, next, d.Format("Jan 2"), d.Format("Jan 2006"))
			d = next
		}
	case ZoomMonth, ZoomQuarter:
		for d := start; d.Before(end); {
			next := firstOfMonth(d).AddDate(0, 1, 0)
			if next.After(end) {
				next = end
			}
			group := d.Format("2006")
			if zoom == ZoomQuarter {
				group = fmt.Sprintf("Q%d %d", (int(d.Month())-1)/3+1, d.Year())
			}
			add(d, next, d.Format("Jan"), group)
			d = next
		}
	}
	return headers
}

// Geometry places every row's bar vertically. The result is indexed like rows.
func (l *Layout) Geometry(rows []Row) []Geometry {
	out := make([]Geometry, len(rows))
	for i, r := range rows {
		b, ok := l.Bars[r.Task.ID]
		if !ok {
			b = BarGeometry{TaskID: r.Task.ID, Undated: true}
		}
		out[i] = Geometry{
			BarGeometry: b,
			Row:         i,
			Top:         i * l.rowHeight,
			Height:      l.rowHeight,
		}
	}
	return out
}

// RowHeight returns the vertical pitch used by Geometry.
func (l *Layout) RowHeight() int { return l.rowHeight }

// X returns the pixel offset of t from the window start.
func (l *Layout) X(t time.Time) int {
	return domain.DaysBetween(l.WindowStart, t) * l.PixelsPerDay
}
