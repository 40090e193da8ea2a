package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/obra/internal/cli/formatter"
	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ganttChrome is the number of lines around the scrolling rows: title, blank,
// three header lines and the help footer.
const ganttChrome = 6

type ganttKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Quit        key.Binding
}

func defaultGanttKeys() ganttKeyMap {
	return ganttKeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys("enter", " ", "right", "left"), key.WithHelp("enter", "expand/collapse")),
		ZoomIn:      key.NewBinding(key.WithKeys("z", "+"), key.WithHelp("z", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("Z", "-"), key.WithHelp("Z", "zoom out")),
		ExpandAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "expand all")),
		CollapseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "collapse all")),
		Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k ganttKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.ZoomIn, k.ZoomOut, k.ExpandAll, k.CollapseAll, k.Quit}
}

// boardLoadedMsg carries a recomputed board.
type boardLoadedMsg struct {
	board *gantt.Board
	err   error
}

// ganttView is the interactive Gantt chart. It owns the expansion state and
// re-requests the board whenever expansion or zoom changes.
type ganttView struct {
	app       *App
	project   *domain.Project
	zoom      gantt.ZoomMode
	weighting gantt.Weighting
	expanded  gantt.ExpansionSet
	expandAll bool // first load only

	board    *gantt.Board
	cursor   int
	cursorID string
	header   []string

	width    int
	height   int
	viewport viewport.Model
	ready    bool
	loading  bool
	err      error
	keys     ganttKeyMap
}

func newGanttView(app *App, p *domain.Project, req service.BoardRequest) *ganttView {
	expanded := req.Expanded
	if expanded == nil {
		expanded = gantt.NewExpansionSet()
	}
	return &ganttView{
		app:       app,
		project:   p,
		zoom:      req.Zoom,
		weighting: req.Weighting,
		expanded:  expanded,
		expandAll: req.ExpandAll,
		loading:   true,
		keys:      defaultGanttKeys(),
		width:     120,
	}
}

func (v *ganttView) Init() tea.Cmd {
	return v.load()
}

func (v *ganttView) load() tea.Cmd {
	v.loading = true
	app := v.app
	projectID := v.project.ID
	req := service.BoardRequest{
		Zoom:      v.zoom,
		Weighting: v.weighting,
		ExpandAll: v.expandAll,
		Expanded:  make(gantt.ExpansionSet, len(v.expanded)),
	}
	for id, open := range v.expanded {
		req.Expanded[id] = open
	}
	return func() tea.Msg {
		b, err := app.Schedule.Board(context.Background(), projectID, req)
		return boardLoadedMsg{board: b, err: err}
	}
}

func (v *ganttView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		h := msg.Height - ganttChrome
		if h < 1 {
			h = 1
		}
		if !v.ready {
			v.viewport = viewport.New(msg.Width, h)
			v.ready = true
		} else {
			v.viewport.Width = msg.Width
			v.viewport.Height = h
		}
		v.render()
		return v, nil

	case boardLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		v.board = msg.board
		if v.expandAll {
			v.expanded = expandable(msg.board)
			v.expandAll = false
		}
		v.restoreCursor()
		v.render()
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *ganttView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	if v.board == nil || v.loading {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Up):
		v.moveCursor(-1)
	case key.Matches(msg, v.keys.Down):
		v.moveCursor(1)
	case key.Matches(msg, v.keys.Toggle):
		if v.cursor >= len(v.board.Rows) {
			return v, nil
		}
		row := v.board.Rows[v.cursor]
		if !row.HasChildren {
			return v, nil
		}
		switch msg.String() {
		case "right":
			if row.Expanded {
				return v, nil
			}
		case "left":
			if !row.Expanded {
				return v, nil
			}
		}
		v.expanded.Toggle(row.Task.ID)
		return v, v.load()
	case key.Matches(msg, v.keys.ZoomIn):
		return v, v.setZoom(v.zoom.Finer())
	case key.Matches(msg, v.keys.ZoomOut):
		return v, v.setZoom(v.zoom.Coarser())
	case key.Matches(msg, v.keys.ExpandAll):
		v.expanded = expandable(v.board)
		return v, v.load()
	case key.Matches(msg, v.keys.CollapseAll):
		v.expanded = gantt.NewExpansionSet()
		return v, v.load()
	}
	return v, nil
}

func (v *ganttView) setZoom(z gantt.ZoomMode) tea.Cmd {
	if z == v.zoom {
		return nil
	}
	v.zoom = z
	return v.load()
}

func (v *ganttView) moveCursor(delta int) {
	n := len(v.board.Rows)
	if n == 0 {
		return
	}
	v.cursor += delta
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.cursor >= n {
		v.cursor = n - 1
	}
	v.cursorID = v.board.Rows[v.cursor].Task.ID
	v.render()
}

// restoreCursor keeps the cursor on the same task after a reload. When the
// task is no longer visible the cursor stays at its index.
func (v *ganttView) restoreCursor() {
	rows := v.board.Rows
	for i, r := range rows {
		if r.Task.ID == v.cursorID {
			v.cursor = i
			return
		}
	}
	if v.cursor >= len(rows) {
		v.cursor = len(rows) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if len(rows) > 0 {
		v.cursorID = rows[v.cursor].Task.ID
	}
}

func (v *ganttView) render() {
	if v.board == nil {
		return
	}
	today := v.app.now()
	chart := formatter.RenderGantt(v.board, formatter.GanttOptions{
		Width:  v.width,
		Cursor: v.cursor,
		Today:  &today,
	})
	v.header = chart.Header
	if !v.ready {
		return
	}
	v.viewport.SetContent(strings.Join(chart.Rows, "\n"))
	switch {
	case v.cursor < v.viewport.YOffset:
		v.viewport.SetYOffset(v.cursor)
	case v.cursor >= v.viewport.YOffset+v.viewport.Height:
		v.viewport.SetYOffset(v.cursor - v.viewport.Height + 1)
	}
}

func (v *ganttView) View() string {
	if v.err != nil {
		return formatter.StyleRed.Render(fmt.Sprintf("Error: %v", v.err)) + "\n"
	}
	if v.board == nil || !v.ready {
		return formatter.Dim("Loading…") + "\n"
	}

	var b strings.Builder
	b.WriteString(formatter.Bold(v.project.Name) + "  " + formatter.Dim(v.project.ShortID+" · "+string(v.zoom)) + "\n\n")
	if len(v.board.Rows) == 0 {
		b.WriteString(formatter.Dim("No tasks yet.") + "\n")
	} else {
		b.WriteString(strings.Join(v.header, "\n") + "\n")
		b.WriteString(v.viewport.View() + "\n")
	}
	b.WriteString(v.helpLine())
	return b.String()
}

func (v *ganttView) helpLine() string {
	parts := make([]string, 0, 8)
	for _, k := range v.keys.ShortHelp() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return formatter.Dim(strings.Join(parts, " · "))
}

// expandable returns an expansion set opening every task that has children.
func expandable(b *gantt.Board) gantt.ExpansionSet {
	s := gantt.NewExpansionSet()
	if b == nil || b.Tree() == nil {
		return s
	}
	for id, n := range b.Tree().ByID {
		if n.HasChildren {
			s[id] = true
		}
	}
	return s
}
