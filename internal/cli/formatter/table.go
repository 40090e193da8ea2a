package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableOption adjusts RenderTable.
type TableOption func(*tableConfig)

type tableConfig struct {
	right map[int]bool
	gap   int
}

// AlignRight right-aligns the given column indexes, typically numbers.
func AlignRight(cols ...int) TableOption {
	return func(c *tableConfig) {
		for _, i := range cols {
			c.right[i] = true
		}
	}
}

// RenderTable renders an aligned table with a header separator line.
// Widths are measured in display cells so styled cells line up.
func RenderTable(headers []string, rows [][]string, opts ...TableOption) string {
	if len(headers) == 0 {
		return ""
	}
	cfg := tableConfig{right: map[int]bool{}, gap: 2}
	for _, o := range opts {
		o(&cfg)
	}

	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	cell := func(s string, i int) string {
		pad := widths[i] - lipgloss.Width(s)
		if pad < 0 {
			pad = 0
		}
		if cfg.right[i] {
			return strings.Repeat(" ", pad) + s
		}
		if i == cols-1 {
			return s
		}
		return s + strings.Repeat(" ", pad)
	}
	sep := strings.Repeat(" ", cfg.gap)

	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(cell(StyleHeader.Render(h), i))
	}
	b.WriteString("\n")

	for i, w := range widths {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
	}
	b.WriteString("\n")

	for _, row := range rows {
		for i := 0; i < cols; i++ {
			if i > 0 {
				b.WriteString(sep)
			}
			v := ""
			if i < len(row) {
				v = row[i]
			}
			b.WriteString(cell(v, i))
		}
		b.WriteString("\n")
	}
	return b.String()
}
