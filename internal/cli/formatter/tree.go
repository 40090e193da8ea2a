package formatter

import (
	"strings"

	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/charmbracelet/lipgloss"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "
)

// TreePrefixes returns the box-drawing prefix for each flattened row. Roots
// get no prefix; deeper rows continue their ancestors' pipes.
func TreePrefixes(rows []gantt.Row) []string {
	out := make([]string, len(rows))
	var lastAt []bool // lastAt[level] is IsLast of the open ancestor at that level
	for i, r := range rows {
		if r.Level >= len(lastAt) {
			lastAt = append(lastAt, make([]bool, r.Level-len(lastAt)+1)...)
		}
		lastAt[r.Level] = r.IsLast
		if r.Level == 0 {
			continue
		}
		var b strings.Builder
		for l := 1; l < r.Level; l++ {
			if lastAt[l] {
				b.WriteString(treeSpace)
			} else {
				b.WriteString(treePipe)
			}
		}
		if r.IsLast {
			b.WriteString(treeCorner)
		} else {
			b.WriteString(treeBranch)
		}
		out[i] = b.String()
	}
	return out
}

// TreeLabel is the marker, WBS code and name of a row without tree prefix.
func TreeLabel(r gantt.Row) string {
	marker := "  "
	switch {
	case r.HasChildren && r.Expanded:
		marker = "▾ "
	case r.HasChildren:
		marker = "▸ "
	}
	code := r.Task.WBSCode
	if code == "" {
		code = "?"
	}
	return marker + Dim(code) + " " + r.Task.Name
}

// RenderTree renders the rows as an indented WBS tree with right-aligned
// progress and date badges.
func RenderTree(rows []gantt.Row, progress map[string]int) string {
	if len(rows) == 0 {
		return ""
	}
	prefixes := TreePrefixes(rows)

	contents := make([]string, len(rows))
	width := 0
	for i, r := range rows {
		label := TreeLabel(r)
		if r.HasChildren {
			label = StyleBold.Render(label)
		}
		contents[i] = Dim(prefixes[i]) + label
		if w := lipgloss.Width(contents[i]); w > width {
			width = w
		}
	}

	var b strings.Builder
	for i, r := range rows {
		pct, ok := progress[r.Task.ID]
		if !ok {
			pct = r.Task.PercentComplete
		}
		b.WriteString(PadRight(contents[i], width))
		b.WriteString("  ")
		b.WriteString(RenderProgress(pct, 10))
		b.WriteString("  ")
		b.WriteString(DateRange(r.Task))
		b.WriteString("\n")
	}
	return b.String()
}
