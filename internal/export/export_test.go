package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
	"github.com/alexanderramin/obra/internal/testutil"
)

func sampleBoard(t *testing.T) *gantt.Board {
	t.Helper()
	d := testutil.Date
	phase := testutil.NewTestTask("p1", "Estructura",
		testutil.WithKind(domain.KindPhase), testutil.WithOrder(1, "1"))
	cols := testutil.NewTestTask("p1", "Columnas <PB>",
		testutil.WithParent(phase), testutil.WithOrder(1, "1.1"),
		testutil.WithDates(d(2024, time.March, 4), d(2024, time.March, 15)), testutil.WithPercent(60))
	slab := testutil.NewTestTask("p1", "Losa",
		testutil.WithParent(phase), testutil.WithOrder(2, "1.2"),
		testutil.WithDates(d(2024, time.March, 18), d(2024, time.March, 29)))
	done := testutil.NewTestTask("p1", "Estructura terminada",
		testutil.WithKind(domain.KindMilestone), testutil.WithOrder(2, "2"),
		testutil.WithDates(d(2024, time.April, 1), d(2024, time.April, 1)))
	tasks := []*domain.Task{phase, cols, slab, done}
	deps := []*domain.Dependency{
		testutil.NewTestDependency("p1", cols.ID, slab.ID),
		testutil.NewTestDependency("p1", slab.ID, done.ID),
	}

	engine := gantt.NewEngine(gantt.DefaultLayoutConfig())
	b, err := engine.Build(gantt.BoardInput{
		Tasks:        tasks,
		Dependencies: deps,
		Zoom:         gantt.ZoomDay,
		Expanded:     gantt.ExpandAll(tasks),
	})
	require.NoError(t, err)
	require.Len(t, b.Rows, 4)
	require.Len(t, b.Paths, 2)
	return b
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" SVG ")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)

	f, err = FormatFromPath("out/obra.PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = FormatFromPath("obra.txt")
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "format", ve.Field)

	_, err = FormatFromPath("obra")
	assert.Error(t, err)
}

func TestWriteSVG(t *testing.T) {
	b := sampleBoard(t)
	var buf bytes.Buffer

	require.NoError(t, WriteSVG(&buf, b, Options{Title: "Edificio Norte"}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Contains(t, out, "</svg>")
	assert.Contains(t, out, "Edificio Norte")
	assert.Contains(t, out, "1.1 Columnas &lt;PB&gt;", "labels are escaped")
	assert.Equal(t, 2, strings.Count(out, "<polyline"), "one connector per dependency")
	assert.Contains(t, out, progressColor, "partial progress is drawn")
}

func TestWritePNG(t *testing.T) {
	b := sampleBoard(t)
	var buf bytes.Buffer

	require.NoError(t, WritePNG(&buf, b, Options{LabelWidth: 200}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 200+b.Layout.TotalWidth+margin, bounds.Dx())
	assert.Greater(t, bounds.Dy(), 4*b.Layout.RowHeight())
}

func TestWriteJSON(t *testing.T) {
	b := sampleBoard(t)
	var buf bytes.Buffer

	require.NoError(t, WriteJSON(&buf, b, Options{Title: "EDN01"}))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "EDN01", doc.Title)
	assert.Equal(t, gantt.ZoomDay, doc.Zoom)
	assert.Equal(t, "2024-02-23", doc.WindowStart)
	require.Len(t, doc.Rows, 4)
	assert.Equal(t, "1", doc.Rows[0].Task.WBSCode)
	assert.True(t, doc.Rows[0].HasChildren)
	assert.Equal(t, 30, doc.Rows[0].Progress, "phase shows rolled-up progress")
	assert.True(t, doc.Rows[3].Geometry.Milestone)
	assert.Len(t, doc.Paths, 2)
}

func TestSave(t *testing.T) {
	b := sampleBoard(t)
	dir := t.TempDir()

	for _, name := range []string{"board.svg", "board.png", "board.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, "", b, Options{}))
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}

	err := Save(filepath.Join(dir, "board.txt"), "", b, Options{})
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "board.txt"))
	assert.True(t, os.IsNotExist(statErr), "nothing written for an unknown format")

	require.NoError(t, Save(filepath.Join(dir, "snapshot"), FormatJSON, b, Options{}))
}

func TestWrite_NilBoard(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, FormatSVG, nil, Options{}))
	assert.Error(t, Write(&buf, FormatJSON, &gantt.Board{}, Options{}))
	assert.Error(t, Write(&buf, Format("pdf"), nil, Options{}))
}
