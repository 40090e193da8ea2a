// Package export writes Gantt boards as SVG, PNG or JSON snapshots.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/obra/internal/domain"
	"github.com/alexanderramin/obra/internal/gantt"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// ParseFormat accepts svg, png or json in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatSVG, FormatPNG, FormatJSON:
		return f, nil
	}
	return "", domain.NewValidationError("format", "must be svg, png or json (got %q)", s)
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", domain.NewValidationError("format", "cannot infer format from %q", path)
	}
	return ParseFormat(ext)
}

// Write encodes b to w in the given format.
func Write(w io.Writer, format Format, b *gantt.Board, opts Options) error {
	switch format {
	case FormatSVG:
		return WriteSVG(w, b, opts)
	case FormatPNG:
		return WritePNG(w, b, opts)
	case FormatJSON:
		return WriteJSON(w, b, opts)
	}
	return domain.NewValidationError("format", "unsupported format %q", format)
}

// Save writes a snapshot to path. An empty format is inferred from the
// extension.
func Save(path string, format Format, b *gantt.Board, opts Options) (err error) {
	if format == "" {
		if format, err = FormatFromPath(path); err != nil {
			return err
		}
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, format, b, opts); err != nil {
		return fmt.Errorf("writing %s snapshot: %w", format, err)
	}
	return bw.Flush()
}

// Document is the JSON snapshot: the board flattened into rows that carry
// their task, rolled-up progress and geometry.
type Document struct {
	Title        string         `json:"title,omitempty"`
	Zoom         gantt.ZoomMode `json:"zoom"`
	WindowStart  string         `json:"windowStart"`
	WindowEnd    string         `json:"windowEnd"`
	PixelsPerDay int            `json:"pixelsPerDay"`
	TotalWidth   int            `json:"totalWidth"`
	RowHeight    int            `json:"rowHeight"`
	Headers      []gantt.Header `json:"headers"`
	Rows         []DocumentRow  `json:"rows"`
	Paths        []gantt.Path   `json:"paths"`
	Cycles       [][]string     `json:"cycles,omitempty"`
	Warnings     []string       `json:"warnings,omitempty"`
}

// DocumentRow is one visible row of a Document.
type DocumentRow struct {
	Task        *domain.Task   `json:"task"`
	Level       int            `json:"level"`
	HasChildren bool           `json:"hasChildren"`
	Expanded    bool           `json:"expanded"`
	Progress    int            `json:"progress"`
	Geometry    gantt.Geometry `json:"geometry"`
}

// NewDocument converts a board to its JSON snapshot form.
func NewDocument(b *gantt.Board, opts Options) (*Document, error) {
	if b == nil || b.Layout == nil {
		return nil, fmt.Errorf("board has no layout")
	}
	doc := &Document{
		Title:        opts.Title,
		Zoom:         b.Zoom,
		WindowStart:  b.Layout.WindowStart.Format(time.DateOnly),
		WindowEnd:    b.Layout.WindowEnd.Format(time.DateOnly),
		PixelsPerDay: b.Layout.PixelsPerDay,
		TotalWidth:   b.Layout.TotalWidth,
		RowHeight:    b.Layout.RowHeight(),
		Headers:      b.Layout.Headers,
		Rows:         make([]DocumentRow, 0, len(b.Rows)),
		Paths:        b.Paths,
		Cycles:       b.Cycles,
	}
	if doc.Paths == nil {
		doc.Paths = []gantt.Path{}
	}
	for i, r := range b.Rows {
		if i >= len(b.Geometry) {
			break
		}
		pct := r.Task.PercentComplete
		if p, ok := b.Progress[r.Task.ID]; ok {
			pct = p
		}
		doc.Rows = append(doc.Rows, DocumentRow{
			Task:        r.Task,
			Level:       r.Level,
			HasChildren: r.HasChildren,
			Expanded:    r.Expanded,
			Progress:    pct,
			Geometry:    b.Geometry[i],
		})
	}
	for _, w := range b.Warnings {
		doc.Warnings = append(doc.Warnings, w.Error())
	}
	return doc, nil
}

// WriteJSON writes the board as an indented Document.
func WriteJSON(w io.Writer, b *gantt.Board, opts Options) error {
	doc, err := NewDocument(b, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
