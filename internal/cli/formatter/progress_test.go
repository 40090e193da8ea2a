package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name  string
		pct   int
		width int
		want  string
	}{
		{"empty", 0, 4, "[░░░░]   0%"},
		{"half", 50, 4, "[██░░]  50%"},
		{"full", 100, 4, "[████] 100%"},
		{"clamps high", 150, 4, "[████] 100%"},
		{"clamps low", -5, 4, "[░░░░]   0%"},
		{"min width", 50, 1, "[█░]  50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripANSI(RenderProgress(tt.pct, tt.width)))
		})
	}
}
