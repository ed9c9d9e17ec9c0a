package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/frame"
	"github.com/matzehuels/hemicycle/pkg/render/nodelink"
)

// Render renders a in the given format. Fills colours the nodes of the dot
// and svg formats and is ignored otherwise.
func Render(ctx context.Context, a *hemicycle.Assignment, format string, fills map[string]string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal assignment: %w", err)
		}
		return append(data, '\n'), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(a, nodelink.Options{Detailed: true, Fills: fills})), nil
	case FormatSVG:
		dot := nodelink.ToDOT(a, nodelink.Options{Fills: fills})
		data, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return data, nil
	}
	return []byte(Chart(a)), nil
}

// Chart returns the assignment as plain text, one line per row with the back
// row first, each seat shown as its entry ID.
func Chart(a *hemicycle.Assignment) string {
	g := a.Grid()
	rows := g.Rows()
	width := 0
	for _, e := range a.Entries() {
		width = max(width, len(e.ID))
	}

	var sb strings.Builder
	for r := len(rows) - 1; r >= 0; r-- {
		ids := make([]string, rows[r])
		for i := range ids {
			id, _ := a.At(hemicycle.Slot{Row: r, Index: i})
			ids[i] = fmt.Sprintf("%-*s", width, id)
		}
		fmt.Fprintf(&sb, "%2d  %s\n", r, strings.TrimRight(strings.Join(ids, " "), " "))
	}
	return sb.String()
}

// Fills returns the dot fill of every entry in f, keyed by entry ID.
func Fills(f frame.Frame) map[string]string {
	fills := make(map[string]string)
	for _, d := range f.Dots {
		fills[d.Entry] = d.Fill
	}
	return fills
}
