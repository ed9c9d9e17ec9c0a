package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the seat count and seat positions in node labels.
	// When false, only the entry ID is shown.
	Detailed bool

	// Fills maps entry IDs to fill colours. Entries without a fill are white.
	Fills map[string]string
}

// Link is a pair of entries whose seat blocks touch.
type Link struct {
	A, B string
}

// Links returns every pair of distinct entries with at least one pair of
// adjacent seats, ordered by the position of the entries in the assignment.
func Links(a *hemicycle.Assignment) []Link {
	g := a.Grid()
	entries := a.Entries()
	pos := make(map[string]int, len(entries))
	for i, e := range entries {
		pos[e.ID] = i
	}

	seen := make(map[Link]bool)
	placements := a.Slots()
	for i, p := range placements {
		for _, q := range placements[i+1:] {
			if p.Entry == q.Entry || !g.Adjacent(p.Slot, q.Slot) {
				continue
			}
			l := Link{A: p.Entry, B: q.Entry}
			if pos[l.A] > pos[l.B] {
				l.A, l.B = l.B, l.A
			}
			seen[l] = true
		}
	}

	links := make([]Link, 0, len(seen))
	for l := range seen {
		links = append(links, l)
	}
	slices.SortFunc(links, func(x, y Link) int {
		if d := pos[x.A] - pos[y.A]; d != 0 {
			return d
		}
		return pos[x.B] - pos[y.B]
	})
	return links
}

// ToDOT converts an assignment to an undirected Graphviz graph with one node
// per entry and one edge per pair of touching entries. The result can be
// rendered with [RenderSVG].
func ToDOT(a *hemicycle.Assignment, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, e := range a.Entries() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(a, e, opts.Detailed))}
		if fill, ok := opts.Fills[e.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range Links(a) {
		fmt.Fprintf(&buf, "  %q -- %q;\n", l.A, l.B)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(a *hemicycle.Assignment, e hemicycle.Entry, detailed bool) string {
	if !detailed {
		return e.ID
	}
	slots := a.EntrySlots(e.ID)
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.String()
	}
	return fmt.Sprintf("%s\nseats: %d\n%s", e.ID, len(slots), strings.Join(parts, " "))
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
