package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/hemicycle/pkg/config"
	"github.com/matzehuels/hemicycle/pkg/core/seatbar"
	"github.com/matzehuels/hemicycle/pkg/frame"
)

const (
	dotGlyph = "●"
	barGlyph = "█"

	// barWidth is the width in cells of a full seat bar.
	barWidth = 40
)

// sides names the three seat bars of a frame.
type sides struct {
	Left, Middle, Right string
}

// sideNames labels the bars after the first party on each side.
func sideNames(cfg *config.Config) sides {
	s := sides{Left: config.SideLeft, Middle: cfg.Other.Label, Right: config.SideRight}
	var haveLeft, haveRight bool
	for _, p := range cfg.Parties {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		switch {
		case p.Side == config.SideLeft && !haveLeft:
			s.Left, haveLeft = name, true
		case p.Side == config.SideRight && !haveRight:
			s.Right, haveRight = name, true
		}
	}
	return s
}

// renderDots draws the dots of f back row first, each row centred and every
// dot coloured with its fill.
func renderDots(f frame.Frame) string {
	var rows [][]frame.Dot
	for _, d := range f.Dots {
		for len(rows) <= d.Row {
			rows = append(rows, nil)
		}
		rows[d.Row] = append(rows[d.Row], d)
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var b strings.Builder
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		slices.SortFunc(r, func(a, b frame.Dot) int { return a.Index - b.Index })
		b.WriteString(strings.Repeat(" ", width-len(r)))
		for j, d := range r {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(d.Fill)).Render(dotGlyph))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// renderBar draws segments scaled so that total seats span width cells.
// Negative segments are drawn by their magnitude.
func renderBar(segs []seatbar.Segment, total, width int) string {
	if total <= 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segs {
		n := abs(s.Size) * width / total
		if n == 0 {
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat(barGlyph, n)))
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// renderBars tabulates the seat and change bars of f.
func renderBars(f frame.Frame, names sides) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := [][]string{
		{names.Left, f.Left.Label, f.LeftChange.Label, renderBar(f.Left.Segments, f.Seats, barWidth)},
		{names.Middle, f.Middle.Label, "", renderBar(f.Middle.Segments, f.Seats, barWidth)},
		{names.Right, f.Right.Label, f.RightChange.Label, renderBar(f.Right.Segments, f.Seats, barWidth)},
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Seats", "Change", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 || col == 2 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}

// progressLine summarises how many seats have reported.
func progressLine(f frame.Frame) string {
	pct := 0.0
	if f.Seats > 0 {
		pct = 100 * float64(f.Reporting) / float64(f.Seats)
	}
	return fmt.Sprintf("%d/%d seats reporting (%.0f%%) · %d updates", f.Reporting, f.Seats, pct, f.Updates)
}
