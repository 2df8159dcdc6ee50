package render

import (
	"fmt"
	"io"
	"strings"
)

// TextOptions control terminal rendering
type TextOptions struct {
	// Color enables 24-bit ANSI background colours; otherwise collection
	// days carry a letter marker matching the legend.
	Color bool
	// MonthsPerRow defaults to PageCols
	MonthsPerRow int
}

const monthTextWidth = WeekdayCols * 3

// WriteText writes cal as month grids of plain or ANSI-coloured text
func WriteText(w io.Writer, cal *Calendar, opts TextOptions) error {
	perRow := opts.MonthsPerRow
	if perRow <= 0 {
		perRow = PageCols
	}

	var b strings.Builder
	b.WriteString(cal.Title)
	b.WriteString("\n\n")

	for start := 0; start < len(cal.Months); start += perRow {
		end := min(start+perRow, len(cal.Months))
		block := cal.Months[start:end]

		lines := make([][]string, len(block))
		for i, m := range block {
			lines[i] = monthLines(m, opts.Color)
		}
		for row := 0; row < len(lines[0]); row++ {
			for i := range block {
				if i > 0 {
					b.WriteString("  ")
				}
				b.WriteString(lines[i][row])
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for i, le := range cal.Legend {
		marker := fmt.Sprintf("[%c]", routeMarker(i))
		if opts.Color {
			marker = ansiBackground(le, "   ")
		}
		b.WriteString(marker + " " + le.Label)
		if len(le.Streams) > 0 {
			b.WriteString(" (" + strings.Join(le.Streams, ", ") + ")")
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func monthLines(m Month, color bool) []string {
	lines := make([]string, 0, 2+MaxMonthRows)
	lines = append(lines, center(m.Name, monthTextWidth))

	var head strings.Builder
	for _, n := range WeekdayNames {
		head.WriteString(n + " ")
	}
	lines = append(lines, head.String())

	grid := make([][]string, MaxMonthRows)
	for r := range grid {
		grid[r] = make([]string, WeekdayCols)
		for c := range grid[r] {
			grid[r][c] = "   "
		}
	}
	for _, c := range m.Cells {
		s := fmt.Sprintf("%2d ", c.Day)
		if c.Highlighted() {
			if color {
				s = ansiCell(c.Route, c.Day)
			} else {
				s = fmt.Sprintf("%2d%c", c.Day, routeMarker(c.Route))
			}
		}
		grid[c.Row][c.Col] = s
	}
	for _, row := range grid {
		lines = append(lines, strings.Join(row, ""))
	}
	return lines
}

func ansiCell(route, day int) string {
	c := PaletteColor(route)
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm\x1b[97m%2d\x1b[0m ", c.R, c.G, c.B, day)
}

func ansiBackground(le LegendEntry, s string) string {
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm%s\x1b[0m", le.Color.R, le.Color.G, le.Color.B, s)
}

func routeMarker(i int) rune {
	return rune('a' + i%26)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}
