package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteText prints t as a whitespace-aligned table headed by its title.
func WriteText(w io.Writer, t Table) error {
	width := t.Precision + 8
	for _, c := range t.Columns {
		width = max(width, len(c)+1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s (%s)\n", t.Title, t.Unit)
	fmt.Fprintf(&b, "%-6s", "Year")
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "%*s", width, c)
	}
	b.WriteString("\n")
	for i, y := range t.Years {
		fmt.Fprintf(&b, "%-6d", y)
		for _, v := range t.Rows[i] {
			fmt.Fprintf(&b, "%*.*f", width, t.Precision, v)
		}
		b.WriteString("\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing table %s: %w", t.Name, err)
	}
	return nil
}
