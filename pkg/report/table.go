package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// maxSQLWidth truncates long renderings in table cells.
const maxSQLWidth = 60

func writeTable(w io.Writer, doc *Document) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = true

	tbl.AppendHeader(table.Row{"Kind", "Tag", "Source", "Target", "SQL", "Slots"})

	for _, edit := range doc.Edits {
		sql := edit.Source
		if edit.Source == "" {
			sql = edit.Target
		}

		tbl.AppendRow(table.Row{
			edit.Kind.String(),
			string(edit.Tag),
			edit.SourcePath,
			edit.TargetPath,
			truncate(sql, maxSQLWidth),
			strings.Join(edit.Slots, ","),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d edits", len(doc.Edits))})

	_, err := io.WriteString(w, tbl.Render()+"\n")
	if err != nil {
		return fmt.Errorf("write table report: %w", err)
	}

	return nil
}

func truncate(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}

	return string(runes[:width-1]) + "…"
}
