package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/sqldiff/pkg/diff"
)

// markers prefix unified lines per edit kind.
var markers = map[diff.Kind]string{
	diff.KindRemove: "-",
	diff.KindInsert: "+",
	diff.KindUpdate: "~",
	diff.KindMove:   ">",
	diff.KindKeep:   " ",
}

func writeUnified(w io.Writer, doc *Document, pal *palette) error {
	var buf strings.Builder

	pal.header.Fprintf(&buf, "--- %s\n", labelOr(doc.SourceLabel, "source"))
	pal.header.Fprintf(&buf, "+++ %s\n", labelOr(doc.TargetLabel, "target"))
	pal.header.Fprintf(&buf, "@@ %s @@\n", countsLine(doc.Summary))

	for _, edit := range doc.Edits {
		line := fmt.Sprintf("%s %-6s %s  %s", markers[edit.Kind], edit.Kind, locate(edit), sqlText(edit, pal))
		if len(edit.Slots) > 0 {
			line += "  [" + strings.Join(edit.Slots, ", ") + "]"
		}

		buf.WriteString(pal.kind(edit.Kind).Sprint(line))
		buf.WriteByte('\n')
	}

	for _, warning := range doc.Warnings {
		pal.warn.Fprintf(&buf, "! %s\n", warning)
	}

	_, err := io.WriteString(w, buf.String())
	if err != nil {
		return fmt.Errorf("write unified report: %w", err)
	}

	return nil
}

func locate(edit Edit) string {
	switch {
	case edit.SourcePath == "":
		return edit.TargetPath
	case edit.TargetPath == "", edit.SourcePath == edit.TargetPath:
		return edit.SourcePath
	default:
		return edit.SourcePath + " -> " + edit.TargetPath
	}
}

func sqlText(edit Edit, pal *palette) string {
	switch edit.Kind {
	case diff.KindInsert:
		return edit.Target
	case diff.KindUpdate:
		return inlineDiff(edit.Source, edit.Target, pal)
	case diff.KindRemove, diff.KindMove, diff.KindKeep:
	}

	return edit.Source
}

// inlineDiff marks character-level changes between two renderings as
// [-removed-]{+added+}.
func inlineDiff(before, after string, pal *palette) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	var buf strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			buf.WriteString(pal.del.Sprint("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			buf.WriteString(pal.ins.Sprint("{+" + d.Text + "+}"))
		case diffmatchpatch.DiffEqual:
			buf.WriteString(d.Text)
		}
	}

	return buf.String()
}

func countsLine(summary diff.Summary) string {
	return fmt.Sprintf("-%d +%d ~%d >%d =%d", summary.Remove, summary.Insert, summary.Update, summary.Move, summary.Keep)
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}

	return label
}
