package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/sqldiff/pkg/diff"
)

const percent = 100

func writeSummary(w io.Writer, doc *Document, pal *palette) error {
	var buf strings.Builder

	sum := doc.Summary
	stats := doc.Stats

	pal.header.Fprintf(&buf, "Diff Summary (%s):\n", doc.Dialect)
	fmt.Fprintf(&buf, "  changes:   %s\n", humanize.Comma(int64(sum.Changes())))
	fmt.Fprintf(&buf, "    %s %s\n", pal.kind(diff.KindRemove).Sprint("removed: "), humanize.Comma(int64(sum.Remove)))
	fmt.Fprintf(&buf, "    %s %s\n", pal.kind(diff.KindInsert).Sprint("inserted:"), humanize.Comma(int64(sum.Insert)))
	fmt.Fprintf(&buf, "    %s %s\n", pal.kind(diff.KindUpdate).Sprint("updated: "), humanize.Comma(int64(sum.Update)))
	fmt.Fprintf(&buf, "    %s %s\n", pal.kind(diff.KindMove).Sprint("moved:   "), humanize.Comma(int64(sum.Move)))
	fmt.Fprintf(&buf, "  unchanged: %s\n", humanize.Comma(int64(sum.Keep)))
	fmt.Fprintf(&buf, "  nodes:     %s source, %s target\n",
		humanize.Comma(int64(stats.Source)), humanize.Comma(int64(stats.Target)))
	fmt.Fprintf(&buf, "  matched:   %s (%s of source; %d pinned, %d exact, %d similar, %d top-down)\n",
		humanize.Comma(int64(stats.Matched())), ratio(stats.Matched(), stats.Source),
		stats.Seeded, stats.Exact, stats.Similar, stats.TopDown)

	for _, warning := range doc.Warnings {
		pal.warn.Fprintf(&buf, "  warning:   %s\n", warning)
	}

	_, err := io.WriteString(w, buf.String())
	if err != nil {
		return fmt.Errorf("write summary report: %w", err)
	}

	return nil
}

func ratio(part, whole int) string {
	if whole == 0 {
		return "0%"
	}

	return humanize.FtoaWithDigits(float64(part)*percent/float64(whole), 1) + "%"
}
