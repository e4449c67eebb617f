// Package report turns an edit script into human and machine readable
// output: a unified listing, a summary, a table, or JSON.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/sqldiff/pkg/diff"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

// Output formats.
const (
	FormatUnified = "unified"
	FormatSummary = "summary"
	FormatTable   = "table"
	FormatJSON    = "json"
)

// ErrUnknownFormat is returned for an output format Write does not know.
var ErrUnknownFormat = errors.New("unknown report format")

// Edit is one edit with its nodes located and rendered.
type Edit struct {
	Kind       diff.Kind `json:"kind"`
	Tag        node.Tag  `json:"tag"`
	SourcePath string    `json:"source_path,omitempty"`
	TargetPath string    `json:"target_path,omitempty"`
	Source     string    `json:"source,omitempty"`
	Target     string    `json:"target,omitempty"`
	Slots      []string  `json:"slots,omitempty"`
}

// Document is a complete diff report.
type Document struct {
	SourceLabel string           `json:"source_label,omitempty"`
	TargetLabel string           `json:"target_label,omitempty"`
	Dialect     string           `json:"dialect"`
	Edits       []Edit           `json:"edits"`
	Warnings    []render.Warning `json:"warnings,omitempty"`
	Summary     diff.Summary     `json:"summary"`
	Stats       diff.MatchStats  `json:"stats"`
}

// Options control how a document is written.
type Options struct {
	Format string
	Color  bool
}

// Build locates and renders every edit of result. Both trees are rendered in
// dialect; constructs the dialect cannot express end up in Warnings.
func Build(source, target *node.Node, result *diff.Result, dialect render.Dialect) *Document {
	renderer := render.New(dialect, nil)
	srcPaths, tgtPaths := node.Paths(source), node.Paths(target)

	doc := &Document{
		Dialect: dialect.String(),
		Edits:   make([]Edit, 0, len(result.Script)),
		Summary: result.Script.Summarize(),
		Stats:   result.Stats,
	}

	seen := make(map[render.Warning]bool)

	for _, root := range []*node.Node{source, target} {
		_, warnings := renderer.RenderWithWarnings(root)
		for _, warning := range warnings {
			if !seen[warning] {
				seen[warning] = true
				doc.Warnings = append(doc.Warnings, warning)
			}
		}
	}

	for _, edit := range result.Script {
		entry := Edit{Kind: edit.Kind, Tag: edit.Node().Tag, Slots: edit.Slots}

		if edit.Source != nil {
			entry.SourcePath = srcPaths[edit.Source]
			entry.Source, _ = renderer.RenderWithWarnings(edit.Source)
		}

		if edit.Target != nil {
			entry.TargetPath = tgtPaths[edit.Target]
			entry.Target, _ = renderer.RenderWithWarnings(edit.Target)
		}

		doc.Edits = append(doc.Edits, entry)
	}

	return doc
}

// Write renders doc to w in the requested format.
func Write(w io.Writer, doc *Document, opts Options) error {
	switch opts.Format {
	case FormatUnified, "":
		return writeUnified(w, doc, newPalette(opts.Color))
	case FormatSummary:
		return writeSummary(w, doc, newPalette(opts.Color))
	case FormatTable:
		return writeTable(w, doc)
	case FormatJSON:
		return writeJSON(w, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}
