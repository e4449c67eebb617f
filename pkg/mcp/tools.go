package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/sqldiff/pkg/diff"
	"github.com/Sumatoshi-tech/sqldiff/pkg/report"
	"github.com/Sumatoshi-tech/sqldiff/pkg/service"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/render"
)

// Tool name constants.
const (
	ToolNameDiff     = "sql_tree_diff"
	ToolNameRender   = "sql_tree_render"
	ToolNameValidate = "sql_tree_validate"
)

// MaxDocumentBytes is the maximum allowed size of one inline tree document (4 MB).
const MaxDocumentBytes = 4 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptySource indicates the source parameter is empty.
	ErrEmptySource = errors.New("source parameter is required and must not be empty")
	// ErrEmptyTarget indicates the target parameter is empty.
	ErrEmptyTarget = errors.New("target parameter is required and must not be empty")
	// ErrEmptyTree indicates the tree parameter is empty.
	ErrEmptyTree = errors.New("tree parameter is required and must not be empty")
	// ErrDocumentTooLarge indicates a document exceeds MaxDocumentBytes.
	ErrDocumentTooLarge = errors.New("tree document exceeds maximum size")
)

// Input types (auto-generate JSON schemas via struct tags).

// DiffInput is the input schema for the sql_tree_diff tool.
type DiffInput struct {
	Source    string                 `json:"source"               jsonschema:"source tree document as a JSON string"`
	Target    string                 `json:"target"               jsonschema:"target tree document as a JSON string"`
	Dialect   string                 `json:"dialect,omitempty"    jsonschema:"SQL dialect used for rendering (default: ansi)"`
	Matchings []service.MatchingPath `json:"matchings,omitempty"  jsonschema:"optional node pairs to pin before matching (paths like /expressions[0])"`
	DeltaOnly bool                   `json:"delta_only,omitempty" jsonschema:"omit keep edits from the result"`
}

// RenderInput is the input schema for the sql_tree_render tool.
type RenderInput struct {
	Tree    string `json:"tree"              jsonschema:"tree document as a JSON string"`
	Dialect string `json:"dialect,omitempty" jsonschema:"SQL dialect (default: ansi)"`
}

// ValidateInput is the input schema for the sql_tree_validate tool.
type ValidateInput struct {
	Tree string `json:"tree" jsonschema:"tree document as a JSON string"`
}

// Output types.

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// DiffOutput is the structured result of sql_tree_diff.
type DiffOutput struct {
	Edits    []report.Edit    `json:"edits"`
	Warnings []render.Warning `json:"warnings,omitempty"`
	Dialect  string           `json:"dialect"`
	Summary  diff.Summary     `json:"summary"`
}

// ValidateOutput is the structured result of sql_tree_validate.
type ValidateOutput struct {
	Issues []node.Issue `json:"issues,omitempty"`
	Valid  bool         `json:"valid"`
}

func (s *Server) handleDiff(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input DiffInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateDocument(input.Source, ErrEmptySource)
	if err != nil {
		return errorResult(err)
	}

	err = validateDocument(input.Target, ErrEmptyTarget)
	if err != nil {
		return errorResult(err)
	}

	doc, err := s.svc.Diff(ctx,
		service.Input{Label: "source", Data: []byte(input.Source), Format: node.FormatJSON},
		service.Input{Label: "target", Data: []byte(input.Target), Format: node.FormatJSON},
		service.DiffParams{Dialect: input.Dialect, Matchings: input.Matchings, DeltaOnly: input.DeltaOnly},
	)
	if err != nil {
		return errorResult(err)
	}

	edits := doc.Edits
	if edits == nil {
		edits = []report.Edit{}
	}

	return jsonResult(DiffOutput{Edits: edits, Warnings: doc.Warnings, Dialect: doc.Dialect, Summary: doc.Summary})
}

func (s *Server) handleRender(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input RenderInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateDocument(input.Tree, ErrEmptyTree)
	if err != nil {
		return errorResult(err)
	}

	rendered, err := s.svc.Render(ctx, service.Input{Label: "tree", Data: []byte(input.Tree), Format: node.FormatJSON}, input.Dialect)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(rendered)
}

func (s *Server) handleValidate(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ValidateInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateDocument(input.Tree, ErrEmptyTree)
	if err != nil {
		return errorResult(err)
	}

	issues, err := s.svc.Validate(ctx, service.Input{Label: "tree", Data: []byte(input.Tree), Format: node.FormatJSON})
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(ValidateOutput{Valid: len(issues) == 0, Issues: issues})
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateDocument checks common document input constraints.
func validateDocument(doc string, emptyErr error) error {
	if doc == "" {
		return emptyErr
	}

	if len(doc) > MaxDocumentBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrDocumentTooLarge, len(doc), MaxDocumentBytes)
	}

	return nil
}
