package render

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/expr"
	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// Warning reports a construct the target dialect cannot express.
type Warning struct {
	Dialect Dialect `json:"dialect"`
	Feature string  `json:"feature"`
}

func (warning Warning) String() string {
	return warning.Feature + " is not supported in " + warning.Dialect.String()
}

// Renderer renders trees for one dialect. It is immutable and safe for
// concurrent use.
type Renderer struct {
	logger  *slog.Logger
	dialect Dialect
	traits  traits
}

// New creates a renderer. A nil logger falls back to slog.Default().
func New(dialect Dialect, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Renderer{dialect: dialect, traits: dialect.traits(), logger: logger}
}

// Dialect returns the renderer's dialect.
func (renderer *Renderer) Dialect() Dialect {
	return renderer.dialect
}

// Render returns the SQL text for the subtree and logs a warning for every
// construct the dialect cannot express.
func (renderer *Renderer) Render(ctx context.Context, root *node.Node) string {
	sql, warnings := renderer.RenderWithWarnings(root)

	for _, warning := range warnings {
		renderer.logger.WarnContext(ctx, "unsupported SQL construct",
			"dialect", warning.Dialect.String(),
			"feature", warning.Feature)
	}

	return sql
}

// RenderWithWarnings returns the SQL text and the unsupported constructs
// without logging them.
func (renderer *Renderer) RenderWithWarnings(root *node.Node) (string, []Warning) {
	sess := &session{renderer: renderer}
	sess.write(root)

	return sess.buf.String(), sess.warnings
}

// Canonical renders a subtree without dialect adjustments or warnings. The
// result is stable across dialects and is what similarity scoring compares.
func Canonical(root *node.Node) string {
	sess := &session{renderer: canonical, quiet: true}
	sess.write(root)

	return sess.buf.String()
}

var canonical = &Renderer{dialect: DialectANSI, traits: DialectANSI.traits(), logger: slog.Default()}

type session struct {
	renderer *Renderer
	buf      strings.Builder
	warnings []Warning
	quiet    bool
}

func (sess *session) warn(feature string) {
	if sess.quiet {
		return
	}

	for _, existing := range sess.warnings {
		if existing.Feature == feature {
			return
		}
	}

	sess.warnings = append(sess.warnings, Warning{Dialect: sess.renderer.dialect, Feature: feature})
}

func (sess *session) str(text string) {
	sess.buf.WriteString(text)
}

func (sess *session) list(nodes []*node.Node, sep string) {
	for idx, item := range nodes {
		if idx > 0 {
			sess.str(sep)
		}

		sess.write(item)
	}
}

//nolint:cyclop,funlen,gocyclo // Dispatch over the SQL vocabulary.
func (sess *session) write(current *node.Node) {
	if current == nil {
		return
	}

	if op, ok := expr.Operator(current.Tag); ok {
		sess.write(current.Get(expr.SlotThis))
		sess.str(" " + op + " ")
		sess.write(current.Get(expr.SlotExpression))

		return
	}

	switch current.Tag {
	case expr.TagSelect:
		sess.writeSelect(current)
	case expr.TagUnion:
		sess.writeSetOperation(current, "UNION")
	case expr.TagExcept:
		sess.writeSetOperation(current, "EXCEPT")
	case expr.TagIntersect:
		sess.writeSetOperation(current, "INTERSECT")
	case expr.TagSubquery:
		sess.str("(")
		sess.write(current.Get(expr.SlotThis))
		sess.str(")")

		if alias := scalarText(current, expr.SlotAlias); alias != "" {
			sess.str(" AS " + alias)
		}
	case expr.TagWith:
		sess.str("WITH ")

		if scalarBool(current, expr.SlotRecursive) {
			sess.str("RECURSIVE ")
		}

		sess.list(current.ListOf(expr.SlotExpressions), ", ")
	case expr.TagCTE:
		sess.str(scalarText(current, expr.SlotAlias) + " AS (")
		sess.write(current.Get(expr.SlotThis))
		sess.str(")")
	case expr.TagFrom:
		sess.str("FROM ")
		sess.write(current.Get(expr.SlotThis))
	case expr.TagJoin:
		sess.writeJoin(current)
	case expr.TagWhere:
		sess.str("WHERE ")
		sess.write(current.Get(expr.SlotThis))
	case expr.TagGroup:
		sess.str("GROUP BY ")
		sess.list(current.ListOf(expr.SlotExpressions), ", ")
	case expr.TagHaving:
		sess.str("HAVING ")
		sess.write(current.Get(expr.SlotThis))
	case expr.TagOrder:
		sess.str("ORDER BY ")
		sess.list(current.ListOf(expr.SlotExpressions), ", ")
	case expr.TagOrdered:
		sess.write(current.Get(expr.SlotThis))

		if scalarBool(current, expr.SlotDesc) {
			sess.str(" DESC")
		}
	case expr.TagLimit:
		sess.writeLimit(current)
	case expr.TagOffset:
		sess.writeOffset(current)
	case expr.TagLock:
		sess.str(sess.lockText(current))
	case expr.TagColumn:
		if table := scalarText(current, expr.SlotTable); table != "" {
			sess.str(table + ".")
		}

		sess.str(scalarText(current, expr.SlotThis))
	case expr.TagIdentifier:
		sess.writeIdentifier(scalarText(current, expr.SlotThis), scalarBool(current, expr.SlotQuoted))
	case expr.TagTable:
		if db := scalarText(current, expr.SlotDB); db != "" {
			sess.str(db + ".")
		}

		sess.str(scalarText(current, expr.SlotThis))
	case expr.TagLiteral:
		text := scalarText(current, expr.SlotThis)
		if scalarBool(current, expr.SlotIsString) {
			text = "'" + strings.ReplaceAll(text, "'", "''") + "'"
		}

		sess.str(text)
	case expr.TagBoolean:
		if scalarBool(current, expr.SlotThis) {
			sess.str("TRUE")
		} else {
			sess.str("FALSE")
		}
	case expr.TagNull:
		sess.str("NULL")
	case expr.TagStar:
		sess.str("*")
	case expr.TagDataType:
		sess.str(scalarText(current, expr.SlotThis))
	case expr.TagAlias:
		sess.write(current.Get(expr.SlotThis))
		sess.str(" AS " + scalarText(current, expr.SlotAlias))
	case expr.TagNot:
		sess.str("NOT ")
		sess.write(current.Get(expr.SlotThis))
	case expr.TagNeg:
		sess.str("-")
		sess.write(current.Get(expr.SlotThis))
	case expr.TagParen:
		sess.str("(")
		sess.write(current.Get(expr.SlotThis))
		sess.str(")")
	case expr.TagIn:
		sess.write(current.Get(expr.SlotThis))
		sess.str(" IN (")
		sess.list(current.ListOf(expr.SlotExpressions), ", ")
		sess.str(")")
	case expr.TagCast:
		sess.str("CAST(")
		sess.write(current.Get(expr.SlotThis))
		sess.str(" AS ")
		sess.write(current.Get(expr.SlotTo))
		sess.str(")")
	case expr.TagCase:
		sess.writeCase(current)
	case expr.TagIf:
		sess.str("WHEN ")
		sess.write(current.Get(expr.SlotThis))
		sess.str(" THEN ")
		sess.write(current.Get(expr.SlotTrue))
	case expr.TagConcat:
		sess.writeConcat(current)
	case expr.TagAnonymous:
		sess.writeFunctionName(scalarText(current, expr.SlotName))
		sess.str("(")
		sess.list(current.ListOf(expr.SlotExpressions), ", ")
		sess.str(")")
	case expr.TagWindow:
		sess.writeWindow(current)
	case expr.TagLambda:
		sess.writeLambda(current)
	default:
		sess.writeFallback(current)
	}
}

func (sess *session) writeSelect(current *node.Node) {
	if with := current.Get(expr.SlotWith); with != nil {
		sess.write(with)
		sess.str(" ")
	}

	sess.str("SELECT ")

	if scalarBool(current, expr.SlotDistinct) {
		sess.str("DISTINCT ")
	}

	sess.list(current.ListOf(expr.SlotExpressions), ", ")

	if from := current.Get(expr.SlotFrom); from != nil {
		sess.str(" ")
		sess.write(from)
	}

	for _, join := range current.ListOf(expr.SlotJoins) {
		sess.str(" ")
		sess.write(join)
	}

	clauses := []string{expr.SlotWhere, expr.SlotGroup, expr.SlotHaving, expr.SlotOrder}
	if sess.renderer.traits.fetchFirst {
		clauses = append(clauses, expr.SlotOffset, expr.SlotLimit)
	} else {
		clauses = append(clauses, expr.SlotLimit, expr.SlotOffset)
	}

	for _, name := range clauses {
		if clause := current.Get(name); clause != nil {
			sess.str(" ")
			sess.write(clause)
		}
	}

	for _, lock := range current.ListOf(expr.SlotLocks) {
		if text := sess.lockText(lock); text != "" {
			sess.str(" " + text)
		}
	}
}

func (sess *session) writeSetOperation(current *node.Node, keyword string) {
	sess.write(current.Get(expr.SlotThis))
	sess.str(" " + keyword + " ")

	if !scalarBool(current, expr.SlotDistinct) {
		sess.str("ALL ")
	}

	sess.write(current.Get(expr.SlotExpression))
}

func (sess *session) writeJoin(current *node.Node) {
	if side := scalarText(current, expr.SlotSide); side != "" {
		sess.str(side + " ")
	}

	sess.str("JOIN ")
	sess.write(current.Get(expr.SlotThis))

	if on := current.Get(expr.SlotOn); on != nil {
		sess.str(" ON ")
		sess.write(on)
	}
}

func (sess *session) writeLimit(current *node.Node) {
	if sess.renderer.traits.fetchFirst {
		sess.str("FETCH FIRST ")
		sess.write(current.Get(expr.SlotExpression))
		sess.str(" ROWS ONLY")

		return
	}

	sess.str("LIMIT ")
	sess.write(current.Get(expr.SlotExpression))
}

func (sess *session) writeOffset(current *node.Node) {
	sess.str("OFFSET ")
	sess.write(current.Get(expr.SlotExpression))

	if sess.renderer.traits.fetchFirst {
		sess.str(" ROWS")
	}
}

// lockText returns the locking clause, or "" with a warning when the dialect
// cannot express it.
func (sess *session) lockText(current *node.Node) string {
	traits := sess.renderer.traits
	update := scalarBool(current, expr.SlotUpdate)

	switch {
	case !traits.lockingReads:
		sess.warn("locking reads (FOR UPDATE/FOR SHARE)")

		return ""
	case !update && !traits.shareLocks:
		sess.warn("FOR SHARE")

		return ""
	case update:
		return "FOR UPDATE"
	default:
		return "FOR SHARE"
	}
}

func (sess *session) writeIdentifier(name string, quoted bool) {
	if !quoted {
		sess.str(name)

		return
	}

	quote := string(sess.renderer.traits.quote)
	sess.str(quote + strings.ReplaceAll(name, quote, quote+quote) + quote)
}

func (sess *session) writeFunctionName(name string) {
	if isPlainName(name) {
		sess.str(name)

		return
	}

	sess.writeIdentifier(name, true)
}

func (sess *session) writeCase(current *node.Node) {
	sess.str("CASE")

	for _, branch := range current.ListOf(expr.SlotIfs) {
		sess.str(" ")
		sess.write(branch)
	}

	if fallback := current.Get(expr.SlotDefault); fallback != nil {
		sess.str(" ELSE ")
		sess.write(fallback)
	}

	sess.str(" END")
}

func (sess *session) writeConcat(current *node.Node) {
	args := current.ListOf(expr.SlotExpressions)

	if sess.renderer.traits.concatAsOperand && len(args) > 0 {
		sess.list(args, " || ")

		return
	}

	sess.str("CONCAT(")
	sess.list(args, ", ")
	sess.str(")")
}

func (sess *session) writeWindow(current *node.Node) {
	sess.write(current.Get(expr.SlotThis))

	order := current.Get(expr.SlotOrder)

	if scalarText(current, expr.SlotOver) == expr.WindowKeep {
		if sess.renderer.traits.keepWindows {
			sess.str(" KEEP (DENSE_RANK LAST ")
			sess.write(order)
			sess.str(")")

			return
		}

		sess.warn("KEEP window clause")
	}

	sess.str(" OVER (")

	partition := current.ListOf(expr.SlotPartitionBy)
	if len(partition) > 0 {
		sess.str("PARTITION BY ")
		sess.list(partition, ", ")
	}

	if order != nil {
		if len(partition) > 0 {
			sess.str(" ")
		}

		sess.write(order)
	}

	sess.str(")")
}

func (sess *session) writeLambda(current *node.Node) {
	if !sess.renderer.traits.lambdas {
		sess.warn("lambda expressions")
	}

	params := current.ListOf(expr.SlotExpressions)
	if len(params) == 1 {
		sess.write(params[0])
	} else {
		sess.str("(")
		sess.list(params, ", ")
		sess.str(")")
	}

	sess.str(" -> ")
	sess.write(current.Get(expr.SlotThis))
}

// writeFallback renders named functions and unknown tags as calls:
// NAME(child, ..., slot=value).
func (sess *session) writeFallback(current *node.Node) {
	name, known := expr.FunctionName(current.Tag)
	if !known {
		name = strings.ToUpper(string(current.Tag))
	}

	sess.str(name + "(")

	first := true

	for idx := range current.Slots {
		slot := &current.Slots[idx]

		switch slot.Kind {
		case node.SlotChild:
			if slot.Child == nil {
				continue
			}

			first = sess.sep(first)
			sess.write(slot.Child)
		case node.SlotList:
			for _, child := range slot.List {
				first = sess.sep(first)
				sess.write(child)
			}
		case node.SlotScalar:
			first = sess.sep(first)
			sess.str(slot.Name + "=" + slot.Value.String())
		}
	}

	sess.str(")")
}

func (sess *session) sep(first bool) bool {
	if !first {
		sess.str(", ")
	}

	return false
}

func scalarText(current *node.Node, name string) string {
	value, ok := current.Scalar(name)
	if !ok {
		return ""
	}

	if value.Kind() == node.ValueString || value.Kind() == node.ValueEnum {
		return value.Str()
	}

	return value.String()
}

func scalarBool(current *node.Node, name string) bool {
	value, ok := current.Scalar(name)

	return ok && value.Kind() == node.ValueBool && value.AsBool()
}

func isPlainName(name string) bool {
	if name == "" {
		return false
	}

	for idx, char := range name {
		isLetter := char == '_' || (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
		isDigit := char >= '0' && char <= '9'

		if !isLetter && (!isDigit || idx == 0) {
			return false
		}
	}

	return true
}
