package expr

import (
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// Column returns a column reference. A dotted name ("tbl.col") is split into
// the table qualifier and the column name.
func Column(name string) *node.Node {
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		return QualifiedColumn(name[:dot], name[dot+1:])
	}

	return node.NewBuilder(TagColumn).Scalar(SlotThis, node.String(name)).Build()
}

// QualifiedColumn returns a column reference with a table qualifier.
func QualifiedColumn(table, name string) *node.Node {
	return node.NewBuilder(TagColumn).
		Scalar(SlotThis, node.String(name)).
		Scalar(SlotTable, node.String(table)).
		Build()
}

// Ident returns an unquoted identifier.
func Ident(name string) *node.Node {
	return node.NewBuilder(TagIdentifier).
		Scalar(SlotThis, node.String(name)).
		Scalar(SlotQuoted, node.Bool(false)).
		Build()
}

// QuotedIdent returns a quoted identifier.
func QuotedIdent(name string) *node.Node {
	return node.NewBuilder(TagIdentifier).
		Scalar(SlotThis, node.String(name)).
		Scalar(SlotQuoted, node.Bool(true)).
		Build()
}

// Table returns a table reference.
func Table(name string) *node.Node {
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		return QualifiedTable(name[:dot], name[dot+1:])
	}

	return node.NewBuilder(TagTable).Scalar(SlotThis, node.String(name)).Build()
}

// QualifiedTable returns a table reference inside a database or schema.
func QualifiedTable(db, name string) *node.Node {
	return node.NewBuilder(TagTable).
		Scalar(SlotThis, node.String(name)).
		Scalar(SlotDB, node.String(db)).
		Build()
}

// Number returns a numeric literal holding its source text.
func Number(text string) *node.Node {
	return node.NewBuilder(TagLiteral).
		Scalar(SlotThis, node.String(text)).
		Scalar(SlotIsString, node.Bool(false)).
		Build()
}

// Int returns a numeric literal for an integer.
func Int(value int64) *node.Node {
	return Number(strconv.FormatInt(value, 10))
}

// Str returns a string literal.
func Str(text string) *node.Node {
	return node.NewBuilder(TagLiteral).
		Scalar(SlotThis, node.String(text)).
		Scalar(SlotIsString, node.Bool(true)).
		Build()
}

// Bool returns a boolean literal.
func Bool(value bool) *node.Node {
	return node.Leaf(TagBoolean, SlotThis, node.Bool(value))
}

// Null returns the NULL literal.
func Null() *node.Node {
	return node.NewBuilder(TagNull).Build()
}

// Star returns the * projection.
func Star() *node.Node {
	return node.NewBuilder(TagStar).Build()
}

// DataType returns a type name used by CAST.
func DataType(name string) *node.Node {
	return node.Leaf(TagDataType, SlotThis, node.Enum(strings.ToUpper(name)))
}

// Alias names an expression: "<this> AS <name>".
func Alias(this *node.Node, name string) *node.Node {
	return node.NewBuilder(TagAlias).
		Child(SlotThis, this).
		Scalar(SlotAlias, node.String(name)).
		Build()
}

// BinaryOp builds a two-operand operator node.
func BinaryOp(tag node.Tag, left, right *node.Node) *node.Node {
	return node.NewBuilder(tag).
		Child(SlotThis, left).
		Child(SlotExpression, right).
		Build()
}

// Add returns left + right.
func Add(left, right *node.Node) *node.Node { return BinaryOp(TagAdd, left, right) }

// Sub returns left - right.
func Sub(left, right *node.Node) *node.Node { return BinaryOp(TagSub, left, right) }

// Mul returns left * right.
func Mul(left, right *node.Node) *node.Node { return BinaryOp(TagMul, left, right) }

// Div returns left / right.
func Div(left, right *node.Node) *node.Node { return BinaryOp(TagDiv, left, right) }

// EQ returns left = right.
func EQ(left, right *node.Node) *node.Node { return BinaryOp(TagEQ, left, right) }

// NEQ returns left <> right.
func NEQ(left, right *node.Node) *node.Node { return BinaryOp(TagNEQ, left, right) }

// GT returns left > right.
func GT(left, right *node.Node) *node.Node { return BinaryOp(TagGT, left, right) }

// GTE returns left >= right.
func GTE(left, right *node.Node) *node.Node { return BinaryOp(TagGTE, left, right) }

// LT returns left < right.
func LT(left, right *node.Node) *node.Node { return BinaryOp(TagLT, left, right) }

// LTE returns left <= right.
func LTE(left, right *node.Node) *node.Node { return BinaryOp(TagLTE, left, right) }

// Like returns left LIKE right.
func Like(left, right *node.Node) *node.Node { return BinaryOp(TagLike, left, right) }

// DPipe returns left || right.
func DPipe(left, right *node.Node) *node.Node { return BinaryOp(TagDPipe, left, right) }

// Is returns left IS right.
func Is(left, right *node.Node) *node.Node { return BinaryOp(TagIs, left, right) }

// And chains conditions left-deep: And(a, b, c) is (a AND b) AND c.
func And(conditions ...*node.Node) *node.Node { return chain(TagAnd, conditions) }

// Or chains conditions left-deep: Or(a, b, c) is (a OR b) OR c.
func Or(conditions ...*node.Node) *node.Node { return chain(TagOr, conditions) }

func chain(tag node.Tag, operands []*node.Node) *node.Node {
	if len(operands) == 0 {
		return nil
	}

	result := operands[0]
	for _, operand := range operands[1:] {
		result = BinaryOp(tag, result, operand)
	}

	return result
}

// Not returns NOT this.
func Not(this *node.Node) *node.Node { return unary(TagNot, this) }

// Neg returns -this.
func Neg(this *node.Node) *node.Node { return unary(TagNeg, this) }

// Paren wraps an expression in parentheses.
func Paren(this *node.Node) *node.Node { return unary(TagParen, this) }

func unary(tag node.Tag, this *node.Node) *node.Node {
	return node.NewBuilder(tag).Child(SlotThis, this).Build()
}

// In returns this IN (values...).
func In(this *node.Node, values ...*node.Node) *node.Node {
	return node.NewBuilder(TagIn).
		Child(SlotThis, this).
		List(SlotExpressions, values...).
		Build()
}

// Cast returns CAST(this AS typeName).
func Cast(this *node.Node, typeName string) *node.Node {
	return node.NewBuilder(TagCast).
		Child(SlotThis, this).
		Child(SlotTo, DataType(typeName)).
		Build()
}

// When returns one WHEN condition THEN result branch of a CASE expression.
func When(condition, result *node.Node) *node.Node {
	return node.NewBuilder(TagIf).
		Child(SlotThis, condition).
		Child(SlotTrue, result).
		Build()
}

// Case returns CASE WHEN ... ELSE fallback END. A nil fallback omits ELSE.
func Case(fallback *node.Node, branches ...*node.Node) *node.Node {
	return node.NewBuilder(TagCase).
		List(SlotIfs, branches...).
		Child(SlotDefault, fallback).
		Build()
}

// Func builds a named function call. Single-argument aggregates and string
// functions keep their argument in "this"; variadic functions use "expressions".
func Func(tag node.Tag, args ...*node.Node) *node.Node {
	switch tag {
	case TagConcat, TagCoalesce:
		return node.NewBuilder(tag).List(SlotExpressions, args...).Build()
	case TagRowNumber, TagRank, TagDenseRank:
		return node.NewBuilder(tag).Build()
	default:
		var this *node.Node
		if len(args) > 0 {
			this = args[0]
		}

		return unary(tag, this)
	}
}

// Concat returns CONCAT(args...).
func Concat(args ...*node.Node) *node.Node { return Func(TagConcat, args...) }

// Lower returns LOWER(this).
func Lower(this *node.Node) *node.Node { return Func(TagLower, this) }

// Upper returns UPPER(this).
func Upper(this *node.Node) *node.Node { return Func(TagUpper, this) }

// Max returns MAX(this).
func Max(this *node.Node) *node.Node { return Func(TagMax, this) }

// Min returns MIN(this).
func Min(this *node.Node) *node.Node { return Func(TagMin, this) }

// Sum returns SUM(this).
func Sum(this *node.Node) *node.Node { return Func(TagSum, this) }

// Count returns COUNT(this).
func Count(this *node.Node) *node.Node { return Func(TagCount, this) }

// RowNumber returns ROW_NUMBER().
func RowNumber() *node.Node { return Func(TagRowNumber) }

// Rank returns RANK().
func Rank() *node.Node { return Func(TagRank) }

// Anonymous returns a call to a function the vocabulary does not know, such
// as a user-defined function. The name is part of the node's kind.
func Anonymous(name string, args ...*node.Node) *node.Node {
	return node.NewBuilder(TagAnonymous).
		Discriminant(SlotName, node.String(name)).
		List(SlotExpressions, args...).
		Build()
}

// Window returns fn OVER (PARTITION BY ... ORDER BY ...). A nil order omits
// the ORDER BY part.
func Window(fn *node.Node, partitionBy []*node.Node, order *node.Node) *node.Node {
	return window(fn, partitionBy, order, WindowOver)
}

// KeepWindow returns fn KEEP (DENSE_RANK LAST ORDER BY ...), an Oracle-only form.
func KeepWindow(fn, order *node.Node) *node.Node {
	return window(fn, nil, order, WindowKeep)
}

func window(fn *node.Node, partitionBy []*node.Node, order *node.Node, over string) *node.Node {
	return node.NewBuilder(TagWindow).
		Child(SlotThis, fn).
		List(SlotPartitionBy, partitionBy...).
		Child(SlotOrder, order).
		Scalar(SlotOver, node.Enum(over)).
		Build()
}

// Lambda returns (params...) -> body.
func Lambda(body *node.Node, params ...string) *node.Node {
	idents := make([]*node.Node, 0, len(params))
	for _, param := range params {
		idents = append(idents, Ident(param))
	}

	return node.NewBuilder(TagLambda).
		Child(SlotThis, body).
		List(SlotExpressions, idents...).
		Build()
}

// Asc returns an ascending sort key.
func Asc(this *node.Node) *node.Node { return ordered(this, false) }

// Desc returns a descending sort key.
func Desc(this *node.Node) *node.Node { return ordered(this, true) }

func ordered(this *node.Node, desc bool) *node.Node {
	return node.NewBuilder(TagOrdered).
		Child(SlotThis, this).
		Scalar(SlotDesc, node.Bool(desc)).
		Build()
}

// Order returns an ORDER BY clause. Plain expressions are wrapped as ascending
// sort keys.
func Order(keys ...*node.Node) *node.Node {
	wrapped := make([]*node.Node, 0, len(keys))

	for _, key := range keys {
		if key != nil && key.Tag != TagOrdered {
			key = Asc(key)
		}

		wrapped = append(wrapped, key)
	}

	return node.NewBuilder(TagOrder).List(SlotExpressions, wrapped...).Build()
}

// From returns a FROM clause.
func From(this *node.Node) *node.Node { return unary(TagFrom, this) }

// Where returns a WHERE clause.
func Where(condition *node.Node) *node.Node { return unary(TagWhere, condition) }

// Having returns a HAVING clause.
func Having(condition *node.Node) *node.Node { return unary(TagHaving, condition) }

// Group returns a GROUP BY clause.
func Group(keys ...*node.Node) *node.Node {
	return node.NewBuilder(TagGroup).List(SlotExpressions, keys...).Build()
}

// Limit returns a LIMIT clause.
func Limit(count int64) *node.Node {
	return node.NewBuilder(TagLimit).Child(SlotExpression, Int(count)).Build()
}

// Offset returns an OFFSET clause.
func Offset(count int64) *node.Node {
	return node.NewBuilder(TagOffset).Child(SlotExpression, Int(count)).Build()
}

// Lock returns a locking clause: FOR UPDATE when update is true, FOR SHARE otherwise.
func Lock(update bool) *node.Node {
	return node.Leaf(TagLock, SlotUpdate, node.Bool(update))
}

// Join returns a join against table. An empty side yields a plain (inner) join;
// the side is part of the node's kind.
func Join(table, on *node.Node, side string) *node.Node {
	builder := node.NewBuilder(TagJoin).
		Child(SlotThis, table).
		Child(SlotOn, on)

	if side != "" {
		builder.Discriminant(SlotSide, node.Enum(strings.ToUpper(side)))
	}

	return builder.Build()
}

// Subquery wraps a query used as a table source. An empty alias is omitted.
func Subquery(query *node.Node, alias string) *node.Node {
	builder := node.NewBuilder(TagSubquery).Child(SlotThis, query)
	if alias != "" {
		builder.Scalar(SlotAlias, node.String(alias))
	}

	return builder.Build()
}

// CTE returns one common table expression: "<alias> AS (<query>)".
func CTE(alias string, query *node.Node) *node.Node {
	return node.NewBuilder(TagCTE).
		Child(SlotThis, query).
		Scalar(SlotAlias, node.String(alias)).
		Build()
}

// With returns a WITH clause holding the given CTEs.
func With(recursive bool, ctes ...*node.Node) *node.Node {
	return node.NewBuilder(TagWith).
		List(SlotExpressions, ctes...).
		Scalar(SlotRecursive, node.Bool(recursive)).
		Build()
}

// Union returns left UNION [ALL] right. distinct=true is plain UNION.
func Union(left, right *node.Node, distinct bool) *node.Node {
	return setOperation(TagUnion, left, right, distinct)
}

// Except returns left EXCEPT right.
func Except(left, right *node.Node, distinct bool) *node.Node {
	return setOperation(TagExcept, left, right, distinct)
}

// Intersect returns left INTERSECT right.
func Intersect(left, right *node.Node, distinct bool) *node.Node {
	return setOperation(TagIntersect, left, right, distinct)
}

func setOperation(tag node.Tag, left, right *node.Node, distinct bool) *node.Node {
	return node.NewBuilder(tag).
		Child(SlotThis, left).
		Child(SlotExpression, right).
		Scalar(SlotDistinct, node.Bool(distinct)).
		Build()
}
