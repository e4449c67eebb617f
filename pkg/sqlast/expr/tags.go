// Package expr defines the SQL expression vocabulary: node tags and
// constructors that build canonical trees for statements, clauses, and
// scalar expressions.
package expr

import "github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"

// Statement and clause tags.
const (
	TagSelect    node.Tag = "Select"
	TagUnion     node.Tag = "Union"
	TagExcept    node.Tag = "Except"
	TagIntersect node.Tag = "Intersect"
	TagSubquery  node.Tag = "Subquery"
	TagWith      node.Tag = "With"
	TagCTE       node.Tag = "CTE"
	TagFrom      node.Tag = "From"
	TagJoin      node.Tag = "Join"
	TagWhere     node.Tag = "Where"
	TagGroup     node.Tag = "Group"
	TagHaving    node.Tag = "Having"
	TagOrder     node.Tag = "Order"
	TagOrdered   node.Tag = "Ordered"
	TagLimit     node.Tag = "Limit"
	TagOffset    node.Tag = "Offset"
	TagLock      node.Tag = "Lock"
)

// Reference and literal tags.
const (
	TagColumn     node.Tag = "Column"
	TagIdentifier node.Tag = "Identifier"
	TagTable      node.Tag = "Table"
	TagLiteral    node.Tag = "Literal"
	TagBoolean    node.Tag = "Boolean"
	TagNull       node.Tag = "Null"
	TagStar       node.Tag = "Star"
	TagAlias      node.Tag = "Alias"
	TagDataType   node.Tag = "DataType"
)

// Operator tags.
const (
	TagAdd   node.Tag = "Add"
	TagSub   node.Tag = "Sub"
	TagMul   node.Tag = "Mul"
	TagDiv   node.Tag = "Div"
	TagEQ    node.Tag = "EQ"
	TagNEQ   node.Tag = "NEQ"
	TagGT    node.Tag = "GT"
	TagGTE   node.Tag = "GTE"
	TagLT    node.Tag = "LT"
	TagLTE   node.Tag = "LTE"
	TagAnd   node.Tag = "And"
	TagOr    node.Tag = "Or"
	TagLike  node.Tag = "Like"
	TagDPipe node.Tag = "DPipe"
	TagNot   node.Tag = "Not"
	TagNeg   node.Tag = "Neg"
	TagParen node.Tag = "Paren"
	TagIn    node.Tag = "In"
	TagIs    node.Tag = "Is"
	TagCast  node.Tag = "Cast"
	TagCase  node.Tag = "Case"
	TagIf    node.Tag = "If"
)

// Function tags.
const (
	TagAnonymous node.Tag = "Anonymous"
	TagConcat    node.Tag = "Concat"
	TagLower     node.Tag = "Lower"
	TagUpper     node.Tag = "Upper"
	TagCount     node.Tag = "Count"
	TagSum       node.Tag = "Sum"
	TagAvg       node.Tag = "Avg"
	TagMin       node.Tag = "Min"
	TagMax       node.Tag = "Max"
	TagCoalesce  node.Tag = "Coalesce"
	TagRowNumber node.Tag = "RowNumber"
	TagRank      node.Tag = "Rank"
	TagDenseRank node.Tag = "DenseRank"
	TagWindow    node.Tag = "Window"
	TagLambda    node.Tag = "Lambda"
)

// Slot names shared across the vocabulary.
const (
	SlotThis        = "this"
	SlotExpression  = "expression"
	SlotExpressions = "expressions"
	SlotAlias       = "alias"
	SlotTable       = "table"
	SlotDB          = "db"
	SlotQuoted      = "quoted"
	SlotIsString    = "is_string"
	SlotDistinct    = "distinct"
	SlotWith        = "with"
	SlotFrom        = "from"
	SlotJoins       = "joins"
	SlotWhere       = "where"
	SlotGroup       = "group"
	SlotHaving      = "having"
	SlotOrder       = "order"
	SlotLimit       = "limit"
	SlotOffset      = "offset"
	SlotLocks       = "locks"
	SlotOn          = "on"
	SlotSide        = "side"
	SlotKind        = "kind"
	SlotDesc        = "desc"
	SlotNullsFirst  = "nulls_first"
	SlotName        = "name"
	SlotPartitionBy = "partition_by"
	SlotOver        = "over"
	SlotRecursive   = "recursive"
	SlotUpdate      = "update"
	SlotTo          = "to"
	SlotIfs         = "ifs"
	SlotDefault     = "default"
	SlotTrue        = "true"
)

// Window clause keywords stored in the Window "over" slot.
const (
	WindowOver = "OVER"
	WindowKeep = "KEEP"
)

// Join sides stored in the Join "side" discriminant.
const (
	SideLeft  = "LEFT"
	SideRight = "RIGHT"
	SideFull  = "FULL"
)

// Binary reports whether the tag is a two-operand operator with "this" and
// "expression" slots.
func Binary(tag node.Tag) bool {
	_, ok := binaryOperators[tag]

	return ok
}

// Operator returns the SQL spelling of a binary operator tag.
func Operator(tag node.Tag) (string, bool) {
	op, ok := binaryOperators[tag]

	return op, ok
}

var binaryOperators = map[node.Tag]string{
	TagAdd:   "+",
	TagSub:   "-",
	TagMul:   "*",
	TagDiv:   "/",
	TagEQ:    "=",
	TagNEQ:   "<>",
	TagGT:    ">",
	TagGTE:   ">=",
	TagLT:    "<",
	TagLTE:   "<=",
	TagAnd:   "AND",
	TagOr:    "OR",
	TagLike:  "LIKE",
	TagDPipe: "||",
	TagIs:    "IS",
}

// FunctionName returns the SQL name of a named function tag.
func FunctionName(tag node.Tag) (string, bool) {
	name, ok := functionNames[tag]

	return name, ok
}

var functionNames = map[node.Tag]string{
	TagConcat:    "CONCAT",
	TagLower:     "LOWER",
	TagUpper:     "UPPER",
	TagCount:     "COUNT",
	TagSum:       "SUM",
	TagAvg:       "AVG",
	TagMin:       "MIN",
	TagMax:       "MAX",
	TagCoalesce:  "COALESCE",
	TagRowNumber: "ROW_NUMBER",
	TagRank:      "RANK",
	TagDenseRank: "DENSE_RANK",
}
