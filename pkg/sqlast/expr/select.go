package expr

import "github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"

// SelectBuilder assembles a SELECT statement. Clauses are emitted in a fixed
// slot order no matter which order the methods are called in, so two
// statements built from the same clauses are structurally equal.
type SelectBuilder struct {
	with        *node.Node
	from        *node.Node
	where       *node.Node
	group       *node.Node
	having      *node.Node
	order       *node.Node
	limit       *node.Node
	offset      *node.Node
	expressions []*node.Node
	joins       []*node.Node
	locks       []*node.Node
	distinct    bool
}

// Select starts a SELECT statement with the given projections.
func Select(projections ...*node.Node) *SelectBuilder {
	return &SelectBuilder{expressions: projections}
}

// Distinct marks the statement SELECT DISTINCT.
func (builder *SelectBuilder) Distinct() *SelectBuilder {
	builder.distinct = true

	return builder
}

// With attaches a WITH clause.
func (builder *SelectBuilder) With(with *node.Node) *SelectBuilder {
	builder.with = with

	return builder
}

// From sets the FROM source. A Table or Subquery is wrapped in a From clause.
func (builder *SelectBuilder) From(source *node.Node) *SelectBuilder {
	if source != nil && source.Tag != TagFrom {
		source = From(source)
	}

	builder.from = source

	return builder
}

// Join appends join clauses.
func (builder *SelectBuilder) Join(joins ...*node.Node) *SelectBuilder {
	builder.joins = append(builder.joins, joins...)

	return builder
}

// Where sets the filter condition.
func (builder *SelectBuilder) Where(condition *node.Node) *SelectBuilder {
	builder.where = Where(condition)

	return builder
}

// GroupBy sets the grouping keys.
func (builder *SelectBuilder) GroupBy(keys ...*node.Node) *SelectBuilder {
	builder.group = Group(keys...)

	return builder
}

// Having sets the group filter condition.
func (builder *SelectBuilder) Having(condition *node.Node) *SelectBuilder {
	builder.having = Having(condition)

	return builder
}

// OrderBy sets the sort keys.
func (builder *SelectBuilder) OrderBy(keys ...*node.Node) *SelectBuilder {
	builder.order = Order(keys...)

	return builder
}

// Limit sets the row limit.
func (builder *SelectBuilder) Limit(count int64) *SelectBuilder {
	builder.limit = Limit(count)

	return builder
}

// Offset sets the row offset.
func (builder *SelectBuilder) Offset(count int64) *SelectBuilder {
	builder.offset = Offset(count)

	return builder
}

// ForUpdate appends a FOR UPDATE locking clause.
func (builder *SelectBuilder) ForUpdate() *SelectBuilder {
	builder.locks = append(builder.locks, Lock(true))

	return builder
}

// ForShare appends a FOR SHARE locking clause.
func (builder *SelectBuilder) ForShare() *SelectBuilder {
	builder.locks = append(builder.locks, Lock(false))

	return builder
}

// Build returns the SELECT node. Only clauses that were set get a slot.
func (builder *SelectBuilder) Build() *node.Node {
	stmt := node.NewBuilder(TagSelect)

	if builder.with != nil {
		stmt.Child(SlotWith, builder.with)
	}

	if builder.distinct {
		stmt.Scalar(SlotDistinct, node.Bool(true))
	}

	stmt.List(SlotExpressions, builder.expressions...)

	if builder.from != nil {
		stmt.Child(SlotFrom, builder.from)
	}

	if len(builder.joins) > 0 {
		stmt.List(SlotJoins, builder.joins...)
	}

	clauses := []struct {
		child *node.Node
		name  string
	}{
		{builder.where, SlotWhere},
		{builder.group, SlotGroup},
		{builder.having, SlotHaving},
		{builder.order, SlotOrder},
		{builder.limit, SlotLimit},
		{builder.offset, SlotOffset},
	}

	for _, clause := range clauses {
		if clause.child != nil {
			stmt.Child(clause.name, clause.child)
		}
	}

	if len(builder.locks) > 0 {
		stmt.List(SlotLocks, builder.locks...)
	}

	return stmt.Build()
}
