// Package query implements the checked, emittable query bodies: SELECT
// (with joins, grouping, ordering, set-junctions and CTEs), INSERT (with
// ON CONFLICT), UPDATE and DELETE. Every body type is a thin, declarative
// struct; Build type-checks it against the schema's table catalog via
// package expr and renders its SQL text through the same token.Buffer DSL
// expr and migrate use.
package query

import (
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/relerr"
	"github.com/relgenhq/relgen/types"
)

// Body is the contract every query body satisfies: SELECT, INSERT,
// UPDATE, DELETE, a set-junction, or a CTE wrapping any of them. It is
// exactly expr.QueryBody under this package's own name, so a Select can
// be nested as a Subquery's or Exists' body without either package
// importing the other's concrete types.
type Body = expr.QueryBody

// ExpectedRowCount is how many rows a query body should produce.
type ExpectedRowCount = expr.ExpectedRowCount

const (
	RowsNone     = expr.RowsNone
	RowsMaybeOne = expr.RowsMaybeOne
	RowsOne      = expr.RowsOne
	RowsMany     = expr.RowsMany
)

// Query is one checked, named top-level statement: a SELECT, INSERT,
// UPDATE or DELETE paired with the row count its callers expect back.
// Query implements schema.Statement so it can be registered as a
// pre/post-migration statement as well as generated as its own function.
type Query struct {
	Name     string
	Body     Body
	Expected ExpectedRowCount
}

// RelgenStatement marks Query as a schema.Statement.
func (Query) RelgenStatement() {}

// Check type-checks q against tables, returning the resolved column
// shape, the parameter list in first-seen order, and every accumulated
// error joined into one.
func Check(q Query, dialectName string, tables expr.TableResolver) (ExprTypeResult, error) {
	acc := relerr.New()
	ctx := expr.NewCheckContext(dialectName, acc, tables)
	path := []string{"Query " + q.Name}
	exprType, buf := q.Body.Build(ctx, path, q.Expected)
	return ExprTypeResult{
		Columns: exprType,
		SQL:     buf.String(),
		Params:  ctx.Params.Entries(),
	}, relerr.Join(acc)
}

// ExprTypeResult is the outcome of checking one Query: its resolved
// result shape, rendered SQL text and deduplicated parameter list, ready
// for package codegen to turn into a generated function.
type ExprTypeResult struct {
	Columns types.ExprType
	SQL     string
	Params  []expr.ParamEntry
}
