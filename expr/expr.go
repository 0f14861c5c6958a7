// Package expr implements the checked expression AST: literals, parameters,
// scope bindings, operators, calls, windows, subqueries and casts, each of
// which knows how to validate itself against a scope of available bindings
// and render its own SQL text.
//
// Every node implements Expr. Build walks the node (and its children, for
// composite nodes), accumulates any problems on ctx.Acc rather than
// stopping at the first one, and returns both the node's checked type and
// its rendered SQL.
package expr

import (
	"fmt"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/relerr"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// Expr is implemented by every AST node: literals, parameters, bindings,
// operators, calls, window expressions, subqueries and casts.
type Expr interface {
	// Build type-checks the node against scope and renders its SQL text.
	// path is a breadcrumb used only to qualify accumulated errors.
	Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer)
}

// Ref is a scope key: a table-qualified (or, for select-local values like
// window partitions, unqualified) binding name.
type Ref struct {
	Table string
	Name  string
}

func (r Ref) String() string {
	if r.Table == "" {
		return r.Name
	}
	return r.Table + "." + r.Name
}

// Scope maps every binding reachable from the current position (the
// query's source tables and joins) to its full type. A LEFT JOIN's side is
// entered into scope with every field's Nullable forced true once the
// join's own ON-expression has been checked and before the rest of the
// query is, which is how nullability propagates through outer joins.
type Scope map[Ref]types.FullType

// WithNullable returns a copy of s with every entry's type forced nullable
// — used to stage the joined side of a LEFT JOIN before merging it into
// the enclosing scope.
func (s Scope) WithNullable() Scope {
	out := make(Scope, len(s))
	for k, v := range s {
		v.Nullable = true
		out[k] = v
	}
	return out
}

// Merge returns a new scope containing every binding of s and other; a key
// present in both keeps other's value (the more recently joined side wins,
// matching how a query body extends scope one join at a time).
func (s Scope) Merge(other Scope) Scope {
	out := make(Scope, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ExpectedRowCount is how many rows a query body should produce, decided
// by its calling context (top-level statement, subquery, scalar subquery).
type ExpectedRowCount int

const (
	RowsNone ExpectedRowCount = iota
	RowsMaybeOne
	RowsOne
	RowsMany
)

// QueryBody is the contract a SELECT (or set-junction thereof) must
// satisfy to be nested inside an expression via Subquery or Exists.
// Declared here, rather than imported from package query, so expr has no
// dependency on query; query.Body is this interface under another name.
type QueryBody interface {
	Build(ctx *CheckContext, path []string, expected ExpectedRowCount) (types.ExprType, *token.Buffer)
}

// TableResolver looks up a table's current fields and their full types —
// the bridge a query body uses to seed its starting Scope from a schema
// version. Declared here, rather than in package query, so package schema
// can implement it without depending on query; *schema.Version implements
// it directly.
type TableResolver interface {
	TableFields(table string) (map[string]types.FullType, bool)
}

// CheckContext threads the target dialect, its capability set, the shared
// error accumulator, the in-progress parameter list and the schema table
// catalog through every Build call in one checked expression tree (and,
// via package query, one checked statement).
type CheckContext struct {
	Dialect      string
	Capabilities dialect.Capabilities
	Acc          *relerr.Accumulator
	Params       *ParamList
	Tables       TableResolver
}

// NewCheckContext starts a fresh checker for one statement under
// dialectName, sharing acc with whatever else accumulates errors for the
// surrounding generation pass and tables to resolve query sources against.
func NewCheckContext(dialectName string, acc *relerr.Accumulator, tables TableResolver) *CheckContext {
	return &CheckContext{
		Dialect:      dialectName,
		Capabilities: dialect.CapabilitiesOf(dialectName),
		Acc:          acc,
		Params:       NewParamList(),
		Tables:       tables,
	}
}

func (ctx *CheckContext) Errf(path []string, format string, args ...any) {
	a := ctx.Acc
	for _, p := range path {
		a = a.Path(p)
	}
	a.Push(fmt.Errorf(format, args...))
}

// extend returns a new path with s appended, never mutating path's backing
// array (callers build several sibling paths from the same prefix).
func extend(path []string, s string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = s
	return out
}

func quoteIdent(s string) string { return `"` + s + `"` }

func qualifiedIdentifier(table, name string) string {
	if table == "" {
		return quoteIdent(name)
	}
	return quoteIdent(table) + "." + quoteIdent(name)
}
