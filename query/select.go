package query

import (
	"fmt"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// JoinType is INNER or LEFT.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
)

func (j JoinType) keyword() string {
	if j == LeftJoin {
		return "LEFT"
	}
	return "INNER"
}

// Source is what a Select (or a Join) reads rows from: a named table, or
// a nested SelectBody used as a derived table.
type Source interface {
	build(ctx *expr.CheckContext, path []string) (expr.Scope, *token.Buffer)
}

// TableSource reads directly from a schema table by its live SQL name.
type TableSource struct {
	Table string
}

func (s TableSource) build(ctx *expr.CheckContext, path []string) (expr.Scope, *token.Buffer) {
	fields, ok := ctx.Tables.TableFields(s.Table)
	if !ok {
		ctx.Errf(extend(path, "From"), "unknown table %q", s.Table)
		return expr.Scope{}, token.New()
	}
	scope := make(expr.Scope, len(fields))
	for name, t := range fields {
		scope[expr.Ref{Table: s.Table, Name: name}] = t
	}
	b := token.New()
	b.AppendIdentifier(s.Table)
	return scope, b
}

// SubSource reads from a nested select body, requiring an alias so its
// columns can be referenced by name.
type SubSource struct {
	Body Body
}

func (s SubSource) build(ctx *expr.CheckContext, path []string) (expr.Scope, *token.Buffer) {
	cols, buf := s.Body.Build(ctx, path, RowsMany)
	scope := make(expr.Scope, len(cols))
	for _, c := range cols {
		scope[expr.Ref{Name: c.Name}] = c.Type
	}
	out := token.New()
	out.Sub(func(inner *token.Buffer) { inner.AppendLiteral(buf.String()) })
	return scope, out
}

// NamedSource wraps a Source with an optional alias. Alias is required
// when Source is a SubSource, and re-tables every one of its columns
// under the alias when set.
type NamedSource struct {
	Source Source
	Alias  string
}

func (n NamedSource) build(ctx *expr.CheckContext, path []string) (expr.Scope, *token.Buffer) {
	scope, buf := n.Source.build(ctx, path)
	if n.Alias == "" {
		return scope, buf
	}
	aliased := make(expr.Scope, len(scope))
	for ref, t := range scope {
		aliased[expr.Ref{Table: n.Alias, Name: ref.Name}] = t
	}
	out := token.New()
	out.AppendLiteral(buf.String())
	out.AppendKeyword("AS")
	out.AppendIdentifier(n.Alias)
	return aliased, out
}

// Join is one join clause against a named source.
type Join struct {
	Source NamedSource
	Type   JoinType
	On     expr.Expr
}

// Output is one SELECT list entry: an expression and its optional
// column rename.
type Output struct {
	Expr   expr.Expr
	Rename string
}

// SelectBody is one SELECT statement without any set-junction or CTE
// wrapper — the unit joins, grouping, ordering and limiting are built
// against.
type SelectBody struct {
	From     NamedSource
	Distinct bool
	Output   []Output
	Joins    []Join
	Where    expr.Expr
	GroupBy  []expr.Expr
	OrderBy  []expr.OrderTerm
	Limit    expr.Expr
}

func (s SelectBody) Build(ctx *expr.CheckContext, path []string, expected ExpectedRowCount) (types.ExprType, *token.Buffer) {
	path = extend(path, "Select")
	fromScope, fromBuf := s.From.build(ctx, path)
	scope := fromScope

	joinBufs := make([]string, len(s.Joins))
	for i, j := range s.Joins {
		jpath := extend(path, fmt.Sprintf("Join %d", i))
		joinScope, sourceBuf := j.Source.build(ctx, jpath)
		onType, onBuf := j.On.Build(ctx, extend(jpath, "On"), scope.Merge(joinScope))
		requireBool(ctx, extend(jpath, "On"), onType)

		if j.Type == LeftJoin {
			joinScope = joinScope.WithNullable()
		}
		scope = scope.Merge(joinScope)

		jb := token.New()
		jb.AppendKeyword(j.Type.keyword())
		jb.AppendKeyword("JOIN")
		jb.AppendLiteral(sourceBuf.String())
		jb.AppendKeyword("ON")
		jb.AppendLiteral(onBuf.String())
		joinBufs[i] = jb.String()
	}

	if len(s.Output) == 0 {
		ctx.Errf(path, "select must have at least one output")
	}
	cols, outputParts := buildOutputs(ctx, path, scope, s.Output, expected)

	b := token.New()
	b.AppendKeyword("SELECT")
	if s.Distinct {
		if ctx.Dialect != dialect.SQLite {
			ctx.Errf(path, "DISTINCT is not supported under dialect %s", ctx.Dialect)
		}
		b.AppendKeyword("DISTINCT")
	}
	b.Join(outputParts, ",")
	b.AppendKeyword("FROM")
	b.AppendLiteral(fromBuf.String())
	for _, jb := range joinBufs {
		b.AppendLiteral(jb)
	}
	if s.Where != nil {
		whereType, whereBuf := s.Where.Build(ctx, extend(path, "Where"), scope)
		requireBool(ctx, extend(path, "Where"), whereType)
		b.AppendKeyword("WHERE")
		b.AppendLiteral(whereBuf.String())
	}
	if len(s.GroupBy) > 0 {
		b.AppendKeyword("GROUP BY")
		parts := make([]func(*token.Buffer), len(s.GroupBy))
		for i, g := range s.GroupBy {
			i, g := i, g
			parts[i] = func(b *token.Buffer) {
				_, gb := g.Build(ctx, extend(path, fmt.Sprintf("Group by %d", i)), scope)
				b.AppendLiteral(gb.String())
			}
		}
		b.Join(parts, ",")
	}
	if len(s.OrderBy) > 0 {
		b.AppendKeyword("ORDER BY")
		parts := make([]func(*token.Buffer), len(s.OrderBy))
		for i, o := range s.OrderBy {
			i, o := i, o
			parts[i] = func(b *token.Buffer) {
				_, ob := o.Expr.Build(ctx, extend(path, fmt.Sprintf("Order by %d", i)), scope)
				b.AppendLiteral(ob.String())
				b.AppendKeyword(o.Order.String())
			}
		}
		b.Join(parts, ",")
	}
	if s.Limit != nil {
		limitType, limitBuf := s.Limit.Build(ctx, extend(path, "Limit"), scope)
		requireIntegerScalar(ctx, extend(path, "Limit"), limitType)
		b.AppendKeyword("LIMIT")
		b.AppendLiteral(limitBuf.String())
	}
	return cols, b
}

func buildOutputs(ctx *expr.CheckContext, path []string, scope expr.Scope, outputs []Output, expected ExpectedRowCount) (types.ExprType, []func(*token.Buffer)) {
	if len(outputs) == 0 && expected != RowsNone {
		ctx.Errf(path, "query has no outputs but expects rows")
	}
	if len(outputs) > 0 && expected == RowsNone {
		ctx.Errf(path, "query has outputs but expects no rows")
	}

	var cols types.ExprType
	parts := make([]func(*token.Buffer), len(outputs))
	for i, o := range outputs {
		opath := extend(path, fmt.Sprintf("Result %d", i))
		t, b := o.Expr.Build(ctx, opath, scope)
		scalar, ok := t.Scalar()
		if !ok {
			ctx.Errf(opath, "select output must be a scalar expression")
			parts[i] = func(b *token.Buffer) {}
			continue
		}
		name := t[0].Name
		o := o
		b := b
		parts[i] = func(out *token.Buffer) {
			out.AppendLiteral(b.String())
			if o.Rename != "" {
				out.AppendKeyword("AS")
				out.AppendIdentifier(o.Rename)
			}
		}
		if o.Rename != "" {
			name = o.Rename
		}
		cols = append(cols, types.Binding{Name: name, Type: scalar})
	}
	return cols, parts
}

func requireBool(ctx *expr.CheckContext, path []string, t types.ExprType) {
	s, ok := t.Scalar()
	if !ok || s.Primitive != types.Bool || s.Array {
		ctx.Errf(path, "expected a bool expression")
	}
}

func requireIntegerScalar(ctx *expr.CheckContext, path []string, t types.ExprType) {
	s, ok := t.Scalar()
	if !ok || s.Array || (s.Primitive != types.I32 && s.Primitive != types.I64 && s.Primitive != types.U32) {
		ctx.Errf(path, "expected an integer expression")
	}
}
