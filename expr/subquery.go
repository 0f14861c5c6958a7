package expr

import (
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// Subquery nests a query body in expression position — a scalar subquery
// used as a value. Body is checked expecting many rows may be returned at
// the SQL level; callers that need exactly one row wrap the result with a
// dialect's own LIMIT 1 or rely on the surrounding statement's own
// ExpectedRowCount to reject more than one at execution time.
type Subquery struct {
	Body QueryBody
}

func (s Subquery) Build(ctx *CheckContext, path []string, _ Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, "Subquery")
	t, inner := s.Body.Build(ctx, path, RowsMany)
	if _, ok := t.Scalar(); !ok && len(t) != 0 {
		ctx.Errf(path, "a subquery used as a value must select exactly one column")
	}
	b := token.New()
	b.Sub(func(ib *token.Buffer) { ib.AppendLiteral(inner.String()) })
	return t, b
}

// Exists checks a query body's existence, yielding a non-nullable bool.
type Exists struct {
	Not  bool
	Body QueryBody
}

func (e Exists) Build(ctx *CheckContext, path []string, _ Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, "Exists")
	_, inner := e.Body.Build(ctx, path, RowsMany)

	b := token.New()
	if e.Not {
		b.AppendKeyword("NOT")
	}
	b.AppendKeyword("EXISTS")
	b.Sub(func(ib *token.Buffer) { ib.AppendLiteral(inner.String()) })
	return types.ExprType{{Type: types.FullType{Primitive: types.Bool}}}, b
}
