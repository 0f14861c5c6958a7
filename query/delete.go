package query

import (
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// Delete builds a DELETE FROM statement against a single table, optionally
// filtered by Where and returning a row shape via Returning.
type Delete struct {
	Table     string
	Where     expr.Expr
	Returning []Output
}

func (d Delete) Build(ctx *expr.CheckContext, path []string, expected ExpectedRowCount) (types.ExprType, *token.Buffer) {
	path = extend(path, "Delete")
	fields, ok := ctx.Tables.TableFields(d.Table)
	if !ok {
		ctx.Errf(path, "unknown table %q", d.Table)
		return nil, token.New()
	}
	scope := tableScope(d.Table, fields)

	b := token.New()
	b.AppendKeyword("DELETE FROM")
	b.AppendIdentifier(d.Table)

	if d.Where != nil {
		wpath := extend(path, "Where")
		whereType, whereBuf := d.Where.Build(ctx, wpath, scope)
		requireBool(ctx, wpath, whereType)
		b.AppendKeyword("WHERE")
		b.AppendLiteral(whereBuf.String())
	}

	cols, retBuf := buildReturning(ctx, path, scope, d.Returning, expected)
	if retBuf != "" {
		b.AppendLiteral(retBuf)
	}
	return cols, b
}
