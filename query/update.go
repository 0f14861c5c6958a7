package query

import (
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// Update builds an UPDATE statement against a single table, optionally
// filtered by Where and returning a row shape via Returning.
type Update struct {
	Table     string
	Values    []Assignment
	Where     expr.Expr
	Returning []Output
}

func (u Update) Build(ctx *expr.CheckContext, path []string, expected ExpectedRowCount) (types.ExprType, *token.Buffer) {
	path = extend(path, "Update")
	fields, ok := ctx.Tables.TableFields(u.Table)
	if !ok {
		ctx.Errf(path, "unknown table %q", u.Table)
		return nil, token.New()
	}
	scope := tableScope(u.Table, fields)

	b := token.New()
	b.AppendKeyword("UPDATE")
	b.AppendIdentifier(u.Table)
	buildSet(ctx, path, fields, scope, b, u.Values)

	if u.Where != nil {
		wpath := extend(path, "Where")
		whereType, whereBuf := u.Where.Build(ctx, wpath, scope)
		requireBool(ctx, wpath, whereType)
		b.AppendKeyword("WHERE")
		b.AppendLiteral(whereBuf.String())
	}

	cols, retBuf := buildReturning(ctx, path, scope, u.Returning, expected)
	if retBuf != "" {
		b.AppendLiteral(retBuf)
	}
	return cols, b
}
