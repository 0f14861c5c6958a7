package query

import (
	"fmt"

	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// CTEColumn is one column of a CTE's declared output shape.
type CTEColumn struct {
	Name string
	Type types.FullType
}

// CTE is one WITH clause entry: a named virtual table backed by Body,
// whose resolved column types must match Columns exactly.
type CTE struct {
	Name    string
	Columns []CTEColumn
	Body    Body
}

// CTESource reads from a CTE declared earlier in the same With, using its
// declared column shape directly rather than re-checking the CTE's body.
type CTESource struct {
	CTE CTE
}

func (s CTESource) build(_ *expr.CheckContext, _ []string) (expr.Scope, *token.Buffer) {
	scope := make(expr.Scope, len(s.CTE.Columns))
	for _, c := range s.CTE.Columns {
		scope[expr.Ref{Table: s.CTE.Name, Name: c.Name}] = c.Type
	}
	b := token.New()
	b.AppendIdentifier(s.CTE.Name)
	return scope, b
}

// With wraps Main in a WITH clause declaring one or more CTEs, checked and
// rendered before Main itself. Recursive marks the clause WITH RECURSIVE.
// Only available under dialects with the WindowCTEJunction capability.
type With struct {
	Recursive bool
	CTEs      []CTE
	Main      Body
}

func (w With) Build(ctx *expr.CheckContext, path []string, expected ExpectedRowCount) (types.ExprType, *token.Buffer) {
	path = extend(path, "With")
	if !ctx.Capabilities.WindowCTEJunction {
		ctx.Errf(path, "CTEs are not supported under dialect %s", ctx.Dialect)
	}

	cteBufs := make([]func(*token.Buffer), len(w.CTEs))
	for i, cte := range w.CTEs {
		cpath := extend(path, fmt.Sprintf("CTE %s", cte.Name))
		bodyType, bodyBuf := cte.Body.Build(ctx, cpath, RowsMany)
		if len(bodyType) != len(cte.Columns) {
			ctx.Errf(cpath, "CTE declares %d columns but its body returns %d", len(cte.Columns), len(bodyType))
		} else {
			for j, col := range cte.Columns {
				if !col.Type.GeneralSame(bodyType[j].Type) {
					ctx.Errf(extend(cpath, fmt.Sprintf("Column %d", j)), "CTE column %q declared as %s but body returns %s", col.Name, col.Type, bodyType[j].Type)
				}
			}
		}

		i, cte, bodyBuf := i, cte, bodyBuf
		cteBufs[i] = func(b *token.Buffer) {
			b.AppendIdentifier(cte.Name)
			b.Sub(func(inner *token.Buffer) {
				cols := make([]func(*token.Buffer), len(cte.Columns))
				for k, col := range cte.Columns {
					col := col
					cols[k] = func(b *token.Buffer) { b.AppendIdentifier(col.Name) }
				}
				inner.Join(cols, ",")
			})
			b.AppendKeyword("AS")
			b.Sub(func(inner *token.Buffer) { inner.AppendLiteral(bodyBuf.String()) })
		}
	}

	mainType, mainBuf := w.Main.Build(ctx, path, expected)

	b := token.New()
	if w.Recursive {
		b.AppendKeyword("WITH RECURSIVE")
	} else {
		b.AppendKeyword("WITH")
	}
	b.Join(cteBufs, ",")
	b.AppendLiteral(mainBuf.String())
	return mainType, b
}
