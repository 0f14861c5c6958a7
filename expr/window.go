package expr

import (
	"fmt"

	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// SortOrder is the direction of an ORDER BY term.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}

// OrderTerm is one ORDER BY entry, inside a Window or a query body.
type OrderTerm struct {
	Expr  Expr
	Order SortOrder
}

// Window wraps Expr (typically a Call to an aggregate or ranking
// function) in an OVER clause. The window's own type is its inner
// expression's type; partition and order terms are checked against the
// same scope but their types are discarded. Window is only available
// under dialects with the WindowCTEJunction capability.
type Window struct {
	Expr        Expr
	PartitionBy []Expr
	OrderBy     []OrderTerm
}

func (w Window) Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, "Window")
	if !ctx.Capabilities.WindowCTEJunction {
		ctx.Errf(path, "window expressions are not supported under dialect %s", ctx.Dialect)
	}

	t, inner := w.Expr.Build(ctx, path, scope)

	b := token.New()
	b.AppendLiteral(inner.String())
	b.AppendKeyword("OVER")
	b.Sub(func(ib *token.Buffer) {
		if len(w.PartitionBy) > 0 {
			ib.AppendKeyword("PARTITION BY")
			parts := make([]func(*token.Buffer), len(w.PartitionBy))
			for i, e := range w.PartitionBy {
				i, e := i, e
				parts[i] = func(b *token.Buffer) {
					_, eb := e.Build(ctx, extend(path, fmt.Sprintf("Partition by %d", i)), scope)
					b.AppendLiteral(eb.String())
				}
			}
			ib.Join(parts, ",")
		}
		if len(w.OrderBy) > 0 {
			ib.AppendKeyword("ORDER BY")
			parts := make([]func(*token.Buffer), len(w.OrderBy))
			for i, term := range w.OrderBy {
				i, term := i, term
				parts[i] = func(b *token.Buffer) {
					_, eb := term.Expr.Build(ctx, extend(path, fmt.Sprintf("Order by %d", i)), scope)
					b.AppendLiteral(eb.String())
					b.AppendKeyword(term.Order.String())
				}
			}
			ib.Join(parts, ",")
		}
	})
	return t, b
}
