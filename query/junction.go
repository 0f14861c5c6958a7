package query

import (
	"fmt"

	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// JunctionOperator is one set operator joining two select bodies.
type JunctionOperator int

const (
	Union JunctionOperator = iota
	UnionAll
	Intersect
	Except
)

func (op JunctionOperator) String() string {
	switch op {
	case Union:
		return "UNION"
	case UnionAll:
		return "UNION ALL"
	case Intersect:
		return "INTERSECT"
	case Except:
		return "EXCEPT"
	default:
		return fmt.Sprintf("JunctionOperator(%d)", int(op))
	}
}

// Junction is one operator applied to a following select body.
type Junction struct {
	Op   JunctionOperator
	Body Body
}

// SetJunction chains a base select body with zero or more set operators,
// each requiring an exact column-count match against Base's resolved shape
// and a general-assignable type per column. Only available under dialects
// with the WindowCTEJunction capability.
type SetJunction struct {
	Base      Body
	Junctions []Junction
}

func (j SetJunction) Build(ctx *expr.CheckContext, path []string, expected ExpectedRowCount) (types.ExprType, *token.Buffer) {
	path = extend(path, "Set junction")
	if !ctx.Capabilities.WindowCTEJunction {
		ctx.Errf(path, "set junctions are not supported under dialect %s", ctx.Dialect)
	}

	baseType, baseBuf := j.Base.Build(ctx, path, expected)

	b := token.New()
	b.AppendLiteral(baseBuf.String())
	for i, junc := range j.Junctions {
		jpath := extend(path, fmt.Sprintf("Junction clause %d - %s", i, junc.Op))
		b.AppendKeyword(junc.Op.String())
		juncType, juncBuf := junc.Body.Build(ctx, jpath, RowsMany)
		if len(juncType) != len(baseType) {
			ctx.Errf(jpath, "select returns %d columns but the base select has %d columns and these must match exactly", len(juncType), len(baseType))
			continue
		}
		for i, got := range juncType {
			cpath := extend(jpath, fmt.Sprintf("Select return %d", i))
			if !baseType[i].Type.GeneralSame(got.Type) {
				ctx.Errf(cpath, "column %d has type %s, expected %s", i, got.Type, baseType[i].Type)
			}
		}
		b.AppendLiteral(juncBuf.String())
	}
	return baseType, b
}
