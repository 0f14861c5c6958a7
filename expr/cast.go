package expr

import (
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// Cast relabels Inner's checked type as Target, after verifying the two
// are general-compatible (same coarse class, same array-ness; nullability
// is not required to match since a cast can both widen and narrow it).
type Cast struct {
	Inner  Expr
	Target types.FullType
}

func (c Cast) Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, "Cast")
	t, b := c.Inner.Build(ctx, path, scope)
	s, ok := t.Scalar()
	if !ok {
		ctx.Errf(path, "cast requires a scalar inner expression")
	} else if !c.Target.GeneralCompatible(s) {
		ctx.Errf(path, "cast target %s is not compatible with inner expression type %s", c.Target, s)
	}
	return types.ExprType{{Type: c.Target}}, b
}
