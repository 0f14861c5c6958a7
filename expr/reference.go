package expr

import (
	"fmt"

	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// Param is a named, positional query parameter. Every Param with the same
// Name within one statement shares a single $N placeholder, assigned in
// first-seen order; repeats must agree on Type.
type Param struct {
	Name string
	Type types.FullType
}

func (p Param) Build(ctx *CheckContext, path []string, _ Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, fmt.Sprintf("Parameter %s", p.Name))
	pos := ctx.Params.Resolve(ctx, path, p.Name, p.Type)

	if p.Type.Array && !ctx.Capabilities.ArrayParameter {
		ctx.Errf(path, "array-typed parameters are not supported under dialect %s", ctx.Dialect)
	}
	b := token.New()
	b.AppendLiteral(placeholder(pos))
	return types.ExprType{{Name: p.Name, Type: p.Type}}, b
}

// Binding references a single field already present in scope, either
// table-qualified (the common case, inside a query body) or bare (e.g. a
// window's own partition/order terms).
type Binding struct {
	Ref Ref
}

func (bnd Binding) Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, fmt.Sprintf("Binding %s", bnd.Ref))
	t, ok := scope[bnd.Ref]
	if !ok {
		ctx.Errf(path, "%s is not available in this scope", bnd.Ref)
		return nil, token.New()
	}
	b := token.New()
	b.AppendLiteral(qualifiedIdentifier(bnd.Ref.Table, bnd.Ref.Name))
	return types.ExprType{{Name: bnd.Ref.Name, Type: t}}, b
}
