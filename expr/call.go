package expr

import (
	"fmt"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// TypeCompute resolves a Call's result type from its checked argument
// types, pushing any problem onto ctx.Acc itself and returning false if
// the call cannot be typed (e.g. wrong arity, wrong dialect). This is how
// aggregates, string/date functions and built-ins like rarray are
// expressed without a baked-in function table.
type TypeCompute func(ctx *CheckContext, path []string, args []types.ExprType) (types.FullType, bool)

// Call applies a named SQL function to a list of argument expressions.
// ResultName, if set, names the call's single result column (used for
// aggregates and other functions whose output is referenced by name in an
// enclosing SELECT list).
type Call struct {
	Func       string
	Args       []Expr
	Compute    TypeCompute
	ResultName string
}

func (c Call) Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, fmt.Sprintf("Call %s", c.Func))

	argTypes := make([]types.ExprType, len(c.Args))
	argBufs := make([]*token.Buffer, len(c.Args))
	for i, a := range c.Args {
		t, b := a.Build(ctx, extend(path, fmt.Sprintf("Argument %d", i)), scope)
		argTypes[i] = t
		argBufs[i] = b
	}

	result, ok := c.Compute(ctx, path, argTypes)
	if !ok {
		return nil, token.New()
	}

	b := token.New()
	b.AppendKeyword(c.Func)
	b.Sub(func(inner *token.Buffer) {
		parts := make([]func(*token.Buffer), len(argBufs))
		for i, ab := range argBufs {
			ab := ab
			parts[i] = func(b *token.Buffer) { b.AppendLiteral(ab.String()) }
		}
		inner.Join(parts, ",")
	})
	return types.ExprType{{Name: c.ResultName, Type: result}}, b
}

// Rarray wraps arg — which must check as a single array-typed value — as
// the SQLite rarray() table-valued function, producing a one-column
// "value" result shaped by the array's element type. rarray is the
// mechanism by which an array-typed parameter is matched against with IN,
// since SQLite has no native array literal or operator.
func Rarray(arg Expr) Call {
	return Call{
		Func: "rarray",
		Args: []Expr{arg},
		Compute: func(ctx *CheckContext, path []string, args []types.ExprType) (types.FullType, bool) {
			if ctx.Dialect != dialect.SQLite {
				ctx.Errf(path, "rarray is only available under SQLite")
				return types.FullType{}, false
			}
			if len(args) != 1 {
				ctx.Errf(path, "rarray takes exactly one argument, got %d", len(args))
				return types.FullType{}, false
			}
			t, ok := args[0].Scalar()
			if !ok || !t.Array {
				ctx.Errf(path, "rarray's argument must be a single array-typed value")
				return types.FullType{}, false
			}
			elem := t
			elem.Array = false
			return elem, true
		},
		ResultName: "value",
	}
}
