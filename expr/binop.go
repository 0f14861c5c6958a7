package expr

import (
	"fmt"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// BinOpKind names a binary operator family. Arithmetic and boolean ops
// require every operand's type to agree exactly (SameType/bool); the
// comparison ops require general-same or general-compatible operands and
// always yield a non-nullable bool.
type BinOpKind int

const (
	OpPlus BinOpKind = iota
	OpMinus
	OpMultiply
	OpDivide
	OpAnd
	OpOr
	OpEquals
	OpNotEquals
	OpIs
	OpIsNot
	OpTzEquals
	OpTzNotEquals
	OpTzIs
	OpTzIsNot
	OpLessThan
	OpLessThanEqual
	OpGreaterThan
	OpGreaterThanEqual
	OpLike
	OpIn
	OpNotIn
)

func (k BinOpKind) String() string {
	switch k {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpEquals, OpTzEquals:
		return "="
	case OpNotEquals, OpTzNotEquals:
		return "<>"
	case OpIs, OpTzIs:
		return "IS"
	case OpIsNot, OpTzIsNot:
		return "IS NOT"
	case OpLessThan:
		return "<"
	case OpLessThanEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanEqual:
		return ">="
	case OpLike:
		return "LIKE"
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT IN"
	default:
		return fmt.Sprintf("BinOpKind(%d)", int(k))
	}
}

func isArithmetic(k BinOpKind) bool {
	return k == OpPlus || k == OpMinus || k == OpMultiply || k == OpDivide
}

func isBoolean(k BinOpKind) bool {
	return k == OpAnd || k == OpOr
}

func isInFamily(k BinOpKind) bool {
	return k == OpIn || k == OpNotIn
}

func isTz(k BinOpKind) bool {
	return k == OpTzEquals || k == OpTzNotEquals || k == OpTzIs || k == OpTzIsNot
}

// isNullTolerant reports whether k tolerates a nullability mismatch
// between its operands (IS / IS NOT and their timezone-aware equivalents).
func isNullTolerant(k BinOpKind) bool {
	return k == OpIs || k == OpIsNot || k == OpTzIs || k == OpTzIsNot
}

func minOperands(k BinOpKind) int {
	if isArithmetic(k) || isBoolean(k) {
		return 1
	}
	return 2
}

// BinOp is a two-operand binary operator application.
type BinOp struct {
	Op          BinOpKind
	Left, Right Expr
}

func (e BinOp) Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, fmt.Sprintf("Bin op %s", e.Op))
	return buildChain(ctx, path, scope, e.Op, []Expr{e.Left, e.Right})
}

// ChainedBinOp applies an operator across a list of operands left to
// right, e.g. a + b + c or x AND y AND z, without nesting BinOp pairs.
// Arithmetic and boolean operators need at least one operand; every
// other operator needs at least two.
type ChainedBinOp struct {
	Op       BinOpKind
	Operands []Expr
}

func (e ChainedBinOp) Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, fmt.Sprintf("Chained bin op %s", e.Op))
	return buildChain(ctx, path, scope, e.Op, e.Operands)
}

func buildChain(ctx *CheckContext, path []string, scope Scope, op BinOpKind, operands []Expr) (types.ExprType, *token.Buffer) {
	if min := minOperands(op); len(operands) < min {
		ctx.Errf(path, "%s requires at least %d operand(s), got %d", op, min, len(operands))
	}

	results := make([]types.ExprType, len(operands))
	buffers := make([]*token.Buffer, len(operands))
	for i, o := range operands {
		t, b := o.Build(ctx, extend(path, fmt.Sprintf("Operand %d", i)), scope)
		results[i] = t
		buffers[i] = b
	}

	resultType := checkOperands(ctx, path, op, results)

	out := token.New()
	out.Sub(func(inner *token.Buffer) {
		for i, b := range buffers {
			if i > 0 {
				inner.AppendKeyword(op.String())
			}
			inner.AppendLiteral(b.String())
		}
	})
	return types.ExprType{{Type: resultType}}, out
}

func checkOperands(ctx *CheckContext, path []string, op BinOpKind, results []types.ExprType) types.FullType {
	switch {
	case isArithmetic(op):
		base, ok := results[0].Scalar()
		if !ok {
			ctx.Errf(path, "arithmetic operand 0 must be a scalar expression")
			return types.FullType{}
		}
		for i := 1; i < len(results); i++ {
			ti, ok := results[i].Scalar()
			if !ok {
				ctx.Errf(path, "arithmetic operand %d must be a scalar expression", i)
				continue
			}
			if !base.SameType(ti) {
				ctx.Errf(path, "arithmetic operands 0 and %d have mismatched types: %s vs %s", i, base, ti)
			}
		}
		return base

	case isBoolean(op):
		for i, r := range results {
			s, ok := r.Scalar()
			if !ok || s.Primitive != types.Bool || s.Nullable || s.Array {
				ctx.Errf(path, "operand %d of %s must be a non-nullable bool expression", i, op)
			}
		}
		return types.FullType{Primitive: types.Bool}

	case isInFamily(op):
		if len(results) == 2 {
			left, lok := results[0].Scalar()
			right, rok := results[1].Scalar()
			if lok && rok {
				if left.Array {
					ctx.Errf(path, "%s requires a scalar left operand, got an array", op)
				}
				if !right.Array {
					ctx.Errf(path, "%s requires an array-typed right operand", op)
				}
				if left.Primitive.Class() != right.Primitive.Class() {
					ctx.Errf(path, "%s operands have incompatible element types: %s vs %s", op, left, right)
				}
			}
		}
		return types.FullType{Primitive: types.Bool}

	default:
		return checkComparison(ctx, path, op, results)
	}
}

func checkComparison(ctx *CheckContext, path []string, op BinOpKind, results []types.ExprType) types.FullType {
	tz := isTz(op)
	if tz && ctx.Dialect != dialect.SQLite {
		ctx.Errf(path, "%s is only supported under SQLite", op)
	}
	tolerant := isNullTolerant(op)

	base, ok := results[0].Scalar()
	if !ok {
		ctx.Errf(path, "operand 0 of %s must be a scalar expression", op)
		return types.FullType{Primitive: types.Bool}
	}
	if !tz && base.Primitive == types.FixedOffsetTimeMS {
		ctx.Errf(path, "fixed-offset timestamps must be converted to UTC before comparison, or compared with the timezone-aware operators")
	}

	for i := 1; i < len(results); i++ {
		ti, ok := results[i].Scalar()
		if !ok {
			ctx.Errf(path, "operand %d of %s must be a scalar expression", i, op)
			continue
		}
		if !tz && ti.Primitive == types.FixedOffsetTimeMS {
			ctx.Errf(path, "fixed-offset timestamps must be converted to UTC before comparison, or compared with the timezone-aware operators")
		}
		var compatible bool
		if tolerant {
			compatible = base.GeneralCompatible(ti)
		} else {
			compatible = base.GeneralSame(ti)
		}
		if !compatible {
			ctx.Errf(path, "operands 0 and %d of %s are not comparable: %s vs %s", i, op, base, ti)
		}
	}
	return types.FullType{Primitive: types.Bool}
}

// PrefixOpKind names a unary prefix operator.
type PrefixOpKind int

const (
	OpNot PrefixOpKind = iota
)

func (k PrefixOpKind) String() string {
	switch k {
	case OpNot:
		return "NOT"
	default:
		return fmt.Sprintf("PrefixOpKind(%d)", int(k))
	}
}

// PrefixOp is a unary prefix operator application (only NOT today).
type PrefixOp struct {
	Op      PrefixOpKind
	Operand Expr
}

func (e PrefixOp) Build(ctx *CheckContext, path []string, scope Scope) (types.ExprType, *token.Buffer) {
	path = extend(path, fmt.Sprintf("Prefix op %s", e.Op))
	t, b := e.Operand.Build(ctx, path, scope)
	if s, ok := t.Scalar(); !ok || s.Primitive != types.Bool || s.Nullable || s.Array {
		ctx.Errf(path, "%s requires a non-nullable bool operand", e.Op)
	}
	out := token.New()
	out.AppendKeyword(e.Op.String())
	out.Sub(func(inner *token.Buffer) { inner.AppendLiteral(b.String()) })
	return types.ExprType{{Type: types.FullType{Primitive: types.Bool}}}, out
}
