package expr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/relerr"
	"github.com/relgenhq/relgen/types"
)

func buildOK(t *testing.T, dialectName string, e expr.Expr, scope expr.Scope) (types.ExprType, string) {
	t.Helper()
	acc := relerr.New()
	ctx := expr.NewCheckContext(dialectName, acc, nil)
	typ, buf := e.Build(ctx, nil, scope)
	require.True(t, acc.OK(), "unexpected errors: %v", acc.Errors())
	return typ, buf.String()
}

func buildErr(t *testing.T, dialectName string, e expr.Expr, scope expr.Scope) []relerr.PathError {
	t.Helper()
	acc := relerr.New()
	ctx := expr.NewCheckContext(dialectName, acc, nil)
	e.Build(ctx, nil, scope)
	require.False(t, acc.OK())
	return acc.Errors()
}

func TestComparisonRejectsMismatchedNullability(t *testing.T) {
	left := expr.Lit{Primitive: types.I64, Value: int64(1)}
	right := expr.TypedNullLit{Type: types.FullType{Primitive: types.I64}}

	errs := buildErr(t, dialect.Postgres, expr.BinOp{Op: expr.OpEquals, Left: left, Right: right}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "not comparable")
}

func TestIsToleratesMismatchedNullability(t *testing.T) {
	left := expr.Lit{Primitive: types.I64, Value: int64(1)}
	right := expr.TypedNullLit{Type: types.FullType{Primitive: types.I64}}

	typ, sql := buildOK(t, dialect.Postgres, expr.BinOp{Op: expr.OpIs, Left: left, Right: right}, expr.Scope{})
	scalar, ok := typ.Scalar()
	require.True(t, ok)
	assert.Equal(t, types.Bool, scalar.Primitive)
	assert.Contains(t, sql, "IS")
}

func TestTzComparisonRejectedUnderPostgres(t *testing.T) {
	left := expr.Lit{Primitive: types.FixedOffsetTimeMS, Value: time.Now()}
	right := expr.Lit{Primitive: types.FixedOffsetTimeMS, Value: time.Now()}
	errs := buildErr(t, dialect.Postgres, expr.BinOp{Op: expr.OpTzEquals, Left: left, Right: right}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "only supported under SQLite")
}

func TestFixedOffsetTimeRejectedByDefaultComparison(t *testing.T) {
	left := expr.Lit{Primitive: types.FixedOffsetTimeMS, Value: time.Now()}
	right := expr.Lit{Primitive: types.FixedOffsetTimeMS, Value: time.Now()}
	errs := buildErr(t, dialect.Postgres, expr.BinOp{Op: expr.OpEquals, Left: left, Right: right}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "fixed-offset timestamps")
}

func TestChainedBinOpRequiresMinimumOperands(t *testing.T) {
	errs := buildErr(t, dialect.Postgres, expr.ChainedBinOp{Op: expr.OpEquals, Operands: []expr.Expr{
		expr.Lit{Primitive: types.I64, Value: int64(1)},
	}}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "requires at least 2 operand")
}

func TestChainedArithmeticAllowsSingleOperand(t *testing.T) {
	typ, _ := buildOK(t, dialect.Postgres, expr.ChainedBinOp{Op: expr.OpPlus, Operands: []expr.Expr{
		expr.Lit{Primitive: types.I64, Value: int64(1)},
	}}, expr.Scope{})
	scalar, ok := typ.Scalar()
	require.True(t, ok)
	assert.Equal(t, types.I64, scalar.Primitive)
}

func TestArithmeticRejectsMismatchedTypes(t *testing.T) {
	errs := buildErr(t, dialect.Postgres, expr.BinOp{
		Op:    expr.OpPlus,
		Left:  expr.Lit{Primitive: types.I64, Value: int64(1)},
		Right: expr.Lit{Primitive: types.F64, Value: 1.0},
	}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "mismatched types")
}

func TestInRequiresArrayRightOperand(t *testing.T) {
	errs := buildErr(t, dialect.Postgres, expr.BinOp{
		Op:    expr.OpIn,
		Left:  expr.Lit{Primitive: types.I64, Value: int64(1)},
		Right: expr.Lit{Primitive: types.I64, Value: int64(2)},
	}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "array-typed right operand")
}

func TestPrefixNotRequiresNonNullableBool(t *testing.T) {
	errs := buildErr(t, dialect.Postgres, expr.PrefixOp{
		Op:      expr.OpNot,
		Operand: expr.TypedNullLit{Type: types.FullType{Primitive: types.Bool}},
	}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "non-nullable bool")
}
