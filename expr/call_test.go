package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/relerr"
	"github.com/relgenhq/relgen/types"
)

func TestRarrayProducesScalarElementType(t *testing.T) {
	arg := expr.Param{Name: "ids", Type: types.FullType{Primitive: types.I64, Array: true}}
	typ, sql := buildOK(t, dialect.SQLite, expr.Rarray(arg), expr.Scope{})
	scalar, ok := typ.Scalar()
	require.True(t, ok)
	assert.Equal(t, types.I64, scalar.Primitive)
	assert.False(t, scalar.Array)
	assert.Contains(t, sql, "rarray")
}

func TestRarrayRejectedUnderPostgres(t *testing.T) {
	arg := expr.Param{Name: "ids", Type: types.FullType{Primitive: types.I64, Array: true}}
	acc := relerr.New()
	ctx := expr.NewCheckContext(dialect.Postgres, acc, nil)
	expr.Rarray(arg).Build(ctx, nil, expr.Scope{})
	require.False(t, acc.OK())
	assert.Contains(t, acc.Errors()[0].Error(), "rarray is only available under SQLite")
}

func TestRarrayRejectsNonArrayArgument(t *testing.T) {
	arg := expr.Lit{Primitive: types.I64, Value: int64(1)}
	errs := buildErr(t, dialect.SQLite, expr.Rarray(arg), expr.Scope{})
	assert.Contains(t, errs[0].Error(), "array-typed value")
}

func TestCallComputesResultType(t *testing.T) {
	c := expr.Call{
		Func: "count",
		Args: []expr.Expr{expr.Lit{Primitive: types.I64, Value: int64(1)}},
		Compute: func(ctx *expr.CheckContext, path []string, args []types.ExprType) (types.FullType, bool) {
			return types.FullType{Primitive: types.I64}, true
		},
		ResultName: "n",
	}
	typ, sql := buildOK(t, dialect.Postgres, c, expr.Scope{})
	require.Len(t, typ, 1)
	assert.Equal(t, "n", typ[0].Name)
	assert.Contains(t, sql, "count")
}
