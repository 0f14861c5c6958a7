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

func i64() types.FullType { return types.FullType{Primitive: types.I64} }

func TestParamReuseSharesPlaceholder(t *testing.T) {
	acc := relerr.New()
	ctx := expr.NewCheckContext(dialect.Postgres, acc, nil)
	scope := expr.Scope{}

	_, b1 := expr.Param{Name: "id", Type: i64()}.Build(ctx, nil, scope)
	_, b2 := expr.Param{Name: "id", Type: i64()}.Build(ctx, nil, scope)

	require.True(t, acc.OK())
	assert.Equal(t, "$1", b1.String())
	assert.Equal(t, "$1", b2.String())
	assert.Len(t, ctx.Params.Entries(), 1)
}

func TestParamReuseWithMismatchedTypeIsRejected(t *testing.T) {
	acc := relerr.New()
	ctx := expr.NewCheckContext(dialect.Postgres, acc, nil)
	scope := expr.Scope{}

	expr.Param{Name: "id", Type: i64()}.Build(ctx, nil, scope)
	expr.Param{Name: "id", Type: types.FullType{Primitive: types.String}}.Build(ctx, nil, scope)

	require.False(t, acc.OK())
	assert.Contains(t, acc.Errors()[0].Error(), "already used with type")
}

func TestArrayParamAllowedUnderSQLiteOnly(t *testing.T) {
	arrayType := types.FullType{Primitive: types.I64, Array: true}

	sqliteAcc := relerr.New()
	sqliteCtx := expr.NewCheckContext(dialect.SQLite, sqliteAcc, nil)
	_, b := expr.Param{Name: "ids", Type: arrayType}.Build(sqliteCtx, nil, expr.Scope{})
	require.True(t, sqliteAcc.OK())
	assert.Equal(t, "$1", b.String())

	pgAcc := relerr.New()
	pgCtx := expr.NewCheckContext(dialect.Postgres, pgAcc, nil)
	expr.Param{Name: "ids", Type: arrayType}.Build(pgCtx, nil, expr.Scope{})
	require.False(t, pgAcc.OK())
	assert.Contains(t, pgAcc.Errors()[0].Error(), "array-typed parameters")
}

func TestRarrayWrapsAnArrayParamExactlyOnce(t *testing.T) {
	arrayType := types.FullType{Primitive: types.I64, Array: true}
	_, sql := buildOK(t, dialect.SQLite, expr.Rarray(expr.Param{Name: "ids", Type: arrayType}), expr.Scope{})
	assert.Equal(t, "rarray ($1)", sql)
}
