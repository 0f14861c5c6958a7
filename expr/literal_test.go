package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/types"
)

func TestBoolLiteralRendersPerDialect(t *testing.T) {
	_, pg := buildOK(t, dialect.Postgres, expr.Lit{Primitive: types.Bool, Value: true}, expr.Scope{})
	assert.Equal(t, "TRUE", pg)

	_, lite := buildOK(t, dialect.SQLite, expr.Lit{Primitive: types.Bool, Value: true}, expr.Scope{})
	assert.Equal(t, "1", lite)
}

func TestStringLiteralEscapesQuotes(t *testing.T) {
	_, sql := buildOK(t, dialect.Postgres, expr.Lit{Primitive: types.String, Value: "it's fine"}, expr.Scope{})
	assert.Equal(t, "'it''s fine'", sql)
}

func TestU32LiteralRejectedUnderPostgres(t *testing.T) {
	errs := buildErr(t, dialect.Postgres, expr.Lit{Primitive: types.U32, Value: uint32(3)}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "u32 literal is only valid under SQLite")
}

func TestTypedNullLitIsNullable(t *testing.T) {
	typ, sql := buildOK(t, dialect.Postgres, expr.TypedNullLit{Type: types.FullType{Primitive: types.String}}, expr.Scope{})
	scalar, ok := typ.Scalar()
	require.True(t, ok)
	assert.True(t, scalar.Nullable)
	assert.Equal(t, "NULL", sql)
}

func TestArrayLitRequiresMatchingElementTypes(t *testing.T) {
	errs := buildErr(t, dialect.Postgres, expr.ArrayLit{Elements: []expr.Expr{
		expr.Lit{Primitive: types.I64, Value: int64(1)},
		expr.Lit{Primitive: types.String, Value: "x"},
	}}, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "incompatible types")
}

func TestArrayLitProducesArrayTypedResult(t *testing.T) {
	typ, _ := buildOK(t, dialect.Postgres, expr.ArrayLit{Elements: []expr.Expr{
		expr.Lit{Primitive: types.I64, Value: int64(1)},
		expr.Lit{Primitive: types.I64, Value: int64(2)},
	}}, expr.Scope{})
	scalar, ok := typ.Scalar()
	require.True(t, ok)
	assert.True(t, scalar.Array)
	assert.Equal(t, types.I64, scalar.Primitive)
}

func TestLitSatisfiesDefaultExprInterface(t *testing.T) {
	var d types.DefaultExpr = expr.Lit{Primitive: types.Bool, Value: false}
	text, err := d.CompileDefaultLiteral(dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "0", text)
}
