package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/types"
)

func TestCastAllowsNullabilityMismatch(t *testing.T) {
	c := expr.Cast{
		Inner:  expr.Lit{Primitive: types.I64, Value: int64(5)},
		Target: types.FullType{Primitive: types.I64, Nullable: true},
	}
	typ, _ := buildOK(t, dialect.Postgres, c, expr.Scope{})
	scalar, ok := typ.Scalar()
	require.True(t, ok)
	assert.True(t, scalar.Nullable)
}

func TestCastRejectsIncompatibleClass(t *testing.T) {
	c := expr.Cast{
		Inner:  expr.Lit{Primitive: types.I64, Value: int64(5)},
		Target: types.FullType{Primitive: types.String},
	}
	errs := buildErr(t, dialect.Postgres, c, expr.Scope{})
	assert.Contains(t, errs[0].Error(), "not compatible")
}
