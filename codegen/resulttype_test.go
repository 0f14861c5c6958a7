package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relgenhq/relgen/types"
)

func TestRowStructRegistryDedupesByShape(t *testing.T) {
	cols := types.ExprType{{Name: "id", Type: types.FullType{Primitive: types.I64}}}
	other := types.ExprType{{Name: "id", Type: types.FullType{Primitive: types.I64}}}

	reg := newRowStructRegistry()
	name1 := reg.nameFor(cols)
	name2 := reg.nameFor(other)
	assert.Equal(t, name1, name2)
	assert.Equal(t, "DbRes0", name1)
}

func TestRowStructRegistryAssignsDistinctNamesForDifferentShapes(t *testing.T) {
	idOnly := types.ExprType{{Name: "id", Type: types.FullType{Primitive: types.I64}}}
	idAndName := types.ExprType{
		{Name: "id", Type: types.FullType{Primitive: types.I64}},
		{Name: "name", Type: types.FullType{Primitive: types.String}},
	}

	reg := newRowStructRegistry()
	name1 := reg.nameFor(idOnly)
	name2 := reg.nameFor(idAndName)
	assert.NotEqual(t, name1, name2)
}
