package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgenhq/relgen/schema"
	"github.com/relgenhq/relgen/types"
)

func buildBasicVersion() *schema.Version {
	v := schema.NewVersion(0)
	tb := v.Table("t_banan", "banan")
	tb.Field("f_hizat", "hizat", types.FieldType{FullType: types.FullType{Primitive: types.String}})
	return v
}

func TestTableAndFieldDependOnOwner(t *testing.T) {
	v := buildBasicVersion()
	tbl, ok := v.Table("t_banan")
	require.True(t, ok)
	require.Len(t, tbl.Fields, 1)

	fieldNode, ok := v.Node(schema.NodeID{Kind: schema.KindField, TableID: "t_banan", SchemaID: "f_hizat"})
	require.True(t, ok)
	require.Len(t, fieldNode.Deps, 1)
	assert.Equal(t, schema.NodeID{Kind: schema.KindTable, TableID: "t_banan", SchemaID: "t_banan"}, fieldNode.Deps[0])
}

func TestDuplicateTableSchemaIDPanics(t *testing.T) {
	v := schema.NewVersion(0)
	v.Table("t1", "one")
	assert.Panics(t, func() {
		v.Table("t1", "two")
	})
}

func TestDuplicateTableNamePanics(t *testing.T) {
	v := schema.NewVersion(0)
	v.Table("t1", "same")
	assert.Panics(t, func() {
		v.Table("t2", "same")
	})
}

func TestNullableFieldWithMigrationDefaultPanics(t *testing.T) {
	v := schema.NewVersion(0)
	tb := v.Table("t1", "one")
	assert.Panics(t, func() {
		tb.Field("f1", "f1", types.FieldType{
			FullType:         types.FullType{Primitive: types.Bool, Nullable: true},
			MigrationDefault: fakeDefault{},
		})
	})
}

func TestForeignKeyAcrossTableFieldsPanics(t *testing.T) {
	v := schema.NewVersion(0)
	a := v.Table("a", "a")
	fa := a.Field("fa", "fa", types.FieldType{FullType: types.FullType{Primitive: types.I64}})
	b := v.Table("b", "b")
	fb := b.Field("fb", "fb", types.FieldType{FullType: types.FullType{Primitive: types.I64}})

	assert.Panics(t, func() {
		a.ForeignKey("fk1", []schema.FieldHandle{fa, fb}, b.Handle(), []schema.FieldHandle{fb, fb})
	})
}

func TestPrimaryKeyAndIndexDependOnFields(t *testing.T) {
	v := schema.NewVersion(0)
	tb := v.Table("t1", "one")
	f := tb.Field("f1", "f1", types.FieldType{FullType: types.FullType{Primitive: types.I64}})
	tb.PrimaryKey("pk1", f)
	tb.Index("ix1", true, f)

	pkNode, ok := v.Node(schema.NodeID{Kind: schema.KindConstraint, TableID: "t1", SchemaID: "pk1"})
	require.True(t, ok)
	assert.Contains(t, pkNode.Deps, schema.NodeID{Kind: schema.KindField, TableID: "t1", SchemaID: "f1"})

	ixNode, ok := v.Node(schema.NodeID{Kind: schema.KindIndex, TableID: "t1", SchemaID: "ix1"})
	require.True(t, ok)
	assert.Contains(t, ixNode.Deps, schema.NodeID{Kind: schema.KindField, TableID: "t1", SchemaID: "f1"})
}

type fakeDefault struct{}

func (fakeDefault) CompileDefaultLiteral(d string) (string, error) { return "", nil }
