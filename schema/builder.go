package schema

import (
	"fmt"

	atlasschema "ariga.io/atlas/sql/schema"

	"github.com/relgenhq/relgen/types"
)

// NewVersion starts a new, empty schema version numbered n. Version
// numbers supplied across a sequence must be consecutive integers
// starting at any value; that cross-version invariant is
// checked by the codegen driver, not here.
func NewVersion(n int) *Version {
	return &Version{
		Number:    n,
		nodes:     make(map[NodeID]*Node),
		tableByID: make(map[string]*Table),
	}
}

// Table starts (or, if schemaID was carried over from a previous version,
// continues) a table definition and returns a builder for its fields,
// constraints and indexes.
//
// Supplying the same schemaID twice within one Version is a programmer
// error and panics immediately: it cannot be a
// recoverable, accumulated error because it indicates a bug in the
// caller's build script, not a property of user input the generator was
// asked to check.
func (v *Version) Table(schemaID, name string) *TableBuilder {
	if schemaID == "" || name == "" {
		panic("schema: table schema id and name must be non-empty")
	}
	if _, dup := v.tableByID[schemaID]; dup {
		panic(fmt.Sprintf("schema: duplicate table schema id %q", schemaID))
	}
	for _, t := range v.tables {
		if t.Name() == name {
			panic(fmt.Sprintf("schema: duplicate table name %q", name))
		}
	}
	t := &Table{
		SchemaID: schemaID,
		Atlas:    &atlasschema.Table{Name: name},
	}
	v.tables = append(v.tables, t)
	v.tableByID[schemaID] = t
	id := NodeID{Kind: KindTable, TableID: schemaID, SchemaID: schemaID}
	v.nodes[id] = &Node{ID: id, Body: t}
	return &TableBuilder{version: v, table: t}
}

// TableBuilder constructs a table's fields, constraints and indexes.
type TableBuilder struct {
	version *Version
	table   *Table
}

// Handle returns this table's stable handle.
func (b *TableBuilder) Handle() TableHandle {
	return TableHandle{SchemaID: b.table.SchemaID}
}

// Field declares a column. The field depends on its owning table in the
// planner's dependency graph: a field depends on its owning table.
//
// A nullable field with a MigrationDefault is a programmer error — a
// nullable field cannot declare a migration default — and panics: this
// is caught here, at build time, rather than accumulated,
// because — unlike a missing default on a brand-new non-nullable column,
// which depends on which version introduced the field — nullability and
// the presence of a default are both decided by the same call and never
// depend on cross-version context.
func (b *TableBuilder) Field(schemaID, name string, t types.FieldType) FieldHandle {
	if schemaID == "" || name == "" {
		panic("schema: field schema id and name must be non-empty")
	}
	if t.Nullable && t.MigrationDefault != nil {
		panic(fmt.Sprintf("schema: nullable field %q cannot declare a migration default", name))
	}
	for _, f := range b.table.Fields {
		if f.SchemaID == schemaID {
			panic(fmt.Sprintf("schema: duplicate field schema id %q in table %q", schemaID, b.table.Name()))
		}
		if f.Name == name {
			panic(fmt.Sprintf("schema: duplicate field name %q in table %q", name, b.table.Name()))
		}
	}
	f := &Field{
		SchemaID: schemaID,
		TableID:  b.table.SchemaID,
		Name:     name,
		Type:     t,
		Atlas: &atlasschema.Column{
			Name: name,
			Type: &atlasschema.ColumnType{Null: t.Nullable},
		},
	}
	b.table.Fields = append(b.table.Fields, f)
	id := NodeID{Kind: KindField, TableID: b.table.SchemaID, SchemaID: schemaID}
	b.version.nodes[id] = &Node{ID: id, Deps: []NodeID{b.Handle().NodeID()}, Body: f}
	return FieldHandle{Table: b.Handle(), SchemaID: schemaID}
}

// PrimaryKey declares the table's primary key over fields, in order. A
// table may declare at most one primary key (programmer error otherwise).
func (b *TableBuilder) PrimaryKey(schemaID string, fields ...FieldHandle) ConstraintHandle {
	if b.table.PKey != nil {
		panic(fmt.Sprintf("schema: table %q already has a primary key", b.table.Name()))
	}
	requireSameTable(b.table.SchemaID, fields)
	c := &Constraint{SchemaID: schemaID, TableID: b.table.SchemaID, Kind: PrimaryKey, Fields: fields}
	b.table.PKey = c
	deps := depsFor(b.Handle(), fields, nil)
	id := NodeID{Kind: KindConstraint, TableID: b.table.SchemaID, SchemaID: schemaID}
	b.version.nodes[id] = &Node{ID: id, Deps: deps, Body: c}
	return ConstraintHandle{Table: b.Handle(), SchemaID: schemaID}
}

// ForeignKey declares a foreign key from local (in this table, ordered)
// to foreign (in foreignTable, ordered, same length). All foreign fields
// must belong to one table — a cross-table foreign
// field list is a programmer error and panics.
func (b *TableBuilder) ForeignKey(schemaID string, local []FieldHandle, foreignTable TableHandle, foreign []FieldHandle) ConstraintHandle {
	if len(local) == 0 || len(local) != len(foreign) {
		panic("schema: foreign key local/foreign field lists must be equal, non-zero length")
	}
	requireSameTable(b.table.SchemaID, local)
	requireSameTable(foreignTable.SchemaID, foreign)
	c := &Constraint{
		SchemaID:      schemaID,
		TableID:       b.table.SchemaID,
		Kind:          ForeignKey,
		Fields:        local,
		ForeignTable:  foreignTable,
		ForeignFields: foreign,
	}
	b.table.FKeys = append(b.table.FKeys, c)
	deps := depsFor(b.Handle(), local, foreign)
	deps = append(deps, foreignTable.NodeID())
	id := NodeID{Kind: KindConstraint, TableID: b.table.SchemaID, SchemaID: schemaID}
	b.version.nodes[id] = &Node{ID: id, Deps: deps, Body: c}
	return ConstraintHandle{Table: b.Handle(), SchemaID: schemaID}
}

// Index declares an index, optionally unique, over fields in order.
func (b *TableBuilder) Index(schemaID string, unique bool, fields ...FieldHandle) IndexHandle {
	requireSameTable(b.table.SchemaID, fields)
	idx := &Index{SchemaID: schemaID, TableID: b.table.SchemaID, Fields: fields, Unique: unique}
	b.table.Indexes = append(b.table.Indexes, idx)
	deps := depsFor(b.Handle(), fields, nil)
	id := NodeID{Kind: KindIndex, TableID: b.table.SchemaID, SchemaID: schemaID}
	b.version.nodes[id] = &Node{ID: id, Deps: deps, Body: idx}
	return IndexHandle{Table: b.Handle(), SchemaID: schemaID}
}

func requireSameTable(tableID string, fields []FieldHandle) {
	for _, f := range fields {
		if f.Table.SchemaID != tableID {
			panic(fmt.Sprintf("schema: field %q does not belong to table %q", f.SchemaID, tableID))
		}
	}
}

func depsFor(owner TableHandle, local, foreign []FieldHandle) []NodeID {
	deps := []NodeID{owner.NodeID()}
	for _, f := range local {
		deps = append(deps, f.NodeID())
	}
	for _, f := range foreign {
		deps = append(deps, f.NodeID())
	}
	return deps
}

// PreMigration registers statements to run before this version's DDL.
// Supplying a pre-migration on the first version (no previous
// version to migrate from) is an error returned by the codegen driver,
// not checked here — building the Version does not yet know its
// position in the sequence.
func (v *Version) PreMigration(stmts ...Statement) {
	v.preStmts = append(v.preStmts, stmts...)
}

// PostMigration registers statements to run after this version's DDL.
func (v *Version) PostMigration(stmts ...Statement) {
	v.postStmts = append(v.postStmts, stmts...)
}
