// Package schema implements relgen's data model: tables,
// fields, constraints and indexes carrying a stable schema id across
// versions, assembled into a Version via fluent builders. The graph
// migrator (package migrate) and the query checker (package expr, package
// query) consume Versions read-only.
package schema

import (
	atlasschema "ariga.io/atlas/sql/schema"

	"github.com/relgenhq/relgen/types"
)

// NodeKind discriminates the four entity kinds the planner's dependency
// graph tracks, each a tagged variant of the same node shape.
type NodeKind int

const (
	KindTable NodeKind = iota
	KindField
	KindConstraint
	KindIndex
)

func (k NodeKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindField:
		return "field"
	case KindConstraint:
		return "constraint"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// NodeID is the internal graph-id a migration node is keyed by: the kind,
// the schema id of the owning table (equal to SchemaID for a table node
// itself) and the entity's own schema id.
type NodeID struct {
	Kind     NodeKind
	TableID  string
	SchemaID string
}

// TableHandle, FieldHandle, ConstraintHandle and IndexHandle are small
// comparable values builder methods return so callers can pass an entity
// reference to a later builder call (e.g. a field handle into PrimaryKey)
// without holding a pointer into mutable builder state.
type TableHandle struct{ SchemaID string }

type FieldHandle struct {
	Table    TableHandle
	SchemaID string
}

type ConstraintHandle struct {
	Table    TableHandle
	SchemaID string
}

type IndexHandle struct {
	Table    TableHandle
	SchemaID string
}

func (h FieldHandle) NodeID() NodeID {
	return NodeID{Kind: KindField, TableID: h.Table.SchemaID, SchemaID: h.SchemaID}
}

func (h TableHandle) NodeID() NodeID {
	return NodeID{Kind: KindTable, TableID: h.SchemaID, SchemaID: h.SchemaID}
}

func (h ConstraintHandle) NodeID() NodeID {
	return NodeID{Kind: KindConstraint, TableID: h.Table.SchemaID, SchemaID: h.SchemaID}
}

func (h IndexHandle) NodeID() NodeID {
	return NodeID{Kind: KindIndex, TableID: h.Table.SchemaID, SchemaID: h.SchemaID}
}

// Table is the entity payload for a KindTable node. It embeds an
// atlas/sql/schema.Table for its column/name vocabulary while ownership,
// identity and dependency bookkeeping stay relgen's own.
type Table struct {
	SchemaID string
	Atlas    *atlasschema.Table
	Fields   []*Field
	PKey     *Constraint // at most one primary key per table
	FKeys    []*Constraint
	Indexes  []*Index
}

// Name returns the table's current SQL identifier.
func (t *Table) Name() string { return t.Atlas.Name }

// Field is the entity payload for a KindField node.
type Field struct {
	SchemaID string
	TableID  string
	Name     string
	Type     types.FieldType
	Atlas    *atlasschema.Column
}

// ConstraintKind discriminates primary-key from foreign-key constraints.
type ConstraintKind int

const (
	PrimaryKey ConstraintKind = iota
	ForeignKey
)

// Constraint is the entity payload for a KindConstraint node.
type Constraint struct {
	SchemaID string
	TableID  string
	Kind     ConstraintKind

	// Fields holds the ordered local field list for a PrimaryKey, and the
	// ordered local side of the field pairs for a ForeignKey.
	Fields []FieldHandle

	// ForeignTable and ForeignFields are set only for a ForeignKey; all
	// ForeignFields belong to ForeignTable.
	ForeignTable  TableHandle
	ForeignFields []FieldHandle

	Atlas *atlasschema.ForeignKey // not populated by the schema builders
}

// Index is the entity payload for a KindIndex node.
type Index struct {
	SchemaID string
	TableID  string
	Fields   []FieldHandle
	Unique   bool
	Atlas    *atlasschema.Index
}

// Statement is the marker interface a pre/post-migration statement must
// implement. It is declared here (rather than importing package query)
// so schema has no dependency on the query checker; query.Query
// implements it via its RelgenStatement method.
type Statement interface {
	RelgenStatement()
}

// Version is one schema version: a set of migration nodes reachable by
// NodeID, plus ordered pre- and post-migration statements.
type Version struct {
	Number int

	nodes      map[NodeID]*Node
	tables     []*Table // insertion order, for deterministic iteration
	tableByID  map[string]*Table
	preStmts   []Statement
	postStmts  []Statement
}

// Node is a migration node: a dependency list of graph-ids plus the
// entity payload.
type Node struct {
	ID   NodeID
	Deps []NodeID
	Body any // one of *Table, *Field, *Constraint, *Index
}

// Nodes returns every migration node in the version, in insertion order —
// the planner's tie-break rule is that nodes become available in
// insertion order.
func (v *Version) Nodes() []*Node {
	out := make([]*Node, 0, len(v.nodes))
	for _, t := range v.tables {
		out = append(out, v.nodes[NodeID{Kind: KindTable, TableID: t.SchemaID, SchemaID: t.SchemaID}])
		for _, f := range t.Fields {
			out = append(out, v.nodes[NodeID{Kind: KindField, TableID: t.SchemaID, SchemaID: f.SchemaID}])
		}
		if t.PKey != nil {
			out = append(out, v.nodes[NodeID{Kind: KindConstraint, TableID: t.SchemaID, SchemaID: t.PKey.SchemaID}])
		}
		for _, fk := range t.FKeys {
			out = append(out, v.nodes[NodeID{Kind: KindConstraint, TableID: t.SchemaID, SchemaID: fk.SchemaID}])
		}
		for _, idx := range t.Indexes {
			out = append(out, v.nodes[NodeID{Kind: KindIndex, TableID: t.SchemaID, SchemaID: idx.SchemaID}])
		}
	}
	return out
}

// Node looks up a migration node by id.
func (v *Version) Node(id NodeID) (*Node, bool) {
	n, ok := v.nodes[id]
	return n, ok
}

// Table looks up a table by schema id.
func (v *Version) Table(schemaID string) (*Table, bool) {
	t, ok := v.tableByID[schemaID]
	return t, ok
}

// Tables returns every table in insertion order.
func (v *Version) Tables() []*Table {
	return v.tables
}

// PreMigrationStatements and PostMigrationStatements return the ordered
// statements registered via the builder.
func (v *Version) PreMigrationStatements() []Statement  { return v.preStmts }
func (v *Version) PostMigrationStatements() []Statement { return v.postStmts }

// FieldLookup resolves a FieldHandle to its Field within this version.
func (v *Version) FieldLookup(h FieldHandle) (*Field, bool) {
	t, ok := v.tableByID[h.Table.SchemaID]
	if !ok {
		return nil, false
	}
	for _, f := range t.Fields {
		if f.SchemaID == h.SchemaID {
			return f, true
		}
	}
	return nil, false
}
