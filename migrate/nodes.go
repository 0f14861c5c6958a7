package migrate

import (
	"fmt"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/schema"
	"github.com/relgenhq/relgen/token"
)

// tableNode is the NodeData for a KindTable node. A Create absorbs every
// field, primary key and foreign key declared in the same migration:
// CREATE TABLE folds in every column and constraint of a table created
// in the same version; an index never coalesces into it, since CREATE
// TABLE cannot carry an index clause in either dialect.
type tableNode struct {
	t       *schema.Table
	dialect string

	columns     []*schema.Field
	primaryKey  *schema.Constraint
	foreignKeys []*schema.Constraint
}

func (n *tableNode) Compare(old NodeData) Comparison {
	o := old.(*tableNode)
	if o.t.Name() != n.t.Name() {
		// A rename is always expressible as ALTER TABLE ... RENAME TO,
		// supported identically by both dialects.
		return Update
	}
	return DoNothing
}

func (n *tableNode) CreateCoalesce(other NodeData) bool {
	switch o := other.(type) {
	case *fieldNode:
		if o.f.TableID != n.t.SchemaID {
			return false
		}
		n.columns = append(n.columns, o.f)
		return true
	case *constraintNode:
		if o.c.TableID != n.t.SchemaID {
			return false
		}
		switch o.c.Kind {
		case schema.PrimaryKey:
			n.primaryKey = o.c
		case schema.ForeignKey:
			n.foreignKeys = append(n.foreignKeys, o.c)
		}
		return true
	default:
		return false
	}
}

func (n *tableNode) Create(ctx *Context) {
	b := token.New()
	b.AppendKeyword("CREATE TABLE").AppendIdentifier(n.t.Name())
	b.Sub(func(inner *token.Buffer) {
		parts := make([]func(*token.Buffer), 0, len(n.columns)+1+len(n.foreignKeys))
		for _, f := range n.columns {
			f := f
			parts = append(parts, func(b *token.Buffer) { appendColumnDef(b, f, n.dialect) })
		}
		if n.primaryKey != nil {
			pk := n.primaryKey
			parts = append(parts, func(b *token.Buffer) {
				b.AppendKeyword("PRIMARY KEY")
				b.Sub(func(b *token.Buffer) { appendFieldNames(b, pk.Fields) })
			})
		}
		for _, fk := range n.foreignKeys {
			fk := fk
			parts = append(parts, func(b *token.Buffer) { appendForeignKeyClause(b, fk) })
		}
		inner.Join(parts, ",")
	})
	ctx.emit(b)
}

func (n *tableNode) DeleteCoalesce(other NodeData) bool {
	switch o := other.(type) {
	case *fieldNode:
		return o.f.TableID == n.t.SchemaID
	case *constraintNode:
		return o.c.TableID == n.t.SchemaID
	case *indexNode:
		return o.idx.TableID == n.t.SchemaID
	default:
		return false
	}
}

func (n *tableNode) Delete(ctx *Context) {
	b := token.New()
	b.AppendKeyword("DROP TABLE").AppendIdentifier(n.t.Name())
	ctx.emit(b)
}

func (n *tableNode) Update(ctx *Context, old NodeData) {
	o := old.(*tableNode)
	b := token.New()
	b.AppendKeyword("ALTER TABLE").AppendIdentifier(o.t.Name())
	b.AppendKeyword("RENAME TO").AppendIdentifier(n.t.Name())
	ctx.emit(b)
}

// fieldNode is the NodeData for a KindField node, dispatched standalone
// only when its owning table was not itself created in this migration
// (otherwise tableNode.CreateCoalesce/DeleteCoalesce absorbs it).
type fieldNode struct {
	f         *schema.Field
	tableName string
	dialect   string
}

func (n *fieldNode) Compare(old NodeData) Comparison {
	o := old.(*fieldNode)
	if o.f.Name != n.f.Name {
		return Update
	}
	if o.f.Type.Primitive == n.f.Type.Primitive && o.f.Type.Nullable == n.f.Type.Nullable {
		return DoNothing
	}
	if dialect.CapabilitiesOf(n.dialect).AlterColumnType {
		return Update
	}
	return Recreate
}

func (n *fieldNode) CreateCoalesce(NodeData) bool { return false }
func (n *fieldNode) DeleteCoalesce(NodeData) bool { return false }

func (n *fieldNode) Create(ctx *Context) {
	b := token.New()
	b.AppendKeyword("ALTER TABLE").AppendIdentifier(n.tableName)
	b.AppendKeyword("ADD COLUMN")
	appendColumnDef(b, n.f, n.dialect)
	if !n.f.Type.Nullable {
		if n.f.Type.MigrationDefault == nil {
			panic(fmt.Sprintf("migrate: non-nullable field %q added to an existing table needs a migration default", n.f.Name))
		}
		lit, err := n.f.Type.MigrationDefault.CompileDefaultLiteral(n.dialect)
		if err != nil {
			panic(fmt.Sprintf("migrate: compiling migration default for %q: %v", n.f.Name, err))
		}
		b.AppendKeyword("DEFAULT").AppendLiteral(lit)
	}
	ctx.emit(b)
}

func (n *fieldNode) Delete(ctx *Context) {
	b := token.New()
	b.AppendKeyword("ALTER TABLE").AppendIdentifier(n.tableName)
	b.AppendKeyword("DROP COLUMN").AppendIdentifier(n.f.Name)
	ctx.emit(b)
}

func (n *fieldNode) Update(ctx *Context, old NodeData) {
	o := old.(*fieldNode)
	b := token.New()
	table := n.tableName
	if o.f.Name != n.f.Name {
		rb := token.New()
		rb.AppendKeyword("ALTER TABLE").AppendIdentifier(table)
		rb.AppendKeyword("RENAME COLUMN").AppendIdentifier(o.f.Name)
		rb.AppendKeyword("TO").AppendIdentifier(n.f.Name)
		ctx.emit(rb)
	}
	if o.f.Type.Primitive != n.f.Type.Primitive || o.f.Type.Nullable != n.f.Type.Nullable {
		b.AppendKeyword("ALTER TABLE").AppendIdentifier(table)
		b.AppendKeyword("ALTER COLUMN").AppendIdentifier(n.f.Name)
		b.AppendKeyword("TYPE").AppendLiteral(columnTypeSQL(n.f, n.dialect))
		ctx.emit(b)
	}
}

// constraintNode is the NodeData for a KindConstraint node (primary key
// or foreign key), dispatched standalone only when its owning table
// already existed before this migration.
type constraintNode struct {
	c         *schema.Constraint
	tableName string
	dialect   string
}

func (n *constraintNode) Compare(old NodeData) Comparison {
	o := old.(*constraintNode)
	if sameFieldList(o.c.Fields, n.c.Fields) &&
		o.c.ForeignTable.SchemaID == n.c.ForeignTable.SchemaID &&
		sameFieldList(o.c.ForeignFields, n.c.ForeignFields) {
		return DoNothing
	}
	if dialect.CapabilitiesOf(n.dialect).AddConstraintToExistingTable {
		return Update
	}
	return Recreate
}

func (n *constraintNode) CreateCoalesce(NodeData) bool { return false }
func (n *constraintNode) DeleteCoalesce(NodeData) bool { return false }

func (n *constraintNode) Create(ctx *Context) {
	b := token.New()
	b.AppendKeyword("ALTER TABLE").AppendIdentifier(n.tableName)
	b.AppendKeyword("ADD CONSTRAINT").AppendIdentifier(n.c.SchemaID)
	if n.c.Kind == schema.PrimaryKey {
		b.AppendKeyword("PRIMARY KEY")
		b.Sub(func(b *token.Buffer) { appendFieldNames(b, n.c.Fields) })
	} else {
		appendForeignKeyClause(b, n.c)
	}
	ctx.emit(b)
}

func (n *constraintNode) Delete(ctx *Context) {
	b := token.New()
	b.AppendKeyword("ALTER TABLE").AppendIdentifier(n.tableName)
	b.AppendKeyword("DROP CONSTRAINT").AppendIdentifier(n.c.SchemaID)
	ctx.emit(b)
}

func (n *constraintNode) Update(ctx *Context, old NodeData) {
	o := old.(*constraintNode)
	o.Delete(ctx)
	n.Create(ctx)
}

// indexNode is the NodeData for a KindIndex node. An index never
// coalesces into its owning table's CREATE TABLE: neither dialect
// permits an index clause inside CREATE TABLE, so it is always emitted
// as its own CREATE INDEX / DROP INDEX statement.
type indexNode struct {
	idx       *schema.Index
	tableName string
	dialect   string
}

func (n *indexNode) Compare(old NodeData) Comparison {
	o := old.(*indexNode)
	if o.idx.Unique == n.idx.Unique && sameFieldList(o.idx.Fields, n.idx.Fields) {
		return DoNothing
	}
	return Recreate
}

func (n *indexNode) CreateCoalesce(NodeData) bool { return false }
func (n *indexNode) DeleteCoalesce(NodeData) bool { return false }

func (n *indexNode) Create(ctx *Context) {
	b := token.New()
	b.AppendKeyword("CREATE")
	if n.idx.Unique {
		b.AppendKeyword("UNIQUE")
	}
	b.AppendKeyword("INDEX").AppendIdentifier(n.idx.SchemaID)
	b.AppendKeyword("ON").AppendIdentifier(n.tableName)
	b.Sub(func(b *token.Buffer) { appendFieldNames(b, n.idx.Fields) })
	ctx.emit(b)
}

func (n *indexNode) Delete(ctx *Context) {
	b := token.New()
	b.AppendKeyword("DROP INDEX").AppendIdentifier(n.idx.SchemaID)
	ctx.emit(b)
}

func (n *indexNode) Update(ctx *Context, old NodeData) {
	old.(*indexNode).Delete(ctx)
	n.Create(ctx)
}

// --- shared DDL text helpers -------------------------------------------

func appendColumnDef(b *token.Buffer, f *schema.Field, d string) {
	b.AppendIdentifier(f.Name)
	b.AppendLiteral(columnTypeSQL(f, d))
	if !f.Type.Nullable {
		b.AppendKeyword("NOT NULL")
	}
}

func columnTypeSQL(f *schema.Field, d string) string {
	s := f.Type.Primitive.SQLName(d)
	if f.Type.Array {
		s += "[]"
	}
	return s
}

func appendFieldNames(b *token.Buffer, fields []schema.FieldHandle) {
	parts := make([]func(*token.Buffer), len(fields))
	for i, f := range fields {
		f := f
		parts[i] = func(b *token.Buffer) { b.AppendIdentifier(f.SchemaID) }
	}
	b.Join(parts, ",")
}

func appendForeignKeyClause(b *token.Buffer, c *schema.Constraint) {
	b.AppendKeyword("FOREIGN KEY")
	b.Sub(func(b *token.Buffer) { appendFieldNames(b, c.Fields) })
	b.AppendKeyword("REFERENCES").AppendIdentifier(c.ForeignTable.SchemaID)
	b.Sub(func(b *token.Buffer) { appendFieldNames(b, c.ForeignFields) })
}

func sameFieldList(a, b []schema.FieldHandle) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
