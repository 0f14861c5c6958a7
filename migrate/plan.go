// Package migrate implements the graph migrator: diffing two adjacent
// schema versions, classifying every entity as create, delete, update or
// no-op, coalescing child operations into their parent where the
// dialect's DDL permits it, and emitting a topologically ordered list of
// DDL statements.
//
// Two adjacent versions are diffed by seeding a graph with every node
// from the previous version marked for deletion, merging the current
// version's nodes against it to reclassify surviving nodes as
// do-nothing/update/recreate, adding the current version's dependency
// edges, then walking the result topologically and dispatching each
// node by its classification.
package migrate

import (
	"fmt"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/relerr"
	"github.com/relgenhq/relgen/schema"
	"github.com/relgenhq/relgen/token"
)

// Comparison is the three-way result of comparing a surviving node's new
// body against its old body.
type Comparison int

const (
	DoNothing Comparison = iota
	Update
	Recreate
)

// NodeData is the capability set every one of the four node kinds
// (table/field/constraint/index) implements: a tagged variant with a
// dispatcher, not an open class hierarchy.
type NodeData interface {
	// Compare classifies a surviving node against its previous-version
	// body.
	Compare(old NodeData) Comparison
	CreateCoalesce(other NodeData) bool
	Create(ctx *Context)
	DeleteCoalesce(other NodeData) bool
	Delete(ctx *Context)
	Update(ctx *Context, old NodeData)
}

type diffKind int

const (
	diffDelete diffKind = iota
	diffCreate
	diffUpdateKind
)

type diffNode struct {
	kind     diffKind
	old, new NodeData
}

// Context accumulates the ordered DDL statements for one version's
// migration along with the dialect it targets.
type Context struct {
	Dialect      string
	Capabilities dialect.Capabilities
	Statements   []string
}

func (c *Context) emit(b *token.Buffer) {
	c.Statements = append(c.Statements, b.String())
}

// Plan diffs prev (nil for the first version) against curr and returns
// the ordered DDL for migrating from prev to curr, following the
// package's seed / merge / add-edges / topological-walk algorithm. Errors
// are accumulated internally rather than aborting at the first one: Plan
// returns a non-nil error built from every accumulated problem once the
// accumulator is non-empty.
func Plan(prev, curr *schema.Version, dialectName string) (*Context, error) {
	ctx := &Context{Dialect: dialectName, Capabilities: dialect.CapabilitiesOf(dialectName)}
	g := newStagedGraph()
	acc := relerr.New()

	// Step 0: reject primitives the target dialect doesn't define (U32 is
	// SQLite-only) before building the graph at all.
	for _, n := range curr.Nodes() {
		f, ok := n.Body.(*schema.Field)
		if !ok {
			continue
		}
		if !f.Type.Primitive.ValidForDialect(dialectName) {
			acc.Pathf("table %s field %s", f.TableID, f.Name).Push(
				fmt.Errorf("primitive %s is not valid under dialect %s", f.Type.Primitive, dialectName))
		}
	}
	if !acc.OK() {
		return ctx, relerr.Join(acc)
	}

	// Step 1: seed the graph with every prev node as a pending Delete.
	if prev != nil {
		for _, n := range prev.Nodes() {
			nd := wrap(prev, n, dialectName)
			g.add(n.ID, &diffNode{kind: diffDelete, old: nd})
		}
		for _, n := range prev.Nodes() {
			for _, dep := range n.Deps {
				g.addEdge(dep, n.ID)
			}
		}
	}

	// Step 2: merge curr nodes against the staged (currently all-Delete)
	// graph, resolving DoNothing / Update / Recreate.
	for _, n := range curr.Nodes() {
		newND := wrap(curr, n, dialectName)
		existing, ok := g.state[n.ID]
		if !ok {
			g.add(n.ID, &diffNode{kind: diffCreate, new: newND})
			continue
		}
		if nf, ok := newND.(*fieldNode); ok && !ctx.Capabilities.AlterColumnType {
			of := existing.old.(*fieldNode)
			if of.f.Type.Primitive != nf.f.Type.Primitive || of.f.Type.Nullable != nf.f.Type.Nullable {
				acc.Pathf("table %s field %s", nf.f.TableID, nf.f.Name).Push(
					fmt.Errorf("changing a column's type or nullability is not supported under dialect %s", dialectName))
				g.state[n.ID] = nil
				continue
			}
		}
		cmp := newND.Compare(existing.old)
		switch cmp {
		case DoNothing:
			g.state[n.ID] = nil
		case Update:
			g.state[n.ID] = &diffNode{kind: diffUpdateKind, old: existing.old, new: newND}
		case Recreate:
			// Keep the Delete in place under its old identity and add a
			// fresh Create with an edge old->new so the drop precedes
			// the create.
			newID := n.ID
			newID.SchemaID = n.ID.SchemaID + "#recreate"
			g.add(newID, &diffNode{kind: diffCreate, new: newND})
			g.addEdge(n.ID, newID)
		default:
			panic(fmt.Sprintf("migrate: unknown comparison %d", cmp))
		}
	}

	// Step 3: add curr's own dependency edges.
	for _, n := range curr.Nodes() {
		for _, dep := range n.Deps {
			g.addEdge(dep, n.ID)
		}
	}

	// Step 4: a single topological walk, dispatching each surviving node
	// by its classification as it becomes reachable. A table is always
	// walked before its fields/constraints/indexes, so its Create/Delete
	// coalescing runs before any of them would otherwise be visited on
	// their own.
	g.topoWalk(func(id schema.NodeID) {
		d := g.state[id]
		if d == nil {
			return
		}
		switch d.kind {
		case diffDelete:
			g.coalesceDFS(id, diffDelete, func(child *diffNode) bool {
				return d.old.DeleteCoalesce(child.old)
			})
			d.old.Delete(ctx)
		case diffCreate:
			g.coalesceDFS(id, diffCreate, func(child *diffNode) bool {
				return d.new.CreateCoalesce(child.new)
			})
			if f, ok := d.new.(*fieldNode); ok && !f.f.Type.Nullable && f.f.Type.MigrationDefault == nil {
				acc.Pathf("table %s field %s", f.f.TableID, f.f.Name).Push(
					fmt.Errorf("a non-nullable field added to an existing table needs a migration default"))
				return
			}
			d.new.Create(ctx)
		case diffUpdateKind:
			d.new.Update(ctx, d.old)
		}
	})

	return ctx, relerr.Join(acc)
}

// wrap adapts a schema migration node's entity payload into the NodeData
// implementation for its kind, resolving the owning table's live SQL
// name from v so a standalone ALTER TABLE/DROP INDEX statement names the
// table under its current identifier rather than its schema id.
func wrap(v *schema.Version, n *schema.Node, dialectName string) NodeData {
	switch body := n.Body.(type) {
	case *schema.Table:
		return &tableNode{t: body, dialect: dialectName}
	case *schema.Field:
		return &fieldNode{f: body, tableName: tableNameIn(v, body.TableID), dialect: dialectName}
	case *schema.Constraint:
		return &constraintNode{c: body, tableName: tableNameIn(v, body.TableID), dialect: dialectName}
	case *schema.Index:
		return &indexNode{idx: body, tableName: tableNameIn(v, body.TableID), dialect: dialectName}
	default:
		panic(fmt.Sprintf("migrate: unknown node body %T", body))
	}
}

func tableNameIn(v *schema.Version, tableID string) string {
	t, ok := v.Table(tableID)
	if !ok {
		panic(fmt.Sprintf("migrate: table %q not found in its own version", tableID))
	}
	return t.Name()
}
