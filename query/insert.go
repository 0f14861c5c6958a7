package query

import (
	"fmt"

	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/token"
	"github.com/relgenhq/relgen/types"
)

// Assignment pairs a destination field with the expression assigned to it,
// used both by Insert's value list and by InsertConflict.Update's and
// Update's SET clause.
type Assignment struct {
	Field string
	Value expr.Expr
}

// InsertConflict is an Insert's optional ON CONFLICT clause.
type InsertConflict struct {
	DoNothing bool
	Update    []Assignment
}

// Insert builds an INSERT INTO statement, optionally returning a row shape
// via Returning.
type Insert struct {
	Table      string
	Values     []Assignment
	OnConflict *InsertConflict
	Returning  []Output
}

func (ins Insert) Build(ctx *expr.CheckContext, path []string, expected ExpectedRowCount) (types.ExprType, *token.Buffer) {
	path = extend(path, "Insert")
	fields, ok := ctx.Tables.TableFields(ins.Table)
	if !ok {
		ctx.Errf(path, "unknown table %q", ins.Table)
		return nil, token.New()
	}
	scope := tableScope(ins.Table, fields)

	b := token.New()
	b.AppendKeyword("INSERT INTO")
	b.AppendIdentifier(ins.Table)
	b.Sub(func(inner *token.Buffer) {
		cols := make([]func(*token.Buffer), len(ins.Values))
		for i, a := range ins.Values {
			a := a
			cols[i] = func(b *token.Buffer) { b.AppendIdentifier(a.Field) }
		}
		inner.Join(cols, ",")
	})
	b.AppendKeyword("VALUES")
	b.Sub(func(inner *token.Buffer) {
		parts := make([]func(*token.Buffer), len(ins.Values))
		for i, a := range ins.Values {
			vpath := extend(path, fmt.Sprintf("Value %d", i))
			t, vb := a.Value.Build(ctx, vpath, scope)
			if _, ok := t.Scalar(); !ok {
				ctx.Errf(vpath, "insert value for %q must be a scalar expression", a.Field)
			}
			checkFieldAssignable(ctx, vpath, fields, a.Field, t)
			i, vb := i, vb
			parts[i] = func(b *token.Buffer) { b.AppendLiteral(vb.String()) }
		}
		inner.Join(parts, ",")
	})

	if ins.OnConflict != nil {
		b.AppendKeyword("ON CONFLICT")
		switch {
		case ins.OnConflict.DoNothing:
			b.AppendKeyword("DO NOTHING")
		default:
			buildSet(ctx, extend(path, "On conflict"), fields, scope, b, ins.OnConflict.Update)
		}
	}
	if expected == RowsMany {
		ctx.Errf(path, "an insert cannot return many rows")
	}
	if c := ins.OnConflict; c != nil {
		if c.DoNothing && expected == RowsOne {
			ctx.Errf(path, "an insert with ON CONFLICT DO NOTHING may return no row, so it cannot expect exactly one")
		}
		if !c.DoNothing && expected == RowsMaybeOne {
			ctx.Errf(path, "an insert with ON CONFLICT DO UPDATE always returns a row, so it cannot expect at most one")
		}
	}

	cols, retBuf := buildReturning(ctx, path, scope, ins.Returning, expected)
	if retBuf != "" {
		b.AppendLiteral(retBuf)
	}
	return cols, b
}

// tableScope turns a table's resolved field map into an expr.Scope keyed
// by its own (unaliased) name, the shape every query body builds its FROM
// scope out of.
func tableScope(table string, fields map[string]types.FullType) expr.Scope {
	scope := make(expr.Scope, len(fields))
	for name, t := range fields {
		scope[expr.Ref{Table: table, Name: name}] = t
	}
	return scope
}

// checkFieldAssignable verifies field exists on the destination table and
// that t is general-same to its declared type, pushing any mismatch.
func checkFieldAssignable(ctx *expr.CheckContext, path []string, fields map[string]types.FullType, field string, t types.ExprType) {
	declared, ok := fields[field]
	if !ok {
		ctx.Errf(path, "destination field %q is not known on this table", field)
		return
	}
	s, ok := t.Scalar()
	if !ok {
		return
	}
	if !declared.GeneralSame(s) {
		ctx.Errf(path, "destination field %q expects %s, got %s", field, declared, s)
	}
}

// buildSet renders a SET clause from a list of assignments, checking each
// value against its destination field's declared type.
func buildSet(ctx *expr.CheckContext, path []string, fields map[string]types.FullType, scope expr.Scope, out *token.Buffer, values []Assignment) {
	out.AppendKeyword("SET")
	parts := make([]func(*token.Buffer), len(values))
	for i, a := range values {
		spath := extend(path, fmt.Sprintf("Set field %d", i))
		t, vb := a.Value.Build(ctx, spath, scope)
		checkFieldAssignable(ctx, spath, fields, a.Field, t)
		a, vb := a, vb
		parts[i] = func(b *token.Buffer) {
			b.AppendIdentifier(a.Field)
			b.AppendKeyword("=")
			b.AppendLiteral(vb.String())
		}
	}
	out.Join(parts, ",")
}

// buildReturning renders an optional RETURNING clause and resolves the
// statement's result shape, applying the same outputs-vs-expected checks
// a SELECT's output list does.
func buildReturning(ctx *expr.CheckContext, path []string, scope expr.Scope, outputs []Output, expected ExpectedRowCount) (types.ExprType, string) {
	cols, parts := buildOutputs(ctx, path, scope, outputs, expected)
	if len(outputs) == 0 {
		return cols, ""
	}
	b := token.New()
	b.AppendKeyword("RETURNING")
	b.Join(parts, ",")
	return cols, b.String()
}
