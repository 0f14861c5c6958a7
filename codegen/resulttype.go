package codegen

import (
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/relgenhq/relgen/types"
)

// goFieldType returns the jennifer code for the Go type a column of full
// type t decodes into: the primitive's HostType, wrapped in a slice for
// Array (SQLite only) and a pointer for Nullable, or the custom wrapper
// type name in place of the primitive's own host type when one was
// declared.
func goFieldType(t types.FullType) jen.Code {
	var base jen.Code
	switch {
	case t.CustomWrapper != "":
		base = jen.Id(t.CustomWrapper)
	case t.Primitive == types.UTCTimeS || t.Primitive == types.UTCTimeMS || t.Primitive == types.FixedOffsetTimeMS:
		base = jen.Qual("time", "Time")
	case t.Primitive == types.Bytes:
		base = jen.Index().Byte()
	default:
		base = jen.Id(t.Primitive.HostType())
	}
	if t.Array {
		base = jen.Index().Add(base)
	}
	if t.Nullable {
		base = jen.Op("*").Add(base)
	}
	return base
}

// rowStructKey builds a deduplication key for a result record shape from
// its ordered (name, type) pairs, so two queries whose returning list
// produces the same columns share one emitted struct, reused by
// structural equality across queries.
func rowStructKey(cols types.ExprType) string {
	var b strings.Builder
	for _, c := range cols {
		b.WriteString(c.Name)
		b.WriteByte(':')
		b.WriteString(c.Type.String())
		b.WriteByte(';')
	}
	return b.String()
}

// rowStructRegistry assigns a stable exported name to every distinct
// result-row shape encountered across the query list and renders its
// struct definition exactly once.
type rowStructRegistry struct {
	names map[string]string
	order []string
	cols  map[string]types.ExprType
}

func newRowStructRegistry() *rowStructRegistry {
	return &rowStructRegistry{
		names: make(map[string]string),
		cols:  make(map[string]types.ExprType),
	}
}

// nameFor returns the struct name for cols, registering a fresh one
// (DbRes0, DbRes1, …) on first sight.
func (r *rowStructRegistry) nameFor(cols types.ExprType) string {
	key := rowStructKey(cols)
	if name, ok := r.names[key]; ok {
		return name
	}
	name := "DbRes" + strconv.Itoa(len(r.order))
	r.names[key] = name
	r.cols[key] = cols
	r.order = append(r.order, key)
	return name
}

// emit renders every registered row struct into f, in first-seen order.
func (r *rowStructRegistry) emit(f *jen.File) {
	for _, key := range r.order {
		name := r.names[key]
		cols := r.cols[key]
		fields := make([]jen.Code, 0, len(cols))
		for _, c := range cols {
			fields = append(fields, jen.Id(exportedIdent(c.Name)).Add(goFieldType(c.Type)))
		}
		f.Commentf("%s is a deduplicated result-row shape shared by every query that returns these columns.", name)
		f.Type().Id(name).Struct(fields...)
	}
}
