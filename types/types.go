// Package types implements relgen's type system: the set of
// primitive type tags, the nullable/array/custom-wrapper qualifiers that
// turn a primitive into a full type, and the record-shaped expression type
// that every checked expression or query body produces.
package types

import (
	"fmt"
	"strings"

	atlasschema "ariga.io/atlas/sql/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/relgenhq/relgen/dialect"
)

// Primitive is a scalar type tag. The tag set differs slightly between
// PostgreSQL and SQLite (U32 is SQLite-only).
type Primitive int

const (
	Auto Primitive = iota
	Bool
	I32
	I64
	U32
	F32
	F64
	String
	Bytes
	UTCTimeS
	UTCTimeMS
	FixedOffsetTimeMS
)

func (p Primitive) String() string {
	switch p {
	case Auto:
		return "auto"
	case Bool:
		return "bool"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U32:
		return "u32"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case UTCTimeS:
		return "utc-time-s"
	case UTCTimeMS:
		return "utc-time-ms"
	case FixedOffsetTimeMS:
		return "fixed-offset-time-ms"
	default:
		return fmt.Sprintf("primitive(%d)", int(p))
	}
}

// CoarseClass is the "general-same" comparability class from the
// GLOSSARY: two primitives are general-compatible when they share a
// coarse class (ignoring sub-primitive distinctions like i32 vs i64).
type CoarseClass int

const (
	ClassNumeric CoarseClass = iota
	ClassBool
	ClassString
	ClassBlob
	ClassTime
)

// Class returns p's coarse comparability class.
func (p Primitive) Class() CoarseClass {
	switch p {
	case Bool:
		return ClassBool
	case I32, I64, U32, F32, F64:
		return ClassNumeric
	case String:
		return ClassString
	case Bytes:
		return ClassBlob
	case UTCTimeS, UTCTimeMS, FixedOffsetTimeMS:
		return ClassTime
	default:
		return ClassNumeric
	}
}

// ValidForDialect reports whether the primitive is defined under d
// (U32 is SQLite only).
func (p Primitive) ValidForDialect(d string) bool {
	if p == U32 {
		return d == dialect.SQLite
	}
	return true
}

// ColumnType returns the ariga.io/atlas/sql/schema column type this
// primitive maps to for the given dialect. relgen does not run atlas's
// differs; it
// borrows atlas's column-type vocabulary so the schema model speaks the
// same struct shapes a real migration-planning library would.
func (p Primitive) ColumnType(d string) atlasschema.Type {
	switch p {
	case Bool:
		return &atlasschema.BoolType{T: "boolean"}
	case I32:
		return &atlasschema.IntegerType{T: "int"}
	case I64:
		return &atlasschema.IntegerType{T: "bigint"}
	case U32:
		return &atlasschema.IntegerType{T: "int", Unsigned: true}
	case F32:
		return &atlasschema.FloatType{T: "real"}
	case F64:
		return &atlasschema.FloatType{T: "double precision"}
	case String:
		if d == dialect.SQLite {
			return &atlasschema.StringType{T: "text"}
		}
		return &atlasschema.StringType{T: "text"}
	case Bytes:
		return &atlasschema.BinaryType{T: "bytea"}
	case UTCTimeS, UTCTimeMS:
		return &atlasschema.TimeType{T: "timestamp"}
	case FixedOffsetTimeMS:
		return &atlasschema.TimeType{T: "timestamptz"}
	default:
		return &atlasschema.IntegerType{T: "bigint"}
	}
}

// SQLName returns the column type's raw SQL type name for the given
// dialect, the text form of what ColumnType otherwise wraps in an
// atlas/sql/schema.Type struct — used when emitting DDL column
// definitions directly as text.
func (p Primitive) SQLName(d string) string {
	switch p {
	case Bool:
		return "boolean"
	case I32:
		return "int"
	case I64:
		return "bigint"
	case U32:
		return "int" // unsigned only arises under SQLite, which has no unsigned keyword
	case F32:
		return "real"
	case F64:
		return "double precision"
	case String:
		return "text"
	case Bytes:
		if d == dialect.SQLite {
			return "blob"
		}
		return "bytea"
	case UTCTimeS, UTCTimeMS:
		return "timestamp"
	case FixedOffsetTimeMS:
		return "timestamptz"
	default:
		return "bigint"
	}
}

// HostType returns the host-language runtime type name used when decoding
// a query result column of this primitive, before nullable/array wrapping.
func (p Primitive) HostType() string {
	switch p {
	case Bool:
		return "bool"
	case I32:
		return "int32"
	case I64:
		return "int64"
	case U32:
		return "uint32"
	case F32:
		return "float32"
	case F64:
		return "float64"
	case String:
		return "string"
	case Bytes:
		return "[]byte"
	case UTCTimeS, UTCTimeMS:
		return "time.Time"
	case FixedOffsetTimeMS:
		return "time.Time"
	default:
		return "any"
	}
}

// WrapperTrait returns the custom-wrapper conversion interface name a host
// user type must implement to stand in for this primitive: relgen only
// references the name, it emits no implementation.
func (p Primitive) WrapperTrait() string {
	return "relgensql." + cases(p.String()) + "Scanner"
}

// titleCaser title-cases each hyphen/underscore-separated word of a
// primitive's kebab-case name ("utc-time-s" -> "Utc", "Time", "S") before
// cases() joins them into one Go identifier segment.
var titleCaser = cases.Title(language.Und)

func cases(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	var b strings.Builder
	for _, w := range words {
		b.WriteString(titleCaser.String(w))
	}
	return b.String()
}

// FullType qualifies a Primitive with nullability, array-ness (SQLite
// only) and an optional custom-wrapper trait name.
type FullType struct {
	Primitive     Primitive
	CustomWrapper string
	Nullable      bool
	Array         bool
}

// GeneralSame reports whether two full types are "general-same" per the
// GLOSSARY: same coarse class, same nullability, same array-ness,
// ignoring the custom wrapper and sub-primitive distinctions.
func (t FullType) GeneralSame(other FullType) bool {
	return t.Primitive.Class() == other.Primitive.Class() &&
		t.Nullable == other.Nullable &&
		t.Array == other.Array
}

// GeneralCompatible is GeneralSame without requiring matching nullability
// — used by the null-tolerant comparison operators (IS / IS NOT) and by
// casts, which still require the same coarse class and array-ness.
func (t FullType) GeneralCompatible(other FullType) bool {
	return t.Primitive.Class() == other.Primitive.Class() && t.Array == other.Array
}

// SameType reports whether two full types match exactly, including the
// custom wrapper — used for parameter re-use checks.
func (t FullType) SameType(other FullType) bool {
	return t == other
}

func (t FullType) String() string {
	s := t.Primitive.String()
	if t.CustomWrapper != "" {
		s = t.CustomWrapper + "(" + s + ")"
	}
	if t.Array {
		s = "[" + s + "]"
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// DefaultExpr is implemented by an expr.Expr value used as a field's
// migration default: an expression used only when adding a
// non-nullable column to an existing table. Declared here rather than
// imported from package expr to avoid a types<->expr import cycle: expr
// depends on types for FullType, not the reverse.
type DefaultExpr interface {
	// CompileDefaultLiteral renders the default as SQL literal text for
	// the given dialect, e.g. `TRUE`, `0`, `'unknown'`.
	CompileDefaultLiteral(d string) (string, error)
}

// FieldType is a FullType plus the migration default used only when the
// field is added as a non-nullable column to an already-existing table.
type FieldType struct {
	FullType
	MigrationDefault DefaultExpr
}

// Binding is one column of an expression type: a name and the full type
// that name resolves to in scope.
type Binding struct {
	Name string
	Type FullType
}

// ExprType is an ordered list of (binding, full-type) pairs — a record.
// Length 1 is "scalar" per the GLOSSARY.
type ExprType []Binding

// Scalar returns the sole binding's type if ExprType has exactly one
// column, and reports whether that was the case.
func (t ExprType) Scalar() (FullType, bool) {
	if len(t) != 1 {
		return FullType{}, false
	}
	return t[0].Type, true
}

// SameShape reports whether two expression types have equal length and
// each column pair is general-same.
func (t ExprType) SameShape(other ExprType) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if !t[i].Type.GeneralSame(other[i].Type) {
			return false
		}
	}
	return true
}
