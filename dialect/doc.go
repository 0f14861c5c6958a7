// Package dialect names the two SQL back ends relgen emits for and carries
// the per-dialect capability differences the rest of the packages consult:
// whether ALTER COLUMN can retype a column, whether constraints
// can be added to an existing table, and whether array parameters exist.
//
// relgen never opens a connection under either dialect name; the constants
// here only select which code path a builder, checker or emitter takes.
package dialect

// Postgres and SQLite are the only two back ends relgen targets. There is
// no MySQL constant here: nothing in this generator's DDL or query
// emission paths exercises a third dialect, so only the two back ends
// actually driven by the rest of the codebase are named.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Supported reports whether name is a dialect relgen can emit for.
func Supported(name string) bool {
	return name == Postgres || name == SQLite
}

// Capabilities describes what a dialect's ALTER/constraint surface allows,
// consulted by the migrate and query packages.
type Capabilities struct {
	// AddConstraintToExistingTable reports whether ALTER TABLE ... ADD
	// CONSTRAINT is legal against a table that already exists.
	AddConstraintToExistingTable bool
	// AlterColumnType reports whether a column's primitive type or
	// nullability can be changed in place.
	AlterColumnType bool
	// WindowCTEJunction reports whether window functions, CTEs and
	// set-junctions (UNION/INTERSECT/EXCEPT) are supported.
	WindowCTEJunction bool
	// ArrayParameter reports whether array-typed parameters are accepted
	// at all (true for SQLite, which matches against them through
	// rarray($N)); when false, an array-typed parameter is rejected.
	ArrayParameter bool
}

// CapabilitiesOf returns the Capabilities for a supported dialect name.
// It panics for an unrecognized name: an unsupported dialect is a
// programmer error caught once at the top of the codegen driver, not an
// accumulated user-facing error.
func CapabilitiesOf(name string) Capabilities {
	switch name {
	case Postgres:
		return Capabilities{
			AddConstraintToExistingTable: true,
			AlterColumnType:              true,
			WindowCTEJunction:            false,
			ArrayParameter:               false,
		}
	case SQLite:
		return Capabilities{
			AddConstraintToExistingTable: false,
			AlterColumnType:              false,
			WindowCTEJunction:            true,
			ArrayParameter:               true,
		}
	default:
		panic("dialect: unsupported dialect " + name)
	}
}
