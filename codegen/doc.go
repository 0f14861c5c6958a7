// Package codegen is relgen's code-emit driver: it takes a checked
// schema history and a list of checked query.Query values and emits a
// single Go source file exposing a versioned migration runner and one
// function per query.
//
// # Pipeline
//
//	schema.Version history + []query.Query
//	        ↓
//	   migrate.Plan (per consecutive version pair)
//	        ↓
//	   query.Check (per query, against the latest schema version)
//	        ↓
//	   jennifer *jen.File assembly (migration_emit.go)
//	        ↓
//	   Format (golang.org/x/tools/imports), or the WithOutputFormatter override
//
// Generate returns the formatted source; writing it to disk (WriteFile)
// is left to the caller.
//
// # Configuration
//
// Generation is configured via functional options:
//
//	out, err := codegen.Generate(versions, queries,
//	    codegen.WithDialect(dialect.Postgres),
//	    codegen.WithPackage("db"),
//	    codegen.WithLockTimeout(5*time.Second),
//	)
//
// # Emitted output
//
// The emitted file exposes:
//   - Migrate(ctx, db) error — idempotent entry point, guarded by the
//     __good_version lock/retry table.
//   - one function per Query, named after it.
//   - a deduplicated result-row struct per distinct query result shape.
//   - a single error type carrying a BadSchema-discriminated kind.
package codegen
