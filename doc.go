// Package relgen is a build-time code generator for relational-database
// access code: given a sequence of schema versions (package schema) and a
// set of type-checked parameterized queries (package query), it emits a
// single Go source file exposing an idempotent migration routine and one
// strongly-typed function per query.
//
// relgen never opens a database connection; it only emits source text.
// Two dialects are supported, named in package dialect: PostgreSQL and
// SQLite.
//
// # Building a schema
//
// A caller constructs one *schema.Version per schema revision using
// schema.NewVersion and its builder methods, then a set of query.Query
// values referencing the latest version's fields. Generate (in package
// codegen) drives the whole pipeline; this package re-exports it and its
// options and adds the generation-level error types.
package relgen
