// Command relgen-example demonstrates the programmatic API — this binary
// is a usage sample, not a tool users invoke with flags: build a
// two-version schema, declare a query against it, and write
// the generated Go source to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/relgenhq/relgen"
	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/query"
	"github.com/relgenhq/relgen/schema"
	"github.com/relgenhq/relgen/types"
)

func main() {
	v0 := schema.NewVersion(0)
	users := v0.Table("users", "users")
	idField := users.Field("id", "id", types.FieldType{
		FullType: types.FullType{Primitive: types.I64},
	})
	users.Field("email", "email", types.FieldType{
		FullType: types.FullType{Primitive: types.String},
	})
	users.PrimaryKey("users_pk", idField)

	v1 := schema.NewVersion(1)
	users1 := v1.Table("users", "users")
	idField1 := users1.Field("id", "id", types.FieldType{
		FullType: types.FullType{Primitive: types.I64},
	})
	users1.Field("email", "email", types.FieldType{
		FullType: types.FullType{Primitive: types.String},
	})
	users1.Field("display_name", "display_name", types.FieldType{
		FullType:         types.FullType{Primitive: types.String},
		MigrationDefault: literalDefault{sql: "''"},
	})
	users1.PrimaryKey("users_pk", idField1)

	userRef := expr.Ref{Table: "users", Name: "id"}
	getUser := query.Query{
		Name: "get_user_by_id",
		Body: query.SelectBody{
			From: query.NamedSource{Source: query.TableSource{Table: "users"}, Alias: "users"},
			Output: []query.Output{
				{Expr: expr.Binding{Ref: userRef}},
				{Expr: expr.Binding{Ref: expr.Ref{Table: "users", Name: "email"}}},
			},
			Where: expr.BinOp{
				Op:    expr.OpEquals,
				Left:  expr.Binding{Ref: userRef},
				Right: expr.Param{Name: "id", Type: types.FullType{Primitive: types.I64}},
			},
		},
		Expected: query.RowsMaybeOne,
	}

	out, err := relgen.Generate(
		[]*schema.Version{v0, v1},
		[]query.Query{getUser},
		relgen.WithDialect(dialect.Postgres),
		relgen.WithPackage("db"),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
}

// literalDefault renders a fixed SQL literal as a migration default,
// independent of dialect: an expression used only when adding a
// non-nullable column to an existing table.
type literalDefault struct{ sql string }

func (d literalDefault) CompileDefaultLiteral(string) (string, error) {
	return d.sql, nil
}
