package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/query"
	"github.com/relgenhq/relgen/types"
)

// fakeResolver is a minimal expr.TableResolver backed by a fixed table
// catalog, standing in for a real *schema.Version without building one
// through the schema builder API.
type fakeResolver map[string]map[string]types.FullType

func (f fakeResolver) TableFields(table string) (map[string]types.FullType, bool) {
	fields, ok := f[table]
	return fields, ok
}

func usersTable() fakeResolver {
	return fakeResolver{
		"users": {
			"id":    types.FullType{Primitive: types.I64},
			"email": types.FullType{Primitive: types.String},
		},
	}
}

func TestCheckSelectResolvesColumnsAndParams(t *testing.T) {
	userRef := expr.Ref{Table: "users", Name: "id"}
	q := query.Query{
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

	result, err := query.Check(q, dialect.Postgres, usersTable())
	require.NoError(t, err)
	require.Len(t, result.Columns, 2)
	assert.Equal(t, "id", result.Columns[0].Name)
	assert.Equal(t, "email", result.Columns[1].Name)
	require.Len(t, result.Params, 1)
	assert.Equal(t, "id", result.Params[0].Name)
	assert.Contains(t, result.SQL, "SELECT")
	assert.Contains(t, result.SQL, "WHERE")
}

func TestCheckSelectRejectsUnknownTable(t *testing.T) {
	q := query.Query{
		Name: "bad",
		Body: query.SelectBody{
			From:   query.NamedSource{Source: query.TableSource{Table: "ghosts"}},
			Output: []query.Output{{Expr: expr.Lit{Primitive: types.I64, Value: int64(1)}}},
		},
		Expected: query.RowsMany,
	}

	_, err := query.Check(q, dialect.Postgres, usersTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown table")
}

func TestCheckSelectRejectsRowsNoneWithOutputs(t *testing.T) {
	q := query.Query{
		Name: "bad",
		Body: query.SelectBody{
			From:   query.NamedSource{Source: query.TableSource{Table: "users"}},
			Output: []query.Output{{Expr: expr.Lit{Primitive: types.I64, Value: int64(1)}}},
		},
		Expected: query.RowsNone,
	}

	_, err := query.Check(q, dialect.Postgres, usersTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects no rows")
}

func TestCheckInsertReturningResolvesColumns(t *testing.T) {
	q := query.Query{
		Name: "create_user",
		Body: query.Insert{
			Table: "users",
			Values: []query.Assignment{
				{Field: "id", Value: expr.Param{Name: "id", Type: types.FullType{Primitive: types.I64}}},
				{Field: "email", Value: expr.Param{Name: "email", Type: types.FullType{Primitive: types.String}}},
			},
			Returning: []query.Output{{Expr: expr.Binding{Ref: expr.Ref{Table: "users", Name: "id"}}}},
		},
		Expected: query.RowsOne,
	}

	result, err := query.Check(q, dialect.Postgres, usersTable())
	require.NoError(t, err)
	assert.Contains(t, result.SQL, "INSERT INTO")
	assert.Contains(t, result.SQL, "RETURNING")
	require.Len(t, result.Columns, 1)
	require.Len(t, result.Params, 2)
}

func TestCheckInsertRejectsMismatchedFieldType(t *testing.T) {
	q := query.Query{
		Name: "bad",
		Body: query.Insert{
			Table: "users",
			Values: []query.Assignment{
				{Field: "id", Value: expr.Lit{Primitive: types.String, Value: "not-an-int"}},
			},
		},
		Expected: query.RowsNone,
	}

	_, err := query.Check(q, dialect.Postgres, usersTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects")
}

func TestCheckUpdateRendersSetAndWhere(t *testing.T) {
	q := query.Query{
		Name: "rename_user",
		Body: query.Update{
			Table: "users",
			Values: []query.Assignment{
				{Field: "email", Value: expr.Param{Name: "email", Type: types.FullType{Primitive: types.String}}},
			},
			Where: expr.BinOp{
				Op:    expr.OpEquals,
				Left:  expr.Binding{Ref: expr.Ref{Table: "users", Name: "id"}},
				Right: expr.Param{Name: "id", Type: types.FullType{Primitive: types.I64}},
			},
		},
		Expected: query.RowsNone,
	}

	result, err := query.Check(q, dialect.Postgres, usersTable())
	require.NoError(t, err)
	assert.Contains(t, result.SQL, "UPDATE")
	assert.Contains(t, result.SQL, "SET")
	assert.Contains(t, result.SQL, "WHERE")
}

func TestCheckDeleteRendersWhere(t *testing.T) {
	q := query.Query{
		Name: "delete_user",
		Body: query.Delete{
			Table: "users",
			Where: expr.BinOp{
				Op:    expr.OpEquals,
				Left:  expr.Binding{Ref: expr.Ref{Table: "users", Name: "id"}},
				Right: expr.Param{Name: "id", Type: types.FullType{Primitive: types.I64}},
			},
		},
		Expected: query.RowsNone,
	}

	result, err := query.Check(q, dialect.Postgres, usersTable())
	require.NoError(t, err)
	assert.Contains(t, result.SQL, "DELETE FROM")
	assert.Contains(t, result.SQL, "WHERE")
}

func TestQueryImplementsSchemaStatement(t *testing.T) {
	q := query.Query{Name: "noop", Body: query.Delete{Table: "users"}, Expected: query.RowsNone}
	assert.NotPanics(t, func() { q.RelgenStatement() })
}
