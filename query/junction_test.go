package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/expr"
	"github.com/relgenhq/relgen/query"
)

func selectIDs(table string) query.SelectBody {
	return query.SelectBody{
		From:   query.NamedSource{Source: query.TableSource{Table: table}},
		Output: []query.Output{{Expr: expr.Binding{Ref: expr.Ref{Table: table, Name: "id"}}}},
	}
}

func TestCheckSetJunctionRequiresMatchingColumnCount(t *testing.T) {
	q := query.Query{
		Name: "bad",
		Body: query.SetJunction{
			Base: selectIDs("users"),
			Junctions: []query.Junction{
				{Op: query.Union, Body: query.SelectBody{
					From: query.NamedSource{Source: query.TableSource{Table: "users"}},
					Output: []query.Output{
						{Expr: expr.Binding{Ref: expr.Ref{Table: "users", Name: "id"}}},
						{Expr: expr.Binding{Ref: expr.Ref{Table: "users", Name: "email"}}},
					},
				}},
			},
		},
		Expected: query.RowsMany,
	}

	_, err := query.Check(q, dialect.SQLite, usersTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must match exactly")
}

func TestCheckSetJunctionRejectedUnderPostgres(t *testing.T) {
	q := query.Query{
		Name: "bad",
		Body: query.SetJunction{
			Base:      selectIDs("users"),
			Junctions: []query.Junction{{Op: query.Union, Body: selectIDs("users")}},
		},
		Expected: query.RowsMany,
	}

	_, err := query.Check(q, dialect.Postgres, usersTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported under dialect")
}

func TestCheckSetJunctionUnionAllRendersBothSides(t *testing.T) {
	q := query.Query{
		Name: "ids",
		Body: query.SetJunction{
			Base:      selectIDs("users"),
			Junctions: []query.Junction{{Op: query.UnionAll, Body: selectIDs("users")}},
		},
		Expected: query.RowsMany,
	}

	result, err := query.Check(q, dialect.SQLite, usersTable())
	require.NoError(t, err)
	assert.Contains(t, result.SQL, "UNION ALL")
	require.Len(t, result.Columns, 1)
}

func TestJunctionOperatorString(t *testing.T) {
	assert.Equal(t, "UNION", query.Union.String())
	assert.Equal(t, "UNION ALL", query.UnionAll.String())
	assert.Equal(t, "INTERSECT", query.Intersect.String())
	assert.Equal(t, "EXCEPT", query.Except.String())
}
