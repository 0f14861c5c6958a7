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

func TestCheckWithRendersCTEAndMain(t *testing.T) {
	recent := query.CTE{
		Name:    "recent_users",
		Columns: []query.CTEColumn{{Name: "id", Type: types.FullType{Primitive: types.I64}}},
		Body:    selectIDs("users"),
	}
	q := query.Query{
		Name: "recent",
		Body: query.With{
			CTEs: []query.CTE{recent},
			Main: query.SelectBody{
				From:   query.NamedSource{Source: query.CTESource{CTE: recent}, Alias: "recent_users"},
				Output: []query.Output{{Expr: expr.Binding{Ref: expr.Ref{Table: "recent_users", Name: "id"}}}},
			},
		},
		Expected: query.RowsMany,
	}

	result, err := query.Check(q, dialect.SQLite, usersTable())
	require.NoError(t, err)
	assert.Contains(t, result.SQL, "WITH")
	assert.Contains(t, result.SQL, "recent_users")
	require.Len(t, result.Columns, 1)
}

func TestCheckWithRecursiveUsesRecursiveKeyword(t *testing.T) {
	cte := query.CTE{
		Name:    "ids",
		Columns: []query.CTEColumn{{Name: "id", Type: types.FullType{Primitive: types.I64}}},
		Body:    selectIDs("users"),
	}
	q := query.Query{
		Name: "recursive_ids",
		Body: query.With{
			Recursive: true,
			CTEs:      []query.CTE{cte},
			Main: query.SelectBody{
				From:   query.NamedSource{Source: query.CTESource{CTE: cte}, Alias: "ids"},
				Output: []query.Output{{Expr: expr.Binding{Ref: expr.Ref{Table: "ids", Name: "id"}}}},
			},
		},
		Expected: query.RowsMany,
	}

	result, err := query.Check(q, dialect.SQLite, usersTable())
	require.NoError(t, err)
	assert.Contains(t, result.SQL, "WITH RECURSIVE")
}

func TestCheckWithRejectsMismatchedCTEColumnCount(t *testing.T) {
	cte := query.CTE{
		Name: "ids",
		Columns: []query.CTEColumn{
			{Name: "id", Type: types.FullType{Primitive: types.I64}},
			{Name: "extra", Type: types.FullType{Primitive: types.String}},
		},
		Body: selectIDs("users"),
	}
	q := query.Query{
		Name: "bad",
		Body: query.With{
			CTEs: []query.CTE{cte},
			Main: query.SelectBody{
				From:   query.NamedSource{Source: query.CTESource{CTE: cte}, Alias: "ids"},
				Output: []query.Output{{Expr: expr.Binding{Ref: expr.Ref{Table: "ids", Name: "id"}}}},
			},
		},
		Expected: query.RowsMany,
	}

	_, err := query.Check(q, dialect.SQLite, usersTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares 2 columns")
}

func TestCheckWithRejectedUnderPostgres(t *testing.T) {
	cte := query.CTE{
		Name:    "ids",
		Columns: []query.CTEColumn{{Name: "id", Type: types.FullType{Primitive: types.I64}}},
		Body:    selectIDs("users"),
	}
	q := query.Query{
		Name: "bad",
		Body: query.With{
			CTEs: []query.CTE{cte},
			Main: query.SelectBody{
				From:   query.NamedSource{Source: query.CTESource{CTE: cte}, Alias: "ids"},
				Output: []query.Output{{Expr: expr.Binding{Ref: expr.Ref{Table: "ids", Name: "id"}}}},
			},
		},
		Expected: query.RowsMany,
	}

	_, err := query.Check(q, dialect.Postgres, usersTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported under dialect")
}
