package codegen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/relgenhq/relgen/query"
	"github.com/relgenhq/relgen/schema"
)

// checkedQuery is one query.Query after type-checking against the latest
// schema version: its SQL text, bound parameters and result shape.
type checkedQuery struct {
	query.Query
	result query.ExprTypeResult
}

// checkQueries runs the expression checker over every query against
// latest's field lookup.
func checkQueries(queries []query.Query, dialectName string, latest *schema.Version) ([]checkedQuery, error) {
	out := make([]checkedQuery, 0, len(queries))
	for _, q := range queries {
		result, err := query.Check(q, dialectName, latest)
		if err != nil {
			return nil, fmt.Errorf("codegen: query %s: %w", q.Name, err)
		}
		out = append(out, checkedQuery{Query: q, result: result})
	}
	return out, nil
}

// emitQueries renders one Go function per checked query plus the
// deduplicated result-row structs they share.
func emitQueries(f *jen.File, queries []checkedQuery) {
	rows := newRowStructRegistry()
	for _, q := range queries {
		if len(q.result.Columns) > 0 {
			rows.nameFor(q.result.Columns)
		}
	}
	rows.emit(f)
	for _, q := range queries {
		emitQueryFunc(f, q, rows)
	}
}

// emitQueryFunc renders Name(ctx, db, params...) with a return shape
// driven by Expected: void | *Row | Row | []Row.
func emitQueryFunc(f *jen.File, q checkedQuery, rows *rowStructRegistry) {
	params := []jen.Code{
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("db").Id("dbQuerier"),
	}
	argNames := make([]jen.Code, 0, len(q.result.Params))
	for _, p := range q.result.Params {
		params = append(params, jen.Id(p.Name).Add(goFieldType(p.Type)))
		argNames = append(argNames, jen.Id(p.Name))
	}

	f.Commentf("%s runs the %q query.", exportedIdent(q.Name), q.Name)

	switch q.Expected {
	case query.RowsNone:
		f.Func().Id(exportedIdent(q.Name)).Params(params...).Error().Block(
			emitExecBody(q, argNames)...,
		)
	case query.RowsMaybeOne:
		rowType := jen.Id(rows.nameFor(q.result.Columns))
		f.Func().Id(exportedIdent(q.Name)).Params(params...).Params(
			jen.Op("*").Add(rowType), jen.Error(),
		).Block(
			emitMaybeOneBody(q, argNames, rows.nameFor(q.result.Columns))...,
		)
	case query.RowsOne:
		rowType := jen.Id(rows.nameFor(q.result.Columns))
		f.Func().Id(exportedIdent(q.Name)).Params(params...).Params(
			rowType, jen.Error(),
		).Block(
			emitOneBody(q, argNames, rows.nameFor(q.result.Columns))...,
		)
	case query.RowsMany:
		rowType := rows.nameFor(q.result.Columns)
		f.Func().Id(exportedIdent(q.Name)).Params(params...).Params(
			jen.Index().Id(rowType), jen.Error(),
		).Block(
			emitManyBody(q, argNames, rowType)...,
		)
	}
}

func emitExecBody(q checkedQuery, argNames []jen.Code) []jen.Code {
	execArgs := append([]jen.Code{jen.Id("ctx"), jen.Lit(q.result.SQL)}, argNames...)
	return []jen.Code{
		jen.List(jen.Id("_"), jen.Id("err")).Op(":=").Id("db").Dot("ExecContext").Call(execArgs...),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Id("classifyError").Call(jen.Id("err"))),
		),
		jen.Return(jen.Nil()),
	}
}

// scanTargetsFor builds the &row.Field scan destinations in column order.
func scanTargetsFor(rowType string, names []string) []jen.Code {
	out := make([]jen.Code, 0, len(names))
	for _, n := range names {
		out = append(out, jen.Op("&").Id("row").Dot(exportedIdent(n)))
	}
	return out
}

func columnNames(q checkedQuery) []string {
	names := make([]string, 0, len(q.result.Columns))
	for _, c := range q.result.Columns {
		names = append(names, c.Name)
	}
	return names
}

func emitMaybeOneBody(q checkedQuery, argNames []jen.Code, rowType string) []jen.Code {
	queryArgs := append([]jen.Code{jen.Id("ctx"), jen.Lit(q.result.SQL)}, argNames...)
	return []jen.Code{
		jen.Var().Id("row").Id(rowType),
		jen.Id("err").Op(":=").Id("db").Dot("QueryRowContext").Call(queryArgs...).Dot("Scan").Call(
			scanTargetsFor(rowType, columnNames(q))...,
		),
		jen.If(jen.Qual("errors", "Is").Call(jen.Id("err"), jen.Qual("database/sql", "ErrNoRows"))).Block(
			jen.Return(jen.Nil(), jen.Nil()),
		),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Id("classifyError").Call(jen.Id("err"))),
		),
		jen.Return(jen.Op("&").Id("row"), jen.Nil()),
	}
}

func emitOneBody(q checkedQuery, argNames []jen.Code, rowType string) []jen.Code {
	queryArgs := append([]jen.Code{jen.Id("ctx"), jen.Lit(q.result.SQL)}, argNames...)
	return []jen.Code{
		jen.Var().Id("row").Id(rowType),
		jen.Id("err").Op(":=").Id("db").Dot("QueryRowContext").Call(queryArgs...).Dot("Scan").Call(
			scanTargetsFor(rowType, columnNames(q))...,
		),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Id(rowType).Values(), jen.Id("classifyError").Call(jen.Id("err"))),
		),
		jen.Return(jen.Id("row"), jen.Nil()),
	}
}

func emitManyBody(q checkedQuery, argNames []jen.Code, rowType string) []jen.Code {
	queryArgs := append([]jen.Code{jen.Id("ctx"), jen.Lit(q.result.SQL)}, argNames...)
	return []jen.Code{
		jen.List(jen.Id("rows"), jen.Id("err")).Op(":=").Id("db").Dot("QueryContext").Call(queryArgs...),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Id("classifyError").Call(jen.Id("err"))),
		),
		jen.Defer().Id("rows").Dot("Close").Call(),
		jen.Var().Id("out").Index().Id(rowType),
		jen.For(jen.Id("rows").Dot("Next").Call()).Block(
			jen.Var().Id("row").Id(rowType),
			jen.If(jen.Id("err").Op(":=").Id("rows").Dot("Scan").Call(
				scanTargetsFor(rowType, columnNames(q))...,
			), jen.Id("err").Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Id("classifyError").Call(jen.Id("err"))),
			),
			jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("row")),
		),
		jen.If(jen.Id("err").Op(":=").Id("rows").Dot("Err").Call(), jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Id("classifyError").Call(jen.Id("err"))),
		),
		jen.Return(jen.Id("out"), jen.Nil()),
	}
}

// emitQuerier adds the dbQuerier interface every emitted function accepts
// in place of *sql.DB, so callers can pass either a *sql.DB or a *sql.Tx:
// query functions take no locks of their own and rely on whatever
// transaction semantics the caller's connection already has.
func emitQuerier(f *jen.File) {
	f.Comment("dbQuerier is satisfied by both *sql.DB and *sql.Tx.")
	f.Type().Id("dbQuerier").Interface(
		jen.Id("ExecContext").Params(jen.Qual("context", "Context"), jen.String(), jen.Op("...").Any()).Params(
			jen.Qual("database/sql", "Result"), jen.Error(),
		),
		jen.Id("QueryContext").Params(jen.Qual("context", "Context"), jen.String(), jen.Op("...").Any()).Params(
			jen.Op("*").Qual("database/sql", "Rows"), jen.Error(),
		),
		jen.Id("QueryRowContext").Params(jen.Qual("context", "Context"), jen.String(), jen.Op("...").Any()).Params(
			jen.Op("*").Qual("database/sql", "Row"),
		),
	)
}
