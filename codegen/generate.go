package codegen

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/query"
	"github.com/relgenhq/relgen/relerr"
	"github.com/relgenhq/relgen/schema"
)

// Generate drives the whole code-emit pipeline: it validates the version
// sequence, plans every version's migration with package migrate,
// type-checks every query against the latest version with package query,
// and assembles a single Go source file exposing Migrate and one function
// per query.
//
// versions must be supplied in order and numbered consecutively, starting
// at any value;
// there is no separate version-entry wrapper type since schema.Version
// already carries its own Number.
func Generate(versions []*schema.Version, queries []query.Query, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("codegen: no versions supplied")
	}
	latest := versions[len(versions)-1]

	blocks, err := planMigrations(versions, cfg.Dialect)
	if err != nil {
		return nil, err
	}

	acc := relerr.New()
	checked := make([]checkedQuery, 0, len(queries))
	for _, q := range queries {
		result, err := query.Check(q, cfg.Dialect, latest)
		if err != nil {
			acc.Path("Query " + q.Name).Push(err)
			continue
		}
		checked = append(checked, checkedQuery{Query: q, result: result})
	}
	if !acc.OK() {
		return nil, relerr.Join(acc)
	}

	cfg.Logger.Info("codegen: planned migration", "versions", len(versions), "queries", len(checked))

	f := jen.NewFile(cfg.Package)
	if cfg.Header != "" {
		f.HeaderComment(cfg.Header)
	}
	f.HeaderComment("Code generated by relgen. DO NOT EDIT.")
	if cfg.Dialect == dialect.Postgres {
		f.HeaderComment(`This file expects a PostgreSQL driver registered under "postgres";` +
			` import it for side effects, e.g.:` + "\n\t" + `_ "github.com/lib/pq"`)
	}

	emitQuerier(f)
	emitRuntime(f)
	emitMigrate(f, cfg, blocks)
	emitQueries(f, checked)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("codegen: rendering generated source: %w", err)
	}

	formatted, err := cfg.OutputFormatter(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return formatted, nil
}
