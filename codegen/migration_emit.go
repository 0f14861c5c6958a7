package codegen

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dave/jennifer/jen"

	"github.com/relgenhq/relgen/migrate"
	"github.com/relgenhq/relgen/query"
	"github.com/relgenhq/relgen/schema"
)

// migrationBlock is one version's guarded statement list: if the recorded
// version is less than V, execute these statements in order.
type migrationBlock struct {
	version    int
	statements []string
}

// planMigrations walks the version history in order, running the graph
// migrator (package migrate) over every adjacent pair and folding each
// version's pre-migration statements, DDL and post-migration statements
// into one guarded block.
func planMigrations(versions []*schema.Version, dialectName string) ([]migrationBlock, error) {
	if len(versions) == 0 {
		return nil, fmt.Errorf("codegen: no versions supplied")
	}
	for i, v := range versions {
		if v.Number != versions[0].Number+i {
			return nil, fmt.Errorf("codegen: version numbers must be consecutive, got %d at index %d after starting at %d", v.Number, i, versions[0].Number)
		}
	}

	blocks := make([]migrationBlock, 0, len(versions))
	var prev *schema.Version
	for _, curr := range versions {
		var stmts []string

		for _, s := range curr.PreMigrationStatements() {
			if prev == nil {
				return nil, fmt.Errorf("codegen: version %d declares a pre-migration statement with no previous version", curr.Number)
			}
			sql, err := compileStatement(s, dialectName, prev)
			if err != nil {
				return nil, fmt.Errorf("codegen: version %d pre-migration: %w", curr.Number, err)
			}
			stmts = append(stmts, sql)
		}

		plan, err := migrate.Plan(prev, curr, dialectName)
		if err != nil {
			return nil, fmt.Errorf("codegen: planning version %d: %w", curr.Number, err)
		}
		stmts = append(stmts, plan.Statements...)

		for _, s := range curr.PostMigrationStatements() {
			sql, err := compileStatement(s, dialectName, curr)
			if err != nil {
				return nil, fmt.Errorf("codegen: version %d post-migration: %w", curr.Number, err)
			}
			stmts = append(stmts, sql)
		}

		blocks = append(blocks, migrationBlock{version: curr.Number, statements: stmts})
		prev = curr
	}
	return blocks, nil
}

// compileStatement type-checks and renders a pre/post-migration statement
// against resolver (the version whose schema it runs under). Only
// query.Query values are accepted; schema.Statement is otherwise an
// opaque marker interface (schema/model.go).
func compileStatement(s schema.Statement, dialectName string, resolver *schema.Version) (string, error) {
	q, ok := s.(query.Query)
	if !ok {
		return "", fmt.Errorf("unsupported statement type %T", s)
	}
	result, err := query.Check(q, dialectName, resolver)
	if err != nil {
		return "", err
	}
	return result.SQL, nil
}

// emitRuntime adds the pieces shared by Migrate and every query function:
// a generic error type carrying a human-readable message plus a
// distinguished schema-mismatch kind, and the driver-error classifier
// that recognizes it.
func emitRuntime(f *jen.File) {
	f.Comment("Error is returned by every emitted function: a human-readable")
	f.Comment("message plus a BadSchema flag recognised from specific driver")
	f.Comment("errors (undefined-table, or SQLite's \"no such table\" substring).")
	f.Type().Id("Error").Struct(
		jen.Id("Message").String(),
		jen.Id("BadSchema").Bool(),
		jen.Id("cause").Error(),
	)

	f.Func().Params(jen.Id("e").Op("*").Id("Error")).Id("Error").Params().String().Block(
		jen.Return(jen.Id("e").Dot("Message")),
	)

	f.Func().Params(jen.Id("e").Op("*").Id("Error")).Id("Unwrap").Params().Error().Block(
		jen.Return(jen.Id("e").Dot("cause")),
	)

	f.Comment("classifyError wraps a driver error, recognising a bad-schema")
	f.Comment("condition from the dialect's undefined-relation error text.")
	f.Func().Id("classifyError").Params(jen.Id("err").Error()).Error().Block(
		jen.If(jen.Id("err").Op("==").Nil()).Block(
			jen.Return(jen.Nil()),
		),
		jen.Id("badSchema").Op(":=").Qual("strings", "Contains").Call(jen.Id("err").Dot("Error").Call(), jen.Lit("no such table")).Op("||").
			Qual("strings", "Contains").Call(jen.Id("err").Dot("Error").Call(), jen.Lit("undefined table")),
		jen.Return(jen.Op("&").Id("Error").Values(jen.Dict{
			jen.Id("Message"):   jen.Id("err").Dot("Error").Call(),
			jen.Id("BadSchema"): jen.Id("badSchema"),
			jen.Id("cause"):     jen.Id("err"),
		})),
	)
}

// emitMigrate renders the emitted file's Migrate entry point: a
// compare-and-set lock held in __good_version, a single transaction per
// holder running every block whose version exceeds the recorded one, and
// rollback-composed error surfacing.
func emitMigrate(f *jen.File, cfg *Config, blocks []migrationBlock) {
	latest := 0
	if len(blocks) > 0 {
		latest = blocks[len(blocks)-1].version
	}
	retryDelay := cfg.LockRetryDelay
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}

	f.Const().Id("goodVersionDDL").Op("=").Lit(
		"CREATE TABLE IF NOT EXISTS __good_version (rid INT PRIMARY KEY, version BIGINT NOT NULL, lock INT NOT NULL)",
	)
	f.Const().Id("goodVersionSeed").Op("=").Lit(
		"INSERT INTO __good_version (rid, version, lock) VALUES (0, -1, 0) ON CONFLICT (rid) DO NOTHING",
	)
	f.Const().Id("goodVersionAcquire").Op("=").Lit(
		"UPDATE __good_version SET lock = 1 WHERE rid = 0 AND lock = 0",
	)
	f.Const().Id("goodVersionRead").Op("=").Lit(
		"SELECT version FROM __good_version WHERE rid = 0",
	)
	f.Const().Id("goodVersionCommit").Op("=").Lit(
		"UPDATE __good_version SET version = $1, lock = 0 WHERE rid = 0",
	)
	f.Const().Id("goodVersionRelease").Op("=").Lit(
		"UPDATE __good_version SET lock = 0 WHERE rid = 0",
	)
	f.Comment(fmt.Sprintf("lockRetryDelay is %s.", retryDelay))
	f.Const().Id("lockRetryDelay").Op("=").Qual("time", "Duration").Call(jen.Lit(int64(retryDelay)))
	f.Comment("lockTimeout is how long Migrate waits to acquire the lock before giving up; zero means wait forever.")
	f.Const().Id("lockTimeout").Op("=").Qual("time", "Duration").Call(jen.Lit(int64(cfg.LockTimeout)))
	f.Const().Id("latestVersion").Op("=").Lit(latest)

	f.Comment("migrationBlock is one version's guarded statement list: its")
	f.Comment("statements run only if the recorded version is less than its")
	f.Comment("own version.")
	f.Type().Id("migrationBlock").Struct(
		jen.Id("version").Int(),
		jen.Id("statements").Index().String(),
	)

	blockEntries := make([]jen.Code, 0, len(blocks))
	for _, b := range blocks {
		lits := make([]jen.Code, 0, len(b.statements))
		for _, s := range b.statements {
			lits = append(lits, jen.Lit(s))
		}
		blockEntries = append(blockEntries, jen.Values(jen.Dict{
			jen.Id("version"):    jen.Lit(b.version),
			jen.Id("statements"): jen.Index().String().Values(lits...),
		}))
	}
	f.Comment("migrationStatements holds every version's guarded block, in")
	f.Comment("ascending version order — the order the emitted Migrate")
	f.Comment("function applies them in.")
	f.Var().Id("migrationStatements").Op("=").Index().Id("migrationBlock").Values(blockEntries...)

	f.Comment("Migrate advances db from its recorded version to the latest")
	f.Comment(fmt.Sprintf("schema version (%s), guarded by a compare-and-set lock in", strconv.Itoa(latest)))
	f.Comment("__good_version so concurrent callers serialise rather than race.")
	f.Func().Id("Migrate").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("db").Op("*").Qual("database/sql", "DB"),
	).Error().Block(
		jen.If(jen.List(jen.Id("_"), jen.Id("err")).Op(":=").Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionDDL")), jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Id("err")),
		),
		jen.If(jen.List(jen.Id("_"), jen.Id("err")).Op(":=").Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionSeed")), jen.Id("err").Op("!=").Nil()).Block(
			jen.Return(jen.Id("err")),
		),
		jen.Id("lockWaitStart").Op(":=").Qual("time", "Now").Call(),
		jen.For().Block(
			jen.If(jen.Id("lockTimeout").Op(">").Lit(0).Op("&&").Qual("time", "Since").Call(jen.Id("lockWaitStart")).Op(">").Id("lockTimeout")).Block(
				jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("migrate: timed out waiting for migration lock"))),
			),
			jen.List(jen.Id("res"), jen.Id("err")).Op(":=").Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionAcquire")),
			jen.If(jen.Id("err").Op("!=").Nil()).Block(
				jen.Return(jen.Id("err")),
			),
			jen.List(jen.Id("n"), jen.Id("err")).Op(":=").Id("res").Dot("RowsAffected").Call(),
			jen.If(jen.Id("err").Op("!=").Nil()).Block(
				jen.Return(jen.Id("err")),
			),
			jen.If(jen.Id("n").Op("==").Lit(1)).Block(
				jen.Break(),
			),
			jen.Qual("time", "Sleep").Call(jen.Id("lockRetryDelay")),
		),
		jen.Var().Id("version").Int(),
		jen.If(jen.Id("err").Op(":=").Id("db").Dot("QueryRowContext").Call(jen.Id("ctx"), jen.Id("goodVersionRead")).Dot("Scan").Call(jen.Op("&").Id("version")), jen.Id("err").Op("!=").Nil()).Block(
			jen.Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionRelease")),
			jen.Return(jen.Id("err")),
		),
		jen.List(jen.Id("tx"), jen.Id("err")).Op(":=").Id("db").Dot("BeginTx").Call(jen.Id("ctx"), jen.Nil()),
		jen.If(jen.Id("err").Op("!=").Nil()).Block(
			jen.Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionRelease")),
			jen.Return(jen.Id("err")),
		),
		jen.For(jen.List(jen.Id("_"), jen.Id("block")).Op(":=").Range().Id("migrationStatements")).Block(
			jen.If(jen.Id("block").Dot("version").Op("<=").Id("version")).Block(
				jen.Continue(),
			),
			jen.For(jen.List(jen.Id("_"), jen.Id("stmt")).Op(":=").Range().Id("block").Dot("statements")).Block(
				jen.If(jen.List(jen.Id("_"), jen.Id("err")).Op(":=").Id("tx").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("stmt")), jen.Id("err").Op("!=").Nil()).Block(
					jen.If(jen.Id("rbErr").Op(":=").Id("tx").Dot("Rollback").Call(), jen.Id("rbErr").Op("!=").Nil()).Block(
						jen.Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionRelease")),
						jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("migrate: %w (rollback failed: %v)"), jen.Id("err"), jen.Id("rbErr"))),
					),
					jen.Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionRelease")),
					jen.Return(jen.Id("classifyError").Call(jen.Id("err"))),
				),
			),
		),
		jen.If(jen.List(jen.Id("_"), jen.Id("err")).Op(":=").Id("tx").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionCommit"), jen.Id("latestVersion")), jen.Id("err").Op("!=").Nil()).Block(
			jen.Id("tx").Dot("Rollback").Call(),
			jen.Id("db").Dot("ExecContext").Call(jen.Id("ctx"), jen.Id("goodVersionRelease")),
			jen.Return(jen.Id("err")),
		),
		jen.Return(jen.Id("tx").Dot("Commit").Call()),
	)
}
