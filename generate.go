package relgen

import (
	"github.com/relgenhq/relgen/codegen"
	"github.com/relgenhq/relgen/query"
	"github.com/relgenhq/relgen/relerr"
	"github.com/relgenhq/relgen/schema"
)

// Option configures Generate; it is package codegen's Option, re-exported
// here so callers only need to import this package and package schema/
// package query for the common path: build a Version and some queries,
// then call Generate.
type Option = codegen.Option

// Re-exported functional options (codegen/option.go), so a caller never
// needs to import package codegen directly for the common case.
var (
	WithDialect         = codegen.WithDialect
	WithPackage         = codegen.WithPackage
	WithHeader          = codegen.WithHeader
	WithLockTimeout     = codegen.WithLockTimeout
	WithLockRetryDelay  = codegen.WithLockRetryDelay
	WithLogger          = codegen.WithLogger
	WithOutputFormatter = codegen.WithOutputFormatter
)

// Generate validates versions and queries, plans every version's
// migration, type-checks every query, and returns the assembled,
// formatted Go source. Query errors are accumulated and returned
// together as a *GenerationError; anything else (a misused option, a
// schema or version-sequence problem found while planning migrations) is
// returned as-is.
func Generate(versions []*schema.Version, queries []query.Query, opts ...Option) ([]byte, error) {
	out, err := codegen.Generate(versions, queries, opts...)
	if err != nil {
		return nil, wrapGenerationError(err)
	}
	return out, nil
}

// wrapGenerationError recognises an error built from relerr.Join (a
// errors.Join of relerr.PathError values) and repackages it as a
// *GenerationError; any other error — a *codegen.ConfigError, a plan
// failure — passes through unchanged.
func wrapGenerationError(err error) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err
	}
	inner := joined.Unwrap()
	pathErrs := make([]relerr.PathError, 0, len(inner))
	for _, e := range inner {
		pe, ok := e.(relerr.PathError)
		if !ok {
			return err
		}
		pathErrs = append(pathErrs, pe)
	}
	return newGenerationError(pathErrs)
}
