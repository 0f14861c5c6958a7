package relgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgenhq/relgen"
	"github.com/relgenhq/relgen/dialect"
	"github.com/relgenhq/relgen/schema"
)

func TestGenerateReturnsConfigErrorUnwrapped(t *testing.T) {
	v := schema.NewVersion(0)
	_, err := relgen.Generate([]*schema.Version{v}, nil, relgen.WithDialect(dialect.Postgres))
	require.Error(t, err)
	assert.False(t, relgen.IsGenerationError(err))
}

func TestGenerateEmitsMigrate(t *testing.T) {
	v := schema.NewVersion(0)
	out, err := relgen.Generate([]*schema.Version{v}, nil,
		relgen.WithDialect(dialect.Postgres),
		relgen.WithPackage("db"),
		relgen.WithOutputFormatter(func(src []byte) ([]byte, error) { return src, nil }),
	)
	require.NoError(t, err)
	assert.Contains(t, string(out), "func Migrate(")
}
