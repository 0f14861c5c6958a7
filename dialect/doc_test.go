package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relgenhq/relgen/dialect"
)

func TestSupported(t *testing.T) {
	assert.True(t, dialect.Supported(dialect.Postgres))
	assert.True(t, dialect.Supported(dialect.SQLite))
	assert.False(t, dialect.Supported("mysql"))
	assert.False(t, dialect.Supported(""))
}

func TestCapabilitiesOfPostgres(t *testing.T) {
	caps := dialect.CapabilitiesOf(dialect.Postgres)
	assert.True(t, caps.AddConstraintToExistingTable)
	assert.True(t, caps.AlterColumnType)
	assert.False(t, caps.WindowCTEJunction)
	assert.False(t, caps.ArrayParameter)
}

func TestCapabilitiesOfSQLite(t *testing.T) {
	caps := dialect.CapabilitiesOf(dialect.SQLite)
	assert.False(t, caps.AddConstraintToExistingTable)
	assert.False(t, caps.AlterColumnType)
	assert.True(t, caps.WindowCTEJunction)
	assert.True(t, caps.ArrayParameter)
}

func TestCapabilitiesOfUnsupportedDialectPanics(t *testing.T) {
	assert.Panics(t, func() { dialect.CapabilitiesOf("mysql") })
}
