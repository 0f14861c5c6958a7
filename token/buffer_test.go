package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relgenhq/relgen/token"
)

func TestAppendKeywordInsertsSeparator(t *testing.T) {
	b := token.New()
	b.AppendKeyword("SELECT").AppendKeyword("1")
	assert.Equal(t, "SELECT 1", b.String())
}

func TestAppendIdentifierQuotes(t *testing.T) {
	b := token.New()
	b.AppendKeyword("SELECT").AppendIdentifier("hizat").AppendKeyword("FROM").AppendIdentifier("banan")
	assert.Equal(t, `SELECT "hizat" FROM "banan"`, b.String())
}

func TestSubNestsWithParens(t *testing.T) {
	b := token.New()
	b.AppendKeyword("WHERE").Sub(func(inner *token.Buffer) {
		inner.AppendIdentifier("a").AppendKeyword("=").AppendIdentifier("b")
	})
	assert.Equal(t, `WHERE ("a" = "b")`, b.String())
}

func TestJoinInsertsSeparatorBetweenElements(t *testing.T) {
	b := token.New()
	b.Join([]func(*token.Buffer){
		func(b *token.Buffer) { b.AppendIdentifier("a") },
		func(b *token.Buffer) { b.AppendIdentifier("b") },
		func(b *token.Buffer) { b.AppendIdentifier("c") },
	}, ",")
	assert.Equal(t, `"a" , "b" , "c"`, b.String())
}

func TestEmptyBufferHasNoLeadingSpace(t *testing.T) {
	b := token.New()
	b.AppendKeyword("X")
	assert.Equal(t, "X", b.String())
	assert.Equal(t, 1, b.Len())
}
