// Package token provides a whitespace-respecting SQL text assembler.
//
// A Buffer is the single point through which every SQL-emitting package
// (migrate, expr, query) produces text: callers append keywords and
// identifiers and the Buffer takes care of inserting separating spaces and
// quoting identifiers. It performs no escaping of embedded quotes inside an
// identifier — callers are expected to have validated identifier safety
// upstream (schema builders reject only empty and duplicate names).
package token

import "strings"

// Buffer assembles SQL text one token at a time.
type Buffer struct {
	b strings.Builder
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// AppendKeyword appends s, preceded by a space if the buffer already holds
// content. Use for SQL keywords, punctuation and already-quoted literals.
func (b *Buffer) AppendKeyword(s string) *Buffer {
	b.sep()
	b.b.WriteString(s)
	return b
}

// AppendIdentifier appends s wrapped in double quotes, preceded by a space
// if the buffer already holds content.
func (b *Buffer) AppendIdentifier(s string) *Buffer {
	b.sep()
	b.b.WriteByte('"')
	b.b.WriteString(s)
	b.b.WriteByte('"')
	return b
}

// AppendLiteral appends an already-compiled SQL literal (e.g. a migration
// default or a numeric bind placeholder) without quoting it as an
// identifier. It still inserts the leading separating space.
func (b *Buffer) AppendLiteral(s string) *Buffer {
	return b.AppendKeyword(s)
}

// Sub runs fn against a fresh child Buffer and appends its contents,
// wrapped in parentheses, to b. This lets callers nest builders — argument
// lists, subqueries, CTE bodies — without leaking the separator logic of
// the outer buffer into the inner one.
func (b *Buffer) Sub(fn func(*Buffer)) *Buffer {
	inner := New()
	fn(inner)
	b.sep()
	b.b.WriteByte('(')
	b.b.WriteString(inner.String())
	b.b.WriteByte(')')
	return b
}

// Join appends each element of parts to b, separated by sep (sep is
// appended as a keyword token, e.g. "," or "AND").
func (b *Buffer) Join(parts []func(*Buffer), sep string) *Buffer {
	for i, p := range parts {
		if i > 0 {
			b.AppendKeyword(sep)
		}
		p(b)
	}
	return b
}

// String returns the assembled text.
func (b *Buffer) String() string {
	return b.b.String()
}

// Len reports the number of bytes written so far, used to test whether
// the buffer already holds content before deciding to emit a separator.
func (b *Buffer) Len() int {
	return b.b.Len()
}

func (b *Buffer) sep() {
	if b.b.Len() > 0 {
		b.b.WriteByte(' ')
	}
}
