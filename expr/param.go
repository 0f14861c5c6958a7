package expr

import (
	"fmt"

	"github.com/relgenhq/relgen/types"
)

// ParamEntry is one resolved named parameter: its position is its index in
// the owning ParamList's Entries, which is also its $N placeholder number
// minus one.
type ParamEntry struct {
	Name string
	Type types.FullType
}

// ParamList deduplicates named parameters by first-seen order: every
// reference to the same name within one statement must agree on type, and
// is rendered with the same $N placeholder.
type ParamList struct {
	entries []ParamEntry
	index   map[string]int
}

// NewParamList returns an empty parameter list.
func NewParamList() *ParamList {
	return &ParamList{index: make(map[string]int)}
}

// Resolve records name's first occurrence (assigning it the next
// placeholder number) or checks a repeat occurrence against the type it
// was first declared with, pushing a mismatch onto ctx.Acc. It returns the
// parameter's zero-based position.
func (p *ParamList) Resolve(ctx *CheckContext, path []string, name string, t types.FullType) int {
	if i, ok := p.index[name]; ok {
		if !p.entries[i].Type.SameType(t) {
			ctx.Errf(path, "parameter %q was already used with type %s, got %s", name, p.entries[i].Type, t)
		}
		return i
	}
	i := len(p.entries)
	p.entries = append(p.entries, ParamEntry{Name: name, Type: t})
	p.index[name] = i
	return i
}

// Entries returns every distinct parameter in first-seen order.
func (p *ParamList) Entries() []ParamEntry {
	return p.entries
}

func placeholder(position int) string {
	return fmt.Sprintf("$%d", position+1)
}
