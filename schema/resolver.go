package schema

import "github.com/relgenhq/relgen/types"

// TableFields resolves table (its live SQL name) to the full type of
// every one of its fields, keyed by field name. It implements
// expr.TableResolver, giving a query body its starting scope without
// package schema depending on package expr or package query.
func (v *Version) TableFields(table string) (map[string]types.FullType, bool) {
	for _, t := range v.tables {
		if t.Name() != table {
			continue
		}
		out := make(map[string]types.FullType, len(t.Fields))
		for _, f := range t.Fields {
			out[f.Name] = f.Type.FullType
		}
		return out, true
	}
	return nil, false
}
