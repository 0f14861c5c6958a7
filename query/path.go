package query

// extend returns a new path with s appended, never mutating path's backing
// array (callers build several sibling paths from the same prefix). Mirrors
// package expr's own unexported helper of the same name.
func extend(path []string, s string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = s
	return out
}
