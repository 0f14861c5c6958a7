package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// Format runs src through goimports, resolving and tidying the import
// block before the generated file touches disk.
func Format(src []byte) ([]byte, error) {
	formatted, err := imports.Process("relgen_generated.go", src, nil)
	if err != nil {
		return nil, fmt.Errorf("codegen: formatting generated source: %w", err)
	}
	return formatted, nil
}

// WriteFile writes src to path, creating any missing parent directories.
// It is the only filesystem touchpoint in package codegen — Generate
// itself returns bytes and leaves writing them to the caller, but
// exposes this helper for the common case rather than folding a
// directory layout convention into the core.
func WriteFile(path string, src []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("codegen: creating output directory: %w", err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("codegen: writing %s: %w", path, err)
	}
	return nil
}
