//go:build !cgo

// Package symbols extracts declaration-level symbols from source files
// with tree-sitter. This stub takes over when cgo is disabled; every
// call reports no symbols.
package symbols

import "context"

// Symbol is one extracted declaration.
type Symbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Line      int    `json:"line"`
	EndLine   int    `json:"endLine"`
	Container string `json:"container,omitempty"`
	Signature string `json:"signature"`
}

// Extractor parses source files and pulls out their declarations.
type Extractor struct{}

// NewExtractor returns nil when parsing is unavailable.
func NewExtractor() *Extractor {
	return nil
}

// IsAvailable reports whether symbol extraction is compiled in.
func IsAvailable() bool {
	return false
}

// ExtractFile extracts all symbols from a single file.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]Symbol, error) {
	return nil, nil
}

// ExtractSource extracts symbols from source bytes.
func (e *Extractor) ExtractSource(ctx context.Context, path string, source []byte, lang Language) ([]Symbol, error) {
	return nil, nil
}
