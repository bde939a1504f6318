// Package parser implements the per-language import-extraction and
// resolution frontends: tree-sitter based concrete-syntax-tree parsing for
// Python, Ruby, Go and Rust, plus the manifest-relative resolution rules
// each language defines.
package parser

import (
	"github.com/untangle/untangle/internal/discover"
	"github.com/untangle/untangle/internal/model"
)

// Config carries the per-language resolution knobs the configuration
// resolver exposes (spec §4.7's go.exclude_stdlib, python.resolve_relative,
// ruby.zeitwerk, ruby.load_path).
type Config struct {
	ProjectRoot     string
	GoExcludeStdlib bool
	PythonResolve   bool
	RubyZeitwerk    bool
	RubyLoadPath    []string
}

// Frontend extracts raw imports from one file's bytes and resolves them to
// canonical, external, or unresolvable targets. A Frontend may hold
// reusable parser state but must never be shared across goroutines; obtain
// one per worker from a Pool.
type Frontend interface {
	// ExtractImports parses content and returns the raw imports found. ok
	// is false when the parser produced no usable root node at all (a
	// structural parse failure, counted as files_skipped upstream, not a
	// per-import condition).
	ExtractImports(path string, content []byte) (imports []model.RawImport, ok bool)

	// Resolve classifies one raw import against cfg and the importing
	// file's path.
	Resolve(fromPath string, raw model.RawImport, cfg Config) model.ResolvedImport
}

// ForLanguage returns a fresh Frontend for lang. Each call allocates its own
// tree-sitter parser; callers should obtain one per worker goroutine, not
// share it, matching tree-sitter's non-reentrant Parser contract.
func ForLanguage(lang discover.Language) Frontend {
	switch lang {
	case discover.Python:
		return newPythonFrontend()
	case discover.Ruby:
		return newRubyFrontend()
	case discover.Go:
		return newGoFrontend()
	case discover.Rust:
		return newRustFrontend()
	default:
		return nil
	}
}
