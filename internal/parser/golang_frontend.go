package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/untangle/untangle/internal/model"
)

type goFrontend struct {
	p *sitter.Parser
}

func newGoFrontend() Frontend {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &goFrontend{p: p}
}

func (f *goFrontend) ExtractImports(path string, content []byte) ([]model.RawImport, bool) {
	tree := f.p.Parse(nil, content)
	if tree == nil || tree.RootNode() == nil {
		return nil, false
	}

	var out []model.RawImport
	walk(tree.RootNode(), func(n *sitter.Node) {
		if n.Type() != "import_spec" {
			return
		}
		strNode := findChild(n, "interpreted_string_literal")
		if strNode == nil {
			strNode = findChild(n, "raw_string_literal")
		}
		if strNode == nil {
			return
		}
		line, col := position(n)
		out = append(out, model.RawImport{
			Raw:        stringContent(content, strNode),
			Location:   model.SourceLocation{File: path, Line: line, Column: col},
			Kind:       model.ImportDirect,
			FromModule: stringContent(content, strNode),
		})
	})
	return out, true
}

// Resolve implements spec §4.1's Go rule: the module path is read from the
// nearest ancestor go.mod; imports under that path resolve to the directory
// relative to the manifest root, imports with no dot in the first path
// segment are standard-library and excluded by default, everything else is
// external.
func (f *goFrontend) Resolve(fromPath string, raw model.RawImport, cfg Config) model.ResolvedImport {
	dir := filepath.Dir(fromPath)
	root, ok := nearestManifest(dir, "go.mod")
	if !ok {
		return f.externalOrStdlib(raw, cfg)
	}
	modulePath, ok := goModulePath(root)
	if !ok {
		return f.externalOrStdlib(raw, cfg)
	}

	if raw.FromModule == modulePath || strings.HasPrefix(raw.FromModule, modulePath+"/") {
		rel := strings.TrimPrefix(strings.TrimPrefix(raw.FromModule, modulePath), "/")
		target := filepath.Join(root, filepath.FromSlash(rel))
		return model.ResolvedImport{Raw: raw, Target: target, Confidence: model.ConfidenceResolved}
	}

	return f.externalOrStdlib(raw, cfg)
}

// externalOrStdlib classifies a non-module-internal import as standard
// library (no dot in its first path segment, e.g. "fmt", "encoding/json")
// or genuinely external (e.g. "github.com/x/y"). Standard-library imports
// are dropped silently (ConfidenceExcluded) when cfg.GoExcludeStdlib is set,
// matching spec §4.1's "excluded by default"; otherwise they are reported
// the same as any other external import.
func (f *goFrontend) externalOrStdlib(raw model.RawImport, cfg Config) model.ResolvedImport {
	if cfg.GoExcludeStdlib && isGoStdlib(raw.FromModule) {
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExcluded}
	}
	return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExternal}
}

// isGoStdlib reports whether path's first segment contains no dot, the same
// heuristic cmd/go itself uses to distinguish "fmt"/"net/http" from
// "github.com/x/y".
func isGoStdlib(path string) bool {
	first := path
	if i := strings.Index(path, "/"); i >= 0 {
		first = path[:i]
	}
	return !strings.Contains(first, ".")
}
