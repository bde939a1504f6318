package parser

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/untangle/untangle/internal/model"
)

type rustFrontend struct {
	p *sitter.Parser
}

func newRustFrontend() Frontend {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &rustFrontend{p: p}
}

func (f *rustFrontend) ExtractImports(path string, content []byte) ([]model.RawImport, bool) {
	tree := f.p.Parse(nil, content)
	if tree == nil || tree.RootNode() == nil {
		return nil, false
	}

	var out []model.RawImport
	walk(tree.RootNode(), func(n *sitter.Node) {
		if n.Type() != "use_declaration" {
			return
		}
		arg := n.NamedChild(0)
		if arg == nil {
			return
		}
		line, col := position(n)
		loc := model.SourceLocation{File: path, Line: line, Column: col}
		for _, use := range flattenUseTree(content, arg, "") {
			out = append(out, model.RawImport{
				Raw:        use,
				Location:   loc,
				Kind:       model.ImportDirect,
				FromModule: use,
			})
		}
	})
	return out, true
}

// flattenUseTree walks a `use` argument's node tree (scoped_identifier,
// scoped_use_list, use_list, use_as_clause, use_wildcard, identifier) and
// returns every fully qualified path it denotes.
func flattenUseTree(content []byte, n *sitter.Node, prefix string) []string {
	switch n.Type() {
	case "identifier", "crate", "self", "super":
		return []string{joinPath(prefix, nodeText(content, n))}

	case "scoped_identifier":
		p := n.ChildByFieldName("path")
		name := n.ChildByFieldName("name")
		base := prefix
		if p != nil {
			base = flattenSingle(content, p, prefix)
		}
		if name != nil {
			return []string{joinPath(base, nodeText(content, name))}
		}
		return []string{base}

	case "scoped_use_list":
		p := n.ChildByFieldName("path")
		base := prefix
		if p != nil {
			base = flattenSingle(content, p, prefix)
		}
		list := n.ChildByFieldName("list")
		if list == nil {
			return []string{base}
		}
		var out []string
		for i := 0; i < int(list.NamedChildCount()); i++ {
			out = append(out, flattenUseTree(content, list.NamedChild(i), base)...)
		}
		return out

	case "use_as_clause":
		p := n.ChildByFieldName("path")
		if p == nil {
			return nil
		}
		return flattenUseTree(content, p, prefix)

	case "use_wildcard":
		p := n.NamedChild(0)
		base := prefix
		if p != nil {
			base = flattenSingle(content, p, prefix)
		}
		return []string{joinPath(base, "*")}

	case "use_list":
		var out []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out = append(out, flattenUseTree(content, n.NamedChild(i), prefix)...)
		}
		return out

	default:
		return []string{joinPath(prefix, nodeText(content, n))}
	}
}

func flattenSingle(content []byte, n *sitter.Node, prefix string) string {
	paths := flattenUseTree(content, n, prefix)
	if len(paths) == 0 {
		return prefix
	}
	return paths[0]
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "::" + segment
}

// Resolve implements spec §4.1's Rust rule: crate:: and the crate's own
// name resolve against src/, super:: relative to the importing file's
// parent module, self:: relative to its own module; <path>.rs then
// <path>/mod.rs are tried in order.
func (f *rustFrontend) Resolve(fromPath string, raw model.RawImport, cfg Config) model.ResolvedImport {
	segments := strings.Split(raw.FromModule, "::")
	if len(segments) == 0 || segments[len(segments)-1] == "*" {
		segments = segments[:max0(len(segments)-1)]
	}
	if len(segments) == 0 {
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExternal}
	}

	dir := filepath.Dir(fromPath)
	root, ok := nearestManifest(dir, "Cargo.toml")
	if !ok {
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExternal}
	}
	crate, _ := cargoCrateName(root)

	// A module's children live in its own directory: dir itself for
	// mod.rs/lib.rs/main.rs, dir/<stem> for any other <stem>.rs file.
	modDir := dir
	if name := filepath.Base(fromPath); name != "mod.rs" && name != "lib.rs" && name != "main.rs" {
		modDir = filepath.Join(dir, strings.TrimSuffix(name, ".rs"))
	}

	head := segments[0]
	var base string
	switch head {
	case "crate":
		base = filepath.Join(root, "src")
		segments = segments[1:]
	case "self":
		base = modDir
		segments = segments[1:]
	case "super":
		base = filepath.Dir(modDir)
		segments = segments[1:]
	default:
		if head == crate {
			base = filepath.Join(root, "src")
			segments = segments[1:]
		} else {
			return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExternal}
		}
	}

	target := base
	for _, seg := range segments {
		target = filepath.Join(target, seg)
	}
	if fileExists(target + ".rs") {
		return model.ResolvedImport{Raw: raw, Target: target + ".rs", Confidence: model.ConfidenceResolved}
	}
	modRs := filepath.Join(target, "mod.rs")
	if fileExists(modRs) {
		return model.ResolvedImport{Raw: raw, Target: modRs, Confidence: model.ConfidenceResolved}
	}
	return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceUnresolvable}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
