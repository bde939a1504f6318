package parser

import (
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/untangle/untangle/internal/model"
)

type pythonFrontend struct {
	p *sitter.Parser
}

func newPythonFrontend() Frontend {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &pythonFrontend{p: p}
}

func (f *pythonFrontend) ExtractImports(path string, content []byte) ([]model.RawImport, bool) {
	tree := f.p.Parse(nil, content)
	if tree == nil || tree.RootNode() == nil {
		return nil, false
	}

	var out []model.RawImport
	walk(tree.RootNode(), func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				name := c
				if c.Type() == "aliased_import" {
					name = findChild(c, "dotted_name")
				}
				if name == nil || name.Type() != "dotted_name" {
					continue
				}
				line, col := position(n)
				out = append(out, model.RawImport{
					Raw:        nodeText(content, name),
					Location:   model.SourceLocation{File: path, Line: line, Column: col},
					Kind:       model.ImportDirect,
					FromModule: nodeText(content, name),
				})
			}
		case "import_from_statement":
			modNode := n.ChildByFieldName("module_name")
			if modNode == nil {
				break
			}
			line, col := position(n)
			loc := model.SourceLocation{File: path, Line: line, Column: col}

			if modNode.Type() == "relative_import" {
				level := 0
				dotted := ""
				raw := nodeText(content, modNode)
				for _, r := range raw {
					if r == '.' {
						level++
					} else {
						break
					}
				}
				if dn := findChild(modNode, "dotted_name"); dn != nil {
					dotted = nodeText(content, dn)
				}
				out = append(out, model.RawImport{
					Raw:           raw,
					Location:      loc,
					Kind:          model.ImportRelative,
					FromModule:    dotted,
					RelativeLevel: level,
					Names:         pythonImportedNames(content, n),
				})
				return
			}

			out = append(out, model.RawImport{
				Raw:        nodeText(content, modNode),
				Location:   loc,
				Kind:       model.ImportFrom,
				FromModule: nodeText(content, modNode),
				Names:      pythonImportedNames(content, n),
			})
		}
	})
	return out, true
}

func pythonImportedNames(content []byte, importFrom *sitter.Node) []string {
	var names []string
	mod := importFrom.ChildByFieldName("module_name")
	for i := 0; i < int(importFrom.NamedChildCount()); i++ {
		c := importFrom.NamedChild(i)
		switch c.Type() {
		case "dotted_name":
			// Skip the module_name child itself; it's already recorded.
			if mod != nil && c.StartByte() == mod.StartByte() {
				continue
			}
			names = append(names, nodeText(content, c))
		case "aliased_import":
			if id := findChild(c, "dotted_name"); id != nil {
				names = append(names, nodeText(content, id))
			}
		case "wildcard_import":
			names = append(names, "*")
		}
	}
	return names
}

// Resolve implements spec §4.1's Python rule: split the dotted path, and
// for each prefix starting at the project root test whether a package
// directory or a .py file exists. Relative imports first walk up
// RelativeLevel directories from the importing file's directory.
func (f *pythonFrontend) Resolve(fromPath string, raw model.RawImport, cfg Config) model.ResolvedImport {
	if raw.Kind == model.ImportRelative {
		if !cfg.PythonResolve {
			return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceUnresolvable}
		}
		base := filepath.Dir(fromPath)
		for i := 0; i < raw.RelativeLevel-1; i++ {
			base = filepath.Dir(base)
		}
		if raw.FromModule == "" {
			if target, ok := probePythonPackage(base); ok {
				return model.ResolvedImport{Raw: raw, Target: target, Confidence: model.ConfidenceResolved}
			}
			return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceUnresolvable}
		}
		if target, ok := resolvePythonDotted(base, raw.FromModule); ok {
			return model.ResolvedImport{Raw: raw, Target: target, Confidence: model.ConfidenceResolved}
		}
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceUnresolvable}
	}

	if target, ok := resolvePythonDotted(cfg.ProjectRoot, raw.FromModule); ok {
		return model.ResolvedImport{Raw: raw, Target: target, Confidence: model.ConfidenceResolved}
	}
	return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExternal}
}

func resolvePythonDotted(base, dotted string) (string, bool) {
	parts := strings.Split(dotted, ".")
	cur := base
	for i, part := range parts {
		cur = filepath.Join(cur, part)
		last := i == len(parts)-1
		if last {
			if fileExists(cur + ".py") {
				return cur + ".py", true
			}
			if target, ok := probePythonPackage(cur); ok {
				return target, true
			}
			return "", false
		}
		if !dirExists(cur) {
			return "", false
		}
	}
	return "", false
}

func probePythonPackage(dir string) (string, bool) {
	if !dirExists(dir) {
		return "", false
	}
	if fileExists(filepath.Join(dir, "__init__.py")) {
		return filepath.Join(dir, "__init__.py"), true
	}
	return dir, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
