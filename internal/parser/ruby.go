package parser

import (
	"path/filepath"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/untangle/untangle/internal/model"
)

type rubyFrontend struct {
	p *sitter.Parser
}

func newRubyFrontend() Frontend {
	p := sitter.NewParser()
	p.SetLanguage(ruby.GetLanguage())
	return &rubyFrontend{p: p}
}

func (f *rubyFrontend) ExtractImports(path string, content []byte) ([]model.RawImport, bool) {
	tree := f.p.Parse(nil, content)
	if tree == nil || tree.RootNode() == nil {
		return nil, false
	}

	var out []model.RawImport
	walk(tree.RootNode(), func(n *sitter.Node) {
		if n.Type() != "call" {
			return
		}
		method := n.ChildByFieldName("method")
		if method == nil || method.Type() != "identifier" {
			return
		}
		name := nodeText(content, method)
		if name != "require" && name != "require_relative" && name != "autoload" {
			return
		}

		args := n.ChildByFieldName("arguments")
		if args == nil {
			return
		}

		line, col := position(n)
		loc := model.SourceLocation{File: path, Line: line, Column: col}

		switch name {
		case "require", "require_relative":
			strNode := firstStringArg(args)
			if strNode == nil {
				return
			}
			if hasInterpolation(strNode) {
				out = append(out, model.RawImport{
					Raw: nodeText(content, strNode), Location: loc,
					Kind: kindFor(name), Confidence: model.ConfidenceDynamic,
				})
				return
			}
			out = append(out, model.RawImport{
				Raw:        stringContent(content, strNode),
				Location:   loc,
				Kind:       kindFor(name),
				FromModule: stringContent(content, strNode),
			})
		case "autoload":
			argList := findChildren(args, "simple_symbol")
			strs := findChildren(args, "string")
			if len(argList) == 0 || len(strs) == 0 {
				return
			}
			out = append(out, model.RawImport{
				Raw:              nodeText(content, strs[0]),
				Location:         loc,
				Kind:             model.ImportAutoload,
				AutoloadConstant: strings.TrimPrefix(nodeText(content, argList[0]), ":"),
				FromModule:       stringContent(content, strs[0]),
			})
		}
	})
	out = append(out, zeitwerkConstantReferences(content, tree.RootNode(), path)...)
	return out, true
}

// zeitwerkConstantReferences walks bare constant references ("UserPolicy",
// "Admin::UserPolicy") and emits one RawImport per reference, gated at
// resolve time by cfg.RubyZeitwerk (spec §4.1: "if enabled, constant
// references in code can also produce edges"). Definition sites (the name
// in a class/module declaration) and Ruby/core-library constants are
// skipped so the inference doesn't manufacture an edge for every class
// statement or every use of String/Hash/Array.
func zeitwerkConstantReferences(content []byte, root *sitter.Node, path string) []model.RawImport {
	var out []model.RawImport
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "scope_resolution":
			if isConstantDefinitionSite(n) {
				return
			}
			name := nodeText(content, n)
			if rubyStdlibConstants[strings.SplitN(name, "::", 2)[0]] {
				return
			}
			line, col := position(n)
			out = append(out, model.RawImport{
				Raw: name, Location: model.SourceLocation{File: path, Line: line, Column: col},
				Kind: model.ImportConstantReference, AutoloadConstant: name,
			})
		case "constant":
			if n.Parent() != nil && n.Parent().Type() == "scope_resolution" {
				return // counted once, as part of the enclosing scope_resolution
			}
			if isConstantDefinitionSite(n) {
				return
			}
			name := nodeText(content, n)
			if rubyStdlibConstants[name] {
				return
			}
			line, col := position(n)
			out = append(out, model.RawImport{
				Raw: name, Location: model.SourceLocation{File: path, Line: line, Column: col},
				Kind: model.ImportConstantReference, AutoloadConstant: name,
			})
		}
	})
	return out
}

// isConstantDefinitionSite reports whether n is the name of the class or
// module it appears directly under, rather than a reference to one. "class
// Foo" defines Foo; it does not depend on it.
func isConstantDefinitionSite(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	if parent.Type() != "class" && parent.Type() != "module" {
		return false
	}
	return parent.ChildByFieldName("name") == n
}

// rubyStdlibConstants excludes Ruby's own built-in classes/modules from
// Zeitwerk constant-reference inference; none of these live under a
// project's autoload roots.
var rubyStdlibConstants = map[string]bool{
	"Object": true, "BasicObject": true, "Module": true, "Class": true,
	"Kernel": true, "Comparable": true, "Enumerable": true,
	"String": true, "Symbol": true, "Integer": true, "Float": true, "Numeric": true,
	"Array": true, "Hash": true, "Range": true, "Regexp": true, "Proc": true, "Method": true,
	"NilClass": true, "TrueClass": true, "FalseClass": true,
	"Exception": true, "StandardError": true, "RuntimeError": true, "ArgumentError": true,
	"TypeError": true, "NameError": true, "NoMethodError": true, "IndexError": true,
	"KeyError": true, "RangeError": true, "NotImplementedError": true, "IOError": true,
	"ZeroDivisionError": true, "StopIteration": true, "LoadError": true,
	"Struct": true, "Time": true, "File": true, "Dir": true, "IO": true, "Math": true,
	"ENV": true, "ObjectSpace": true, "GC": true, "Thread": true, "Mutex": true,
	"Encoding": true, "Enumerator": true, "Set": true,
}

func kindFor(method string) model.ImportKind {
	if method == "require_relative" {
		return model.ImportRequireRelative
	}
	return model.ImportDirect
}

func firstStringArg(args *sitter.Node) *sitter.Node {
	for i := 0; i < int(args.NamedChildCount()); i++ {
		c := args.NamedChild(i)
		if c.Type() == "string" {
			return c
		}
	}
	return nil
}

func hasInterpolation(strNode *sitter.Node) bool {
	return findChild(strNode, "interpolation") != nil
}

// Resolve implements spec §4.1's Ruby rule: require_relative resolves
// relative to the importing file; require tries each configured load-path
// root in order, appending .rb; Zeitwerk mode additionally converts
// CamelCase constant references using standard inflection.
func (f *rubyFrontend) Resolve(fromPath string, raw model.RawImport, cfg Config) model.ResolvedImport {
	if raw.Confidence == model.ConfidenceDynamic {
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceUnresolvable}
	}

	switch raw.Kind {
	case model.ImportRequireRelative:
		candidate := filepath.Join(filepath.Dir(fromPath), raw.FromModule+".rb")
		if fileExists(candidate) {
			return model.ResolvedImport{Raw: raw, Target: candidate, Confidence: model.ConfidenceResolved}
		}
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceUnresolvable}

	case model.ImportAutoload:
		if !cfg.RubyZeitwerk {
			return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExternal}
		}
		rel := zeitwerkPath(raw.AutoloadConstant)
		for _, root := range cfg.RubyLoadPath {
			candidate := filepath.Join(root, rel+".rb")
			if fileExists(candidate) {
				return model.ResolvedImport{Raw: raw, Target: candidate, Confidence: model.ConfidenceResolved}
			}
		}
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExternal}

	case model.ImportConstantReference:
		// Inferred, not declared: stay silent unless Zeitwerk mode is on, and
		// stay silent on a miss too (a guess that didn't pan out is not the
		// same anomaly as an explicit require that failed to resolve).
		if !cfg.RubyZeitwerk {
			return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExcluded}
		}
		rel := zeitwerkPath(raw.AutoloadConstant)
		for _, root := range cfg.RubyLoadPath {
			candidate := filepath.Join(root, rel+".rb")
			if fileExists(candidate) {
				return model.ResolvedImport{Raw: raw, Target: candidate, Confidence: model.ConfidenceResolved}
			}
		}
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExcluded}

	default: // require
		for _, root := range cfg.RubyLoadPath {
			candidate := filepath.Join(root, raw.FromModule+".rb")
			if fileExists(candidate) {
				return model.ResolvedImport{Raw: raw, Target: candidate, Confidence: model.ConfidenceResolved}
			}
		}
		return model.ResolvedImport{Raw: raw, Confidence: model.ConfidenceExternal}
	}
}

// zeitwerkPath converts a CamelCase constant reference like "Admin::UserPolicy"
// into Zeitwerk's expected snake_case relative path "admin/user_policy".
func zeitwerkPath(constant string) string {
	parts := strings.Split(constant, "::")
	for i, p := range parts {
		parts[i] = toSnakeCase(p)
	}
	return filepath.Join(parts...)
}

func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimPrefix(b.String(), "_")
}
