package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/untangle/untangle/internal/model"
)

func TestRubyFrontend_ExtractRequireRelative(t *testing.T) {
	f := newRubyFrontend()
	src := []byte("require_relative 'helper'\nrequire 'set'\n")

	imports, ok := f.ExtractImports("a.rb", src)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if len(imports) != 2 {
		t.Fatalf("expected 2 imports, got %d: %+v", len(imports), imports)
	}
	if imports[0].Kind != model.ImportRequireRelative || imports[0].FromModule != "helper" {
		t.Fatalf("unexpected first import: %+v", imports[0])
	}
}

func TestRubyFrontend_ResolveRequireRelative(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "helper.rb"), []byte("X = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newRubyFrontend()
	raw := model.RawImport{Kind: model.ImportRequireRelative, FromModule: "helper"}
	resolved := f.Resolve(filepath.Join(root, "main.rb"), raw, Config{})
	if resolved.Confidence != model.ConfidenceResolved {
		t.Fatalf("expected resolved, got %v", resolved.Confidence)
	}
}

func TestZeitwerkPath_ConvertsCamelCaseToSnakeCase(t *testing.T) {
	got := zeitwerkPath("Admin::UserPolicy")
	want := filepath.Join("admin", "user_policy")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRubyFrontend_InterpolatedRequireIsDynamic(t *testing.T) {
	f := newRubyFrontend()
	src := []byte(`require "models/#{name}"` + "\n")
	imports, ok := f.ExtractImports("a.rb", src)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if len(imports) != 1 || imports[0].Confidence != model.ConfidenceDynamic {
		t.Fatalf("expected dynamic import, got %+v", imports)
	}
}

func TestRubyFrontend_ExtractConstantReference(t *testing.T) {
	f := newRubyFrontend()
	src := []byte("class AuditLog\n  def check\n    Admin::UserPolicy.new.allowed?\n  end\nend\n")

	imports, ok := f.ExtractImports("audit_log.rb", src)
	if !ok {
		t.Fatal("expected successful parse")
	}

	var found *model.RawImport
	for i := range imports {
		if imports[i].Kind == model.ImportConstantReference {
			found = &imports[i]
		}
	}
	if found == nil {
		t.Fatalf("expected a constant-reference import, got %+v", imports)
	}
	if found.AutoloadConstant != "Admin::UserPolicy" {
		t.Fatalf("unexpected constant: %+v", found)
	}
}

func TestRubyFrontend_ExtractConstantReferenceSkipsDefinitionSite(t *testing.T) {
	f := newRubyFrontend()
	src := []byte("class AuditLog\nend\n")

	imports, ok := f.ExtractImports("audit_log.rb", src)
	if !ok {
		t.Fatal("expected successful parse")
	}
	for _, im := range imports {
		if im.Kind == model.ImportConstantReference {
			t.Fatalf("definition site must not be inferred as a reference: %+v", im)
		}
	}
}

func TestRubyFrontend_ExtractConstantReferenceSkipsStdlib(t *testing.T) {
	f := newRubyFrontend()
	src := []byte("class Thing\n  def items\n    Set.new\n  end\nend\n")

	imports, ok := f.ExtractImports("thing.rb", src)
	if !ok {
		t.Fatal("expected successful parse")
	}
	for _, im := range imports {
		if im.Kind == model.ImportConstantReference && im.AutoloadConstant == "Set" {
			t.Fatalf("stdlib constant must be excluded from inference: %+v", im)
		}
	}
}

func TestRubyFrontend_ResolveConstantReferenceExcludedWhenZeitwerkDisabled(t *testing.T) {
	f := newRubyFrontend()
	raw := model.RawImport{Kind: model.ImportConstantReference, AutoloadConstant: "Admin::UserPolicy"}
	resolved := f.Resolve("audit_log.rb", raw, Config{RubyZeitwerk: false})
	if resolved.Confidence != model.ConfidenceExcluded {
		t.Fatalf("expected excluded when zeitwerk disabled, got %v", resolved.Confidence)
	}
}

func TestRubyFrontend_ResolveConstantReferenceResolvesUnderLoadPath(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "admin"), 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(root, "admin", "user_policy.rb")
	if err := os.WriteFile(target, []byte("class Admin::UserPolicy\nend"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newRubyFrontend()
	raw := model.RawImport{Kind: model.ImportConstantReference, AutoloadConstant: "Admin::UserPolicy"}
	resolved := f.Resolve(filepath.Join(root, "audit_log.rb"), raw, Config{RubyZeitwerk: true, RubyLoadPath: []string{root}})
	if resolved.Confidence != model.ConfidenceResolved {
		t.Fatalf("expected resolved, got %v", resolved.Confidence)
	}
	if resolved.Target != target {
		t.Fatalf("unexpected target %q", resolved.Target)
	}
}

func TestRubyFrontend_ResolveConstantReferenceExcludedOnMiss(t *testing.T) {
	f := newRubyFrontend()
	raw := model.RawImport{Kind: model.ImportConstantReference, AutoloadConstant: "Admin::UserPolicy"}
	resolved := f.Resolve("audit_log.rb", raw, Config{RubyZeitwerk: true, RubyLoadPath: []string{t.TempDir()}})
	if resolved.Confidence != model.ConfidenceExcluded {
		t.Fatalf("expected excluded on a miss, not external, got %v", resolved.Confidence)
	}
}
