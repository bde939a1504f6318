package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/untangle/untangle/internal/model"
)

func TestGoFrontend_ExtractImports(t *testing.T) {
	f := newGoFrontend()
	src := []byte("package main\n\nimport (\n\t\"fmt\"\n\t\"github.com/acme/widget/internal/thing\"\n)\n")

	imports, ok := f.ExtractImports("main.go", src)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if len(imports) != 2 {
		t.Fatalf("expected 2 imports, got %d: %+v", len(imports), imports)
	}
}

func TestGoFrontend_ResolveModuleInternal(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/widget\n\ngo 1.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "internal", "thing"), 0o755); err != nil {
		t.Fatal(err)
	}

	f := newGoFrontend()
	raw := model.RawImport{FromModule: "github.com/acme/widget/internal/thing"}
	resolved := f.Resolve(filepath.Join(root, "main.go"), raw, Config{GoExcludeStdlib: true})
	if resolved.Confidence != model.ConfidenceResolved {
		t.Fatalf("expected resolved, got %v", resolved.Confidence)
	}
	if resolved.Target != filepath.Join(root, "internal", "thing") {
		t.Fatalf("unexpected target %q", resolved.Target)
	}
}

func TestGoFrontend_ResolveStdlibExcludedByDefault(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/widget\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newGoFrontend()
	raw := model.RawImport{FromModule: "fmt"}
	resolved := f.Resolve(filepath.Join(root, "main.go"), raw, Config{GoExcludeStdlib: true})
	if resolved.Confidence != model.ConfidenceExcluded {
		t.Fatalf("expected excluded, got %v", resolved.Confidence)
	}

	nested := model.RawImport{FromModule: "net/http"}
	resolvedNested := f.Resolve(filepath.Join(root, "main.go"), nested, Config{GoExcludeStdlib: true})
	if resolvedNested.Confidence != model.ConfidenceExcluded {
		t.Fatalf("expected net/http excluded, got %v", resolvedNested.Confidence)
	}
}

func TestGoFrontend_ResolveStdlibIsExternalWhenNotExcluded(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/widget\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newGoFrontend()
	raw := model.RawImport{FromModule: "fmt"}
	resolved := f.Resolve(filepath.Join(root, "main.go"), raw, Config{GoExcludeStdlib: false})
	if resolved.Confidence != model.ConfidenceExternal {
		t.Fatalf("expected external, got %v", resolved.Confidence)
	}
}

func TestGoFrontend_ResolveThirdPartyIsExternal(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/widget\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newGoFrontend()
	raw := model.RawImport{FromModule: "github.com/other/pkg"}
	resolved := f.Resolve(filepath.Join(root, "main.go"), raw, Config{GoExcludeStdlib: true})
	if resolved.Confidence != model.ConfidenceExternal {
		t.Fatalf("expected third-party external, got %v", resolved.Confidence)
	}
}
