package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/untangle/untangle/internal/model"
)

func TestRustFrontend_ExtractScopedUseList(t *testing.T) {
	f := newRustFrontend()
	src := []byte("use crate::config::{Loader, Resolver};\nuse std::collections::HashMap;\n")

	imports, ok := f.ExtractImports("lib.rs", src)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if len(imports) != 3 {
		t.Fatalf("expected 3 flattened use paths, got %d: %+v", len(imports), imports)
	}
}

func TestRustFrontend_ResolveCrateRelative(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]\nname = \"widget\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "src", "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "config", "loader.rs"), []byte("pub struct Loader;"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newRustFrontend()
	raw := model.RawImport{FromModule: "crate::config::loader"}
	resolved := f.Resolve(filepath.Join(root, "src", "lib.rs"), raw, Config{})
	if resolved.Confidence != model.ConfidenceResolved {
		t.Fatalf("expected resolved, got %v", resolved.Confidence)
	}
}

func TestRustFrontend_ResolveExternalCrate(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]\nname = \"widget\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}

	f := newRustFrontend()
	raw := model.RawImport{FromModule: "serde::Deserialize"}
	resolved := f.Resolve(filepath.Join(root, "src", "lib.rs"), raw, Config{})
	if resolved.Confidence != model.ConfidenceExternal {
		t.Fatalf("expected external, got %v", resolved.Confidence)
	}
}
