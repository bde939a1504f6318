package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover_FindsMatchingExtensionsOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "import os")
	writeFile(t, root, "b.rb", "require 'set'")
	writeFile(t, root, "pkg/c.py", "import sys")

	files, err := Discover(Options{Root: root, Lang: Python})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 python files, got %v", files)
	}
}

func TestDiscover_ExcludesTestFilesByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "x = 1")
	writeFile(t, root, "test_a.py", "x = 1")

	files, err := Discover(Options{Root: root, Lang: Python})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected test file excluded, got %v", files)
	}

	withTests, err := Discover(Options{Root: root, Lang: Python, IncludeTests: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(withTests) != 2 {
		t.Fatalf("expected both files with IncludeTests, got %v", withTests)
	}
}

func TestDiscover_ExcludeTakesPrecedenceOverInclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.go", "package x")
	writeFile(t, root, "drop.go", "package x")

	files, err := Discover(Options{
		Root:    root,
		Lang:    Go,
		Include: []string{"*.go"},
		Exclude: []string{"drop.go"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep.go" {
		t.Fatalf("expected only keep.go, got %v", files)
	}
}

func TestDiscover_SkipsVendorAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package x")
	writeFile(t, root, "vendor/dep/dep.go", "package dep")
	writeFile(t, root, ".git/objects/fake.go", "package fake")

	files, err := Discover(Options{Root: root, Lang: Go})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected only main.go, got %v", files)
	}
}

func TestDiscover_IgnoreFileExcludesMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rs", "fn main() {}")
	writeFile(t, root, "generated/b.rs", "fn gen() {}")
	ignorePath := filepath.Join(root, ".untangleignore")
	if err := os.WriteFile(ignorePath, []byte("generated/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(Options{Root: root, Lang: Rust, IgnoreFile: ignorePath})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected generated dir excluded, got %v", files)
	}
}

func TestAutoDetect_PicksMostRepresentedLanguage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package x")
	writeFile(t, root, "b.go", "package x")
	writeFile(t, root, "c.py", "x = 1")

	lang, err := AutoDetect(root)
	if err != nil {
		t.Fatal(err)
	}
	if lang != Go {
		t.Fatalf("expected go, got %v", lang)
	}
}

func TestAutoDetect_NoSourcesIsError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "hello")

	if _, err := AutoDetect(root); err == nil {
		t.Fatal("expected error for no supported sources")
	}
}
