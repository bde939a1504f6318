package parser

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// nearestManifest walks upward from dir looking for a file named name,
// returning the directory that contains it. Nested manifests are
// supported: each source file resolves against its nearest enclosing
// manifest root, per spec §4.1's Go/Rust resolution rules.
func nearestManifest(dir, name string) (root string, ok bool) {
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// goModulePath reads the "module" directive from the go.mod at root, using
// a line-oriented scan rather than a full manifest parser since that
// directive is the only field this frontend consumes.
func goModulePath(root string) (string, bool) {
	f, err := os.Open(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module")), true
		}
	}
	return "", false
}

// cargoCrateName reads [package] name from the Cargo.toml at root.
func cargoCrateName(root string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return "", false
	}
	var manifest struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", false
	}
	if manifest.Package.Name == "" {
		return "", false
	}
	return manifest.Package.Name, true
}
