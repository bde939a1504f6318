// Package discover walks a source tree and produces the sorted,
// deduplicated file list a parse phase consumes: include/exclude glob
// filtering, gitignore-style ignore-file support, symlink cycle detection,
// test-file policy, and language auto-detection.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// Language is one of the four supported source languages.
type Language string

const (
	Python Language = "python"
	Ruby   Language = "ruby"
	Go     Language = "go"
	Rust   Language = "rust"
)

var extensionsByLanguage = map[Language][]string{
	Python: {".py"},
	Ruby:   {".rb"},
	Go:     {".go"},
	Rust:   {".rs"},
}

// testSuffix reports whether name looks like a test file for lang.
func testSuffix(lang Language, name string) bool {
	switch lang {
	case Python:
		return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py")
	case Ruby:
		return strings.HasSuffix(name, "_spec.rb") || strings.HasSuffix(name, "_test.rb")
	case Go:
		return strings.HasSuffix(name, "_test.go")
	case Rust:
		return strings.Contains(name, "tests/") // matched against rel path, see isTestFile
	default:
		return false
	}
}

// isTestFile applies per-language test-file recognition against the file's
// path relative to root, per spec §4.2.
func isTestFile(lang Language, relPath string) bool {
	name := filepath.Base(relPath)
	switch lang {
	case Rust:
		return strings.Contains(filepath.ToSlash(relPath), "/tests/") || name == "tests.rs"
	default:
		return testSuffix(lang, name)
	}
}

var skipDirNames = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"venv":         true,
	"target":       true,
}

// Options controls a single discovery pass.
type Options struct {
	Root         string
	Lang         Language
	Include      []string
	Exclude      []string
	IncludeTests bool
	IgnoreFile   string // path to a gitignore-syntax ignore file; empty disables it
}

// Discover returns the sorted, deduplicated list of absolute file paths
// under opts.Root matching opts.Lang's extensions, after include/exclude
// globs, ignore-file exclusions, and test-file policy are applied.
func Discover(opts Options) ([]string, error) {
	exts, ok := extensionsByLanguage[opts.Lang]
	if !ok {
		return nil, fmt.Errorf("discover: unsupported language %q", opts.Lang)
	}

	var gi *ignore.GitIgnore
	if opts.IgnoreFile != "" {
		if _, err := os.Stat(opts.IgnoreFile); err == nil {
			compiled, err := ignore.CompileIgnoreFile(opts.IgnoreFile)
			if err != nil {
				return nil, fmt.Errorf("discover: parsing ignore file: %w", err)
			}
			gi = compiled
		}
	}

	var visitedSymlinks []os.FileInfo
	seen := make(map[string]bool)
	var out []string

	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		// filepath.WalkDir never descends into a symlinked directory on its
		// own (the DirEntry for a symlink always reports IsDir() false), so
		// the only symlink cycle risk here is a symlinked regular file
		// pointing at something already visited through another symlink.
		if d.Type()&fs.ModeSymlink != 0 {
			info, serr := os.Stat(path)
			if serr != nil || info.IsDir() {
				return nil
			}
			for _, v := range visitedSymlinks {
				if os.SameFile(v, info) {
					return nil
				}
			}
			visitedSymlinks = append(visitedSymlinks, info)
		}

		if d.IsDir() {
			name := d.Name()
			if name != "." && strings.HasPrefix(name, ".") && path != opts.Root {
				return fs.SkipDir
			}
			if skipDirNames[name] {
				return fs.SkipDir
			}
			return nil
		}

		if !hasAnyExt(path, exts) {
			return nil
		}

		relPath, rerr := filepath.Rel(opts.Root, path)
		if rerr != nil {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if !opts.IncludeTests && isTestFile(opts.Lang, relPath) {
			return nil
		}

		if len(opts.Include) > 0 && !matchesAny(opts.Include, relSlash) {
			return nil
		}
		if matchesAny(opts.Exclude, relSlash) {
			return nil
		}
		if gi != nil && gi.MatchesPath(relSlash) {
			return nil
		}

		abs, aerr := filepath.Abs(path)
		if aerr != nil {
			abs = path
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

// FilterPaths applies the same extension/test-file/include/exclude policy
// Discover uses during its filesystem walk, but against an already-known
// list of repo-relative paths. This is what the `diff` subcommand uses to
// turn a revision.Reader.ListFiles result into the file set a language
// frontend should parse, since a past revision's blobs can't be walked with
// filepath.WalkDir.
func FilterPaths(relPaths []string, opts Options) ([]string, error) {
	exts, ok := extensionsByLanguage[opts.Lang]
	if !ok {
		return nil, fmt.Errorf("discover: unsupported language %q", opts.Lang)
	}

	var gi *ignore.GitIgnore
	if opts.IgnoreFile != "" {
		if _, err := os.Stat(opts.IgnoreFile); err == nil {
			compiled, err := ignore.CompileIgnoreFile(opts.IgnoreFile)
			if err != nil {
				return nil, fmt.Errorf("discover: parsing ignore file: %w", err)
			}
			gi = compiled
		}
	}

	var out []string
nextPath:
	for _, relPath := range relPaths {
		if !hasAnyExt(relPath, exts) {
			continue
		}
		relSlash := filepath.ToSlash(relPath)
		for _, part := range strings.Split(relSlash, "/") {
			if part != "" && skipDirNames[part] {
				continue nextPath
			}
		}
		if !opts.IncludeTests && isTestFile(opts.Lang, relPath) {
			continue
		}
		if len(opts.Include) > 0 && !matchesAny(opts.Include, relSlash) {
			continue
		}
		if matchesAny(opts.Exclude, relSlash) {
			continue
		}
		if gi != nil && gi.MatchesPath(relSlash) {
			continue
		}
		out = append(out, relPath)
	}
	sort.Strings(out)
	return out, nil
}

func hasAnyExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, relSlash string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, relSlash); ok {
			return true
		}
	}
	return false
}

// AutoDetect counts file extensions in a single pass under root and returns
// the most-represented supported language, per spec §4.2.
func AutoDetect(root string) (Language, error) {
	counts := map[Language]int{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if name != "." && strings.HasPrefix(name, ".") && path != root {
				return fs.SkipDir
			}
			if skipDirNames[name] {
				return fs.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for lang, exts := range extensionsByLanguage {
			for _, e := range exts {
				if ext == e {
					counts[lang]++
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	best := Language("")
	bestCount := -1
	for _, lang := range []Language{Python, Ruby, Go, Rust} {
		if c := counts[lang]; c > bestCount {
			best = lang
			bestCount = c
		}
	}
	if bestCount <= 0 {
		return "", fmt.Errorf("discover: no supported source files found under %s", root)
	}
	return best, nil
}
