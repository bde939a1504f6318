// Package revision reads file trees and blob contents at an arbitrary
// named VCS revision without touching the working tree, so a base/head
// comparison never requires a checkout.
package revision

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Reader resolves revisions and reads blobs from one repository.
type Reader struct {
	repo *git.Repository
}

// Open opens the git repository rooted at or above path.
func Open(path string) (*Reader, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("revision: opening repository at %s: %w", path, err)
	}
	return &Reader{repo: repo}, nil
}

// tree resolves ref (branch, tag, short hash, HEAD~N, ...) to its commit
// tree, using go-git's extended revision syntax.
func (r *Reader) tree(ref string) (*object.Tree, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("revision: resolving %q: %w", ref, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("revision: loading commit %q: %w", ref, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("revision: loading tree for %q: %w", ref, err)
	}
	return tree, nil
}

// ListFiles returns every file path in ref's tree, sorted.
func (r *Reader) ListFiles(ref string) ([]string, error) {
	tree, err := r.tree(ref)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = tree.Files().ForEach(func(f *object.File) error {
		paths = append(paths, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("revision: listing files at %q: %w", ref, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Source binds a Reader to one ref, exposing ReadFile(path) so it can be
// handed to internal/analyze.Run as its FileSource without that package
// depending on go-git or the ref string at all.
type Source struct {
	Reader *Reader
	Ref    string
}

// ReadFile returns path's blob content at the bound ref.
func (s Source) ReadFile(path string) ([]byte, error) {
	return s.Reader.ReadFile(s.Ref, path)
}

// ReadFile returns path's blob content at ref.
func (r *Reader) ReadFile(ref, path string) ([]byte, error) {
	tree, err := r.tree(ref)
	if err != nil {
		return nil, err
	}
	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("revision: reading %s at %q: %w", path, ref, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("revision: reading blob contents for %s at %q: %w", path, ref, err)
	}
	return []byte(contents), nil
}
