package parser

import (
	"github.com/untangle/untangle/internal/discover"
)

// Pool hands out one Frontend per lease, backed by a language-keyed
// buffered channel so a fixed number of tree-sitter parsers are reused
// across a worker pool's lifetime instead of allocated per file. Tree-sitter
// Parser values are not safe for concurrent use, so a leased Frontend must
// be returned before another goroutine reuses it.
type Pool struct {
	lang discover.Language
	ch   chan Frontend
}

// NewPool pre-allocates size frontends for lang. size should match the
// worker-pool width the caller intends to run.
func NewPool(lang discover.Language, size int) *Pool {
	ch := make(chan Frontend, size)
	for i := 0; i < size; i++ {
		ch <- ForLanguage(lang)
	}
	return &Pool{lang: lang, ch: ch}
}

// Lease blocks until a Frontend is available.
func (p *Pool) Lease() Frontend {
	return <-p.ch
}

// Release returns a Frontend to the pool for reuse.
func (p *Pool) Release(f Frontend) {
	p.ch <- f
}
