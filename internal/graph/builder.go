package graph

import "github.com/untangle/untangle/internal/model"

// BuildStats accumulates the metadata counters the builder produces
// alongside the graph itself (spec §4.3: unresolved_imports, files_skipped).
type BuildStats struct {
	UnresolvedImports int
	FilesSkipped      int
}

// Builder assembles a Graph from a stream of per-file resolved-import
// batches. It is not safe for concurrent use; callers collect per-file
// results from a worker pool and feed them to one builder sequentially so
// that node/edge insertion order stays deterministic.
type Builder struct {
	g     *Graph
	stats BuildStats
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// AddFile registers importerPath as a node (even if it has no resolved
// imports) and folds each resolved import into the graph. External and
// unresolvable imports never produce edges; they are counted in stats.
// ParseFailed marks the file as having failed to parse entirely (structural
// skip, not fatal) and short-circuits import processing for it.
func (b *Builder) AddFile(importerPath string, imports []model.ResolvedImport, parseFailed bool) {
	if parseFailed {
		b.stats.FilesSkipped++
		return
	}
	b.g.Touch(importerPath, importerPath)

	for _, ri := range imports {
		if ri.Confidence == model.ConfidenceExcluded {
			// Correctly classified but intentionally out of scope by
			// configuration (e.g. a standard-library import with
			// exclude_stdlib set): no edge, and not an anomaly worth
			// counting into unresolved_imports either.
			continue
		}
		if ri.Confidence != model.ConfidenceResolved {
			// Every other non-resolved classification (external, dynamic,
			// unresolvable) is counted into unresolved_imports alike; no
			// distinction is made between internal-looking and clearly
			// external imports.
			b.stats.UnresolvedImports++
			continue
		}
		b.g.AddEdge(importerPath, ri.Target, ri.Raw.Location)
	}
}

// Graph returns the assembled graph.
func (b *Builder) Graph() *Graph { return b.g }

// Stats returns the accumulated file/import counters.
func (b *Builder) Stats() BuildStats { return b.stats }
