// Package analyze wires file discovery, parallel parse/resolve, graph
// building, and the metrics engine into the single operation the `analyze`
// and `diff` subcommands both need: turn a source tree into a
// model.AnalysisResult.
package analyze

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/untangle/untangle/internal/config"
	"github.com/untangle/untangle/internal/discover"
	"github.com/untangle/untangle/internal/graph"
	"github.com/untangle/untangle/internal/insights"
	"github.com/untangle/untangle/internal/metrics"
	"github.com/untangle/untangle/internal/model"
	"github.com/untangle/untangle/internal/parser"
)

// FileSource abstracts where file content comes from: the live filesystem
// for `analyze`, or a revision.Reader's blob for `diff`'s base/head sides.
type FileSource interface {
	ReadFile(path string) ([]byte, error)
}

// FSSource reads files straight off disk; Options.Files are expected to be
// absolute paths in this mode (discover.Discover's own output shape).
type FSSource struct{}

func (FSSource) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// TreeRelativeSource adapts a tree-relative FileSource (revision.Source,
// keyed by repo path) so Run can drive it with the same absolute paths it
// uses for canonical node identity and manifest resolution. Node identity
// stays absolute-path-based (matching the rest of internal/parser's
// existing convention of resolving imports to an absolute target under
// Config.ProjectRoot) in both analyze and diff modes; only the bytes
// backing a path come from a different place in diff mode.
type TreeRelativeSource struct {
	Root   string
	Source FileSource
}

func (s TreeRelativeSource) ReadFile(absPath string) ([]byte, error) {
	rel, err := filepath.Rel(s.Root, absPath)
	if err != nil {
		return nil, err
	}
	return s.Source.ReadFile(filepath.ToSlash(rel))
}

// Options configures one Run.
type Options struct {
	Root     string
	Lang     discover.Language
	Files    []string // when non-nil, used in place of discover.Discover (diff's per-revision file list)
	Discover discover.Options
	Config   parser.Config
	Workers  int // 0 = runtime.NumCPU()
	Source   FileSource
	Rules    config.Rules
	Insights insights.Provider

	// Logger receives a Warn per file that fails to read or parse. Per-file
	// failures are never fatal to the run (they are counted into
	// graph.BuildStats.FilesSkipped instead); a nil Logger disables logging.
	Logger *zap.Logger
}

type fileResult struct {
	path        string
	imports     []model.ResolvedImport
	parseFailed bool
}

// Run discovers files (unless Options.Files is already populated), parses
// and resolves imports across a bounded worker pool, and folds the results
// into a graph.Builder. The pool is an errgroup.Group fanning one goroutine
// per file, bounded to Options.Workers concurrent in flight by parser.Pool's
// own buffered channel of leased frontends acting as the semaphore; this is
// grounded on the teacher's fixed goroutine pool over a channel of jobs,
// simplified from its frontier/entry-expansion model to a static job list,
// since untangle's file set is fully known up front from discover.Discover.
func Run(opts Options) (g *graph.Graph, stats graph.BuildStats, filesParsed int, err error) {
	files := opts.Files
	if files == nil {
		discovered, derr := discover.Discover(opts.Discover)
		if derr != nil {
			return nil, graph.BuildStats{}, 0, derr
		}
		files = discovered
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	pool := parser.NewPool(opts.Lang, workers)

	results := make(chan fileResult, len(files))
	eg, _ := errgroup.WithContext(context.Background())
	for _, f := range files {
		path := f
		eg.Go(func() error {
			frontend := pool.Lease()
			defer pool.Release(frontend)

			content, err := opts.Source.ReadFile(path)
			if err != nil {
				if opts.Logger != nil {
					opts.Logger.Warn("skipping file: read failed", zap.String("path", path), zap.Error(err))
				}
				results <- fileResult{path: path, parseFailed: true}
				return nil
			}
			raws, ok := frontend.ExtractImports(path, content)
			if !ok {
				if opts.Logger != nil {
					opts.Logger.Warn("skipping file: parse failed", zap.String("path", path))
				}
				results <- fileResult{path: path, parseFailed: true}
				return nil
			}
			resolved := make([]model.ResolvedImport, 0, len(raws))
			for _, raw := range raws {
				resolved = append(resolved, frontend.Resolve(path, raw, opts.Config))
			}
			results <- fileResult{path: path, imports: resolved}
			return nil
		})
	}

	go func() {
		eg.Wait()
		close(results)
	}()

	builder := graph.NewBuilder()
	ordered := make([]fileResult, 0, len(files))
	for r := range results {
		ordered = append(ordered, r)
	}
	// Builder is not safe for concurrent use (deterministic insertion
	// order); sort collected results by path before feeding it so graph
	// content is independent of goroutine scheduling.
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].path < ordered[j].path })
	for _, r := range ordered {
		builder.AddFile(r.path, r.imports, r.parseFailed)
	}

	stats = builder.Stats()
	return builder.Graph(), stats, len(files) - stats.FilesSkipped, nil
}

// ToAnalysisResult projects a graph/metrics pair plus the discovery stats
// into the full JSON envelope (spec §6), including the --top N truncation.
func ToAnalysisResult(lang discover.Language, root string, g *graph.Graph, stats graph.BuildStats, elapsedMs int64, filesParsed int, rules config.Rules, provider insights.Provider, top int) model.AnalysisResult {
	calc := metrics.NewCalculator(g)
	summary := calc.Summary()

	n := g.NodeCount()
	density := 0.0
	if n > 1 {
		density = float64(g.EdgeCount()) / float64(n*(n-1))
	}

	modulesPerSecond := 0.0
	if elapsedMs > 0 {
		modulesPerSecond = float64(filesParsed) / (float64(elapsedMs) / 1000.0)
	}

	hotspots := buildHotspots(g, calc)
	if top > 0 && len(hotspots) > top {
		hotspots = hotspots[:top]
	}

	if provider == nil {
		provider = insights.NoopProvider{}
	}

	return model.AnalysisResult{
		Metadata: model.Metadata{
			RunID:             uuid.NewString(),
			Language:          string(lang),
			Root:              root,
			NodeCount:         n,
			EdgeCount:         g.EdgeCount(),
			EdgeDensity:       density,
			FilesParsed:       filesParsed,
			FilesSkipped:      stats.FilesSkipped,
			UnresolvedImports: stats.UnresolvedImports,
			ElapsedMs:         elapsedMs,
			ModulesPerSecond:  modulesPerSecond,
		},
		Summary:  summary,
		Hotspots: hotspots,
		Sccs:     calc.SCCs(),
		Insights: provider.Evaluate(g, calc, rules),
	}
}

func buildHotspots(g *graph.Graph, calc *metrics.Calculator) []model.Hotspot {
	nodes := g.Nodes()
	out := make([]model.Hotspot, 0, len(nodes))
	for _, node := range nodes {
		var sccID *int
		if scc, ok := calc.SCCOf(node); ok {
			id := scc.ID
			sccID = &id
		}

		successors := g.Successors(node)
		edges := make([]model.EdgeRef, 0, len(successors))
		for _, t := range successors {
			e, _ := g.Edge(node, t)
			edges = append(edges, model.EdgeRef{Target: t, Locations: e.Locations})
		}

		out = append(out, model.Hotspot{
			CanonicalPath:   node,
			FanOut:          g.FanOut(node),
			FanIn:           g.FanIn(node),
			Entropy:         calc.NodeEntropy(node),
			AdjustedEntropy: calc.AdjustedEntropy(node),
			SccID:           sccID,
			Edges:           edges,
			ImpactedCount:   len(g.Impacted(node)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FanOut != out[j].FanOut {
			return out[i].FanOut > out[j].FanOut
		}
		if out[i].FanIn != out[j].FanIn {
			return out[i].FanIn > out[j].FanIn
		}
		return out[i].CanonicalPath < out[j].CanonicalPath
	})
	return out
}
