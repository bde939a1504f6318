package analyze_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/untangle/untangle/internal/analyze"
	"github.com/untangle/untangle/internal/config"
	"github.com/untangle/untangle/internal/discover"
	"github.com/untangle/untangle/internal/insights"
	"github.com/untangle/untangle/internal/parser"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fanoutTree lays out a.py -> b.py, c.py, and b.py -> c.py; nothing imports
// a.py, so its fan-in is 0 while c.py's fan-in is 2, giving
// Run/ToAnalysisResult distinct fan-out/fan-in ranks to sort hotspots by.
func fanoutTree(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), "import b\nimport c\n")
	writeFile(t, filepath.Join(root, "b.py"), "import c\n")
	writeFile(t, filepath.Join(root, "c.py"), "\n")
	return root
}

func TestRun_BuildsGraphAcrossWorkerPool(t *testing.T) {
	root := fanoutTree(t)

	g, stats, filesParsed, err := analyze.Run(analyze.Options{
		Root: root,
		Lang: discover.Python,
		Discover: discover.Options{
			Root: root,
			Lang: discover.Python,
		},
		Config:  parser.Config{ProjectRoot: root, PythonResolve: true},
		Workers: 2,
		Source:  analyze.FSSource{},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, filesParsed)
	assert.Equal(t, 0, stats.FilesSkipped)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.py"),
		filepath.Join(root, "b.py"),
		filepath.Join(root, "c.py"),
	}, g.Nodes())

	aPath := filepath.Join(root, "a.py")
	bPath := filepath.Join(root, "b.py")
	cPath := filepath.Join(root, "c.py")
	assert.Equal(t, 2, g.FanOut(aPath))
	assert.Equal(t, 1, g.FanOut(bPath))
	assert.Equal(t, 2, g.FanIn(cPath))
	assert.Equal(t, 0, g.FanIn(aPath))
	_ = bPath
}

func TestRun_IsDeterministicAcrossWorkerCounts(t *testing.T) {
	root := fanoutTree(t)

	run := func(workers int) []string {
		g, _, _, err := analyze.Run(analyze.Options{
			Root:     root,
			Lang:     discover.Python,
			Discover: discover.Options{Root: root, Lang: discover.Python},
			Config:   parser.Config{ProjectRoot: root, PythonResolve: true},
			Workers:  workers,
			Source:   analyze.FSSource{},
		})
		require.NoError(t, err)
		edges := g.Edges()
		out := make([]string, 0, len(edges))
		for _, e := range edges {
			out = append(out, e.Source+"->"+e.Target)
		}
		return out
	}

	single := run(1)
	parallel := run(4)
	assert.Equal(t, single, parallel)
}

func TestToAnalysisResult_TopTruncatesHotspotsAfterSorting(t *testing.T) {
	root := fanoutTree(t)

	g, stats, filesParsed, err := analyze.Run(analyze.Options{
		Root:     root,
		Lang:     discover.Python,
		Discover: discover.Options{Root: root, Lang: discover.Python},
		Config:   parser.Config{ProjectRoot: root, PythonResolve: true},
		Workers:  2,
		Source:   analyze.FSSource{},
	})
	require.NoError(t, err)

	full := analyze.ToAnalysisResult(discover.Python, root, g, stats, 10, filesParsed, config.Rules{}, insights.NoopProvider{}, 0)
	require.Len(t, full.Hotspots, 3)
	assert.Equal(t, filepath.Join(root, "a.py"), full.Hotspots[0].CanonicalPath, "highest fan-out should sort first")

	truncated := analyze.ToAnalysisResult(discover.Python, root, g, stats, 10, filesParsed, config.Rules{}, insights.NoopProvider{}, 1)
	require.Len(t, truncated.Hotspots, 1)
	assert.Equal(t, full.Hotspots[0].CanonicalPath, truncated.Hotspots[0].CanonicalPath)
}

func TestToAnalysisResult_NilProviderDefaultsToNoInsights(t *testing.T) {
	root := fanoutTree(t)
	g, stats, filesParsed, err := analyze.Run(analyze.Options{
		Root:     root,
		Lang:     discover.Python,
		Discover: discover.Options{Root: root, Lang: discover.Python},
		Config:   parser.Config{ProjectRoot: root, PythonResolve: true},
		Workers:  1,
		Source:   analyze.FSSource{},
	})
	require.NoError(t, err)

	result := analyze.ToAnalysisResult(discover.Python, root, g, stats, 0, filesParsed, config.Rules{}, nil, 0)
	assert.Empty(t, result.Insights)
	assert.Equal(t, 0.0, result.Metadata.ModulesPerSecond, "elapsedMs of 0 should not divide by zero")
}

// brokenSource always fails, exercising the parseFailed/files_skipped path
// without needing an actually-malformed source file.
type brokenSource struct{}

func (brokenSource) ReadFile(path string) ([]byte, error) {
	return nil, os.ErrNotExist
}

func TestRun_UnreadableFileCountsAsSkipped(t *testing.T) {
	root := fanoutTree(t)

	_, stats, filesParsed, err := analyze.Run(analyze.Options{
		Root:     root,
		Lang:     discover.Python,
		Discover: discover.Options{Root: root, Lang: discover.Python},
		Config:   parser.Config{ProjectRoot: root, PythonResolve: true},
		Workers:  2,
		Source:   brokenSource{},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FilesSkipped)
	assert.Equal(t, 0, filesParsed)
}

func TestTreeRelativeSource_ConvertsAbsolutePathToRepoRelative(t *testing.T) {
	root := t.TempDir()
	var seen string
	src := analyze.TreeRelativeSource{
		Root: root,
		Source: recordingSource{record: func(p string) { seen = p }},
	}
	_, err := src.ReadFile(filepath.Join(root, "pkg", "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, "pkg/mod.py", seen)
}

type recordingSource struct {
	record func(string)
}

func (r recordingSource) ReadFile(path string) ([]byte, error) {
	r.record(path)
	return []byte(""), nil
}
