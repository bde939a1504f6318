package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/untangle/untangle/internal/analyze"
	"github.com/untangle/untangle/internal/diff"
	"github.com/untangle/untangle/internal/discover"
	"github.com/untangle/untangle/internal/metrics"
	"github.com/untangle/untangle/internal/parser"
	"github.com/untangle/untangle/internal/revision"
)

var (
	diffBase string
	diffHead string
	diffOut  string
)

// diffCmd has no teacher equivalent (philtographer only ever analyzes one
// checkout); it is grounded on analyzeCmd's shape plus internal/revision's
// blob-reading Reader, run twice against the same analyze.Run pipeline.
var diffCmd = &cobra.Command{
	Use:   "diff [path]",
	Short: "Compare a project's dependency graph across two revisions and gate on structural regressions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		absRoot, err := filepath.Abs(rootArg(args))
		if err != nil {
			return err
		}

		cfg, _, err := resolveConfig(cmd, absRoot)
		if err != nil {
			return err
		}

		lang := discover.Language(cfg.Defaults.Lang)
		if lang == "" {
			lang, err = discover.AutoDetect(absRoot)
			if err != nil {
				return err
			}
		}

		reader, err := revision.Open(absRoot)
		if err != nil {
			return err
		}

		parserCfg := parser.Config{
			ProjectRoot:     absRoot,
			GoExcludeStdlib: cfg.Go.ExcludeStdlib,
			PythonResolve:   cfg.Python.ResolveRelative,
			RubyZeitwerk:    cfg.Ruby.Zeitwerk,
			RubyLoadPath:    cfg.Ruby.LoadPath,
		}
		discoverOpts := discover.Options{
			Lang:         lang,
			Include:      cfg.Targeting.Include,
			Exclude:      cfg.Targeting.Exclude,
			IncludeTests: cfg.Defaults.IncludeTests,
		}

		if !cfg.Defaults.Quiet {
			fmt.Fprintf(os.Stderr, "untangle: diffing %s..%s in %s as %s\n", diffBase, diffHead, absRoot, lang)
		}

		logger := newLogger(cfg.Defaults.Quiet)
		start := time.Now()
		baseAnalysis, baseFilesParsed, err := analyzeRevision(reader, diffBase, absRoot, lang, discoverOpts, parserCfg, cfg.Performance.Workers, logger)
		if err != nil {
			return fmt.Errorf("analyzing base %q: %w", diffBase, err)
		}
		headAnalysis, headFilesParsed, err := analyzeRevision(reader, diffHead, absRoot, lang, discoverOpts, parserCfg, cfg.Performance.Workers, logger)
		if err != nil {
			return fmt.Errorf("analyzing head %q: %w", diffHead, err)
		}
		elapsed := time.Since(start).Milliseconds()

		totalFiles := baseFilesParsed + headFilesParsed
		modulesPerSecond := 0.0
		if elapsed > 0 {
			modulesPerSecond = float64(totalFiles) / (float64(elapsed) / 1000.0)
		}

		result := diff.Compute(diffBase, diffHead, baseAnalysis, headAnalysis, cfg.FailOn.Conditions, elapsed, modulesPerSecond)
		if err := writeJSON(result, diffOut); err != nil {
			return err
		}
		if result.Verdict == "fail" {
			os.Exit(1)
		}
		return nil
	},
}

// analyzeRevision runs the shared analyze.Run pipeline against one ref's
// file tree, reading content from git blobs via a TreeRelativeSource.
//
// Import resolution for both base and head sides still probes the live
// on-disk project root for manifest files and module layout (go.mod,
// Cargo.toml, Python package directories, Ruby load-path files), since there is no working tree checked out
// at either historical revision and per-language Resolve relies on os.Stat.
// This holds as long as manifest location and directory layout don't change
// between the two revisions being diffed, the common case for a CI gate
// comparing nearby commits; only file content is read per-revision, via the
// reader. Canonical node identity (absolute paths under the live root) is
// therefore stable across base and head, so graph deltas stay meaningful.
func analyzeRevision(reader *revision.Reader, ref, root string, lang discover.Language, discoverOpts discover.Options, parserCfg parser.Config, workers int, logger *zap.Logger) (diff.Analysis, int, error) {
	paths, err := reader.ListFiles(ref)
	if err != nil {
		return diff.Analysis{}, 0, err
	}
	filtered, err := discover.FilterPaths(paths, discoverOpts)
	if err != nil {
		return diff.Analysis{}, 0, err
	}

	absFiles := make([]string, 0, len(filtered))
	for _, rel := range filtered {
		absFiles = append(absFiles, filepath.Join(root, filepath.FromSlash(rel)))
	}

	g, _, filesParsed, err := analyze.Run(analyze.Options{
		Root:    root,
		Lang:    lang,
		Files:   absFiles,
		Config:  parserCfg,
		Workers: workers,
		Source:  analyze.TreeRelativeSource{Root: root, Source: revision.Source{Reader: reader, Ref: ref}},
		Logger:  logger,
	})
	if err != nil {
		return diff.Analysis{}, 0, err
	}

	calc := metrics.NewCalculator(g)
	return diff.Analysis{Graph: g, Metrics: calc, Summary: calc.Summary()}, filesParsed, nil
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffBase, "base", "", "base revision")
	diffCmd.Flags().StringVar(&diffHead, "head", "HEAD", "head revision")
	diffCmd.Flags().StringVar(&diffOut, "out", "", "write the result to a file instead of stdout")
	_ = diffCmd.MarkFlagRequired("base")
}
