package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/untangle/untangle/internal/analyze"
	"github.com/untangle/untangle/internal/discover"
	"github.com/untangle/untangle/internal/insights"
	"github.com/untangle/untangle/internal/parser"
)

var (
	analyzeOut      string
	analyzeImpacted string
)

// analyzeCmd wires discover -> analyze.Run -> analyze.ToAnalysisResult
// behind a single subcommand, mirroring the teacher's scanCmd shape (pull
// merged config, run one unit of work, encode JSON to stdout or --out).
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Build a dependency graph for one revision and report its complexity metrics",
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

		if !cfg.Defaults.Quiet {
			fmt.Fprintf(os.Stderr, "untangle: analyzing %s as %s\n", absRoot, lang)
		}

		start := time.Now()
		g, stats, filesParsed, err := analyze.Run(analyze.Options{
			Root: absRoot,
			Lang: lang,
			Discover: discover.Options{
				Root:         absRoot,
				Lang:         lang,
				Include:      cfg.Targeting.Include,
				Exclude:      cfg.Targeting.Exclude,
				IncludeTests: cfg.Defaults.IncludeTests,
				IgnoreFile:   filepath.Join(absRoot, ".untangleignore"),
			},
			Config: parser.Config{
				ProjectRoot:     absRoot,
				GoExcludeStdlib: cfg.Go.ExcludeStdlib,
				PythonResolve:   cfg.Python.ResolveRelative,
				RubyZeitwerk:    cfg.Ruby.Zeitwerk,
				RubyLoadPath:    cfg.Ruby.LoadPath,
			},
			Workers: cfg.Performance.Workers,
			Source:  analyze.FSSource{},
			Logger:  newLogger(cfg.Defaults.Quiet),
		})
		if err != nil {
			return err
		}
		elapsed := time.Since(start).Milliseconds()

		if analyzeImpacted != "" {
			target, err := filepath.Abs(analyzeImpacted)
			if err != nil {
				return err
			}
			return writeJSON(g.Impacted(target), analyzeOut)
		}

		result := analyze.ToAnalysisResult(lang, absRoot, g, stats, elapsed, filesParsed, cfg.Rules, insights.NoopProvider{}, cfg.Defaults.Top)
		return writeJSON(result, analyzeOut)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write the result to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeImpacted, "impacted", "", "print every module that transitively depends on this path instead of the full analysis envelope")
}

// rootArg returns the single positional path argument, defaulting to ".".
func rootArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

// writeJSON encodes v as indented JSON to out, or to stdout when out is
// empty, matching the teacher's scan/components output pattern.
func writeJSON(v any, out string) error {
	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	}
	return nil
}
