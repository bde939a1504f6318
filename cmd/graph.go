package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/untangle/untangle/internal/analyze"
	"github.com/untangle/untangle/internal/discover"
	"github.com/untangle/untangle/internal/graph"
	"github.com/untangle/untangle/internal/parser"
)

var (
	graphOut      string
	graphImpacted string
	graphIsolated bool
)

// graphCmd is a supplemented feature: a raw nodes+edges projection of the
// same graph analyze builds. It folds in the teacher's componentsCmd
// stdout/--out pattern and isolatedCmd's zero-degree query (adapted here
// into an --isolated flag over the live graph instead of a saved graph.json
// file), plus --impacted exposing graph.Graph.Impacted directly.
var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Project the raw dependency graph for one revision",
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

		g, _, _, err := analyze.Run(analyze.Options{
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

		if graphImpacted != "" {
			target, err := filepath.Abs(graphImpacted)
			if err != nil {
				return err
			}
			return writeJSON(g.Impacted(target), graphOut)
		}

		if graphIsolated {
			var out []string
			for _, n := range g.Nodes() {
				if g.FanOut(n) == 0 && g.FanIn(n) == 0 {
					out = append(out, n)
				}
			}
			return writeJSON(out, graphOut)
		}

		if cfg.Defaults.Format == "dot" {
			return writeDOT(g, graphOut)
		}

		return writeJSON(g, graphOut)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphOut, "out", "", "write the result to a file instead of stdout")
	graphCmd.Flags().StringVar(&graphImpacted, "impacted", "", "print every module that transitively depends on this path instead of the full graph")
	graphCmd.Flags().BoolVar(&graphIsolated, "isolated", false, "print modules with zero fan-in and zero fan-out instead of the full graph")
}

// writeDOT renders g as Graphviz, to out or stdout, matching writeJSON's
// stdout/--out convention.
func writeDOT(g *graph.Graph, out string) error {
	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := g.WriteDOT(w); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	}
	return nil
}
