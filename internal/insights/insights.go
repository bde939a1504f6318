// Package insights defines the extension point the analysis pipeline calls
// through to produce the envelope's insights[] list. Rule evaluation and
// suggestion text are an out-of-scope collaborator (spec.md §1); this
// package only carries the interface and the no-op default so the core
// never has to know whether a renderer is plugged in.
package insights

import (
	"github.com/untangle/untangle/internal/config"
	"github.com/untangle/untangle/internal/graph"
	"github.com/untangle/untangle/internal/metrics"
	"github.com/untangle/untangle/internal/model"
)

// Provider evaluates a rule configuration against a computed analysis and
// returns the structured matches to attach to the envelope.
type Provider interface {
	Evaluate(g *graph.Graph, calc *metrics.Calculator, rules config.Rules) []model.Insight
}

// NoopProvider never reports an insight; it is the default wired into
// internal/analyze so an AnalysisResult always has a (possibly empty)
// insights field without the core depending on the out-of-scope renderer.
type NoopProvider struct{}

func (NoopProvider) Evaluate(*graph.Graph, *metrics.Calculator, config.Rules) []model.Insight {
	return nil
}
