package config

// Resolver folds an ordered stack of Layers (lowest priority first) into a
// final Config plus a Provenance map recording which layer supplied each
// leaf field's value. Layers are meant to be applied in this order:
// built-in defaults, user config, project config, environment variables,
// command-line flags (spec §4.7).
type Resolver struct {
	layers []Layer
}

// NewResolver seeds a Resolver with the built-in defaults layer so every
// leaf always has a value even if the caller supplies no further layers.
func NewResolver() *Resolver {
	return &Resolver{layers: []Layer{builtinLayer()}}
}

// Add appends a layer on top of the stack; later layers win.
func (r *Resolver) Add(l Layer) { r.layers = append(r.layers, l) }

// Resolve merges all layers and returns the final Config and its provenance.
func (r *Resolver) Resolve() (Config, Provenance) {
	prov := make(Provenance)
	var cfg Config

	applyDefaults(&cfg.Defaults, r.layers, prov)
	applyTargeting(&cfg.Targeting, r.layers, prov)

	for _, l := range r.layers {
		applyRuleGroup(&cfg.Rules, l.Doc.Rules, prov, "rules", l.Name)
	}

	applyFailOn(&cfg.FailOn, r.layers, prov)
	applyGo(&cfg.Go, r.layers, prov)
	applyPython(&cfg.Python, r.layers, prov)
	applyRuby(&cfg.Ruby, r.layers, prov)
	applyPerformance(&cfg.Performance, r.layers, prov)
	cfg.Overrides = applyOverrides(r.layers, prov)

	return cfg, prov
}

func applyDefaults(d *Defaults, layers []Layer, prov Provenance) {
	for _, l := range layers {
		ld := l.Doc.Defaults
		if ld.Lang != nil {
			d.Lang = *ld.Lang
			prov["defaults.lang"] = l.Name
		}
		if ld.Format != nil {
			d.Format = *ld.Format
			prov["defaults.format"] = l.Name
		}
		if ld.Quiet != nil {
			d.Quiet = *ld.Quiet
			prov["defaults.quiet"] = l.Name
		}
		if ld.Top != nil {
			d.Top = *ld.Top
			prov["defaults.top"] = l.Name
		}
		if ld.IncludeTests != nil {
			d.IncludeTests = *ld.IncludeTests
			prov["defaults.include_tests"] = l.Name
		}
		if ld.NoInsights != nil {
			d.NoInsights = *ld.NoInsights
			prov["defaults.no_insights"] = l.Name
		}
	}
}

func applyTargeting(t *Targeting, layers []Layer, prov Provenance) {
	for _, l := range layers {
		lt := l.Doc.Targeting
		if lt.Include != nil {
			t.Include = *lt.Include
			prov["targeting.include"] = l.Name
		}
		if lt.Exclude != nil {
			t.Exclude = *lt.Exclude
			prov["targeting.exclude"] = l.Name
		}
	}
}

// applyRuleGroup merges one layer's rule fields into dst, field by field.
// prov may be nil (used by defaultRules() to compute the built-in baseline
// without wanting a provenance map). prefix is the dotted provenance
// path this group is nested under ("rules" or "overrides.<glob>.rules").
func applyRuleGroup(dst *Rules, src layerRules, prov Provenance, prefix string, layerName string) {
	mark := func(field string) {
		if prov != nil && prefix != "" {
			prov[prefix+"."+field] = layerName
		}
	}

	if hf := src.HighFanout; hf != nil {
		if hf.Enabled != nil {
			dst.HighFanout.Enabled = *hf.Enabled
			mark("high_fanout.enabled")
		}
		if hf.MinFanout != nil {
			dst.HighFanout.MinFanout = *hf.MinFanout
			mark("high_fanout.min_fanout")
		}
		if hf.RelativeToP90 != nil {
			dst.HighFanout.RelativeToP90 = *hf.RelativeToP90
			mark("high_fanout.relative_to_p90")
		}
		if hf.WarningMultiplier != nil {
			dst.HighFanout.WarningMultiplier = *hf.WarningMultiplier
			mark("high_fanout.warning_multiplier")
		}
	}
	if gm := src.GodModule; gm != nil {
		if gm.Enabled != nil {
			dst.GodModule.Enabled = *gm.Enabled
			mark("god_module.enabled")
		}
		if gm.MinFanout != nil {
			dst.GodModule.MinFanout = *gm.MinFanout
			mark("god_module.min_fanout")
		}
		if gm.MinFanin != nil {
			dst.GodModule.MinFanin = *gm.MinFanin
			mark("god_module.min_fanin")
		}
		if gm.RelativeToP90 != nil {
			dst.GodModule.RelativeToP90 = *gm.RelativeToP90
			mark("god_module.relative_to_p90")
		}
	}
	if cd := src.CircularDependency; cd != nil {
		if cd.Enabled != nil {
			dst.CircularDependency.Enabled = *cd.Enabled
			mark("circular_dependency.enabled")
		}
		if cd.WarningMinSize != nil {
			dst.CircularDependency.WarningMinSize = *cd.WarningMinSize
			mark("circular_dependency.warning_min_size")
		}
	}
	if dc := src.DeepChain; dc != nil {
		if dc.Enabled != nil {
			dst.DeepChain.Enabled = *dc.Enabled
			mark("deep_chain.enabled")
		}
		if dc.AbsoluteDepth != nil {
			dst.DeepChain.AbsoluteDepth = *dc.AbsoluteDepth
			mark("deep_chain.absolute_depth")
		}
		if dc.RelativeMultiplier != nil {
			dst.DeepChain.RelativeMultiplier = *dc.RelativeMultiplier
			mark("deep_chain.relative_multiplier")
		}
		if dc.RelativeMinDepth != nil {
			dst.DeepChain.RelativeMinDepth = *dc.RelativeMinDepth
			mark("deep_chain.relative_min_depth")
		}
	}
	if he := src.HighEntropy; he != nil {
		if he.Enabled != nil {
			dst.HighEntropy.Enabled = *he.Enabled
			mark("high_entropy.enabled")
		}
		if he.MinEntropy != nil {
			dst.HighEntropy.MinEntropy = *he.MinEntropy
			mark("high_entropy.min_entropy")
		}
		if he.MinFanout != nil {
			dst.HighEntropy.MinFanout = *he.MinFanout
			mark("high_entropy.min_fanout")
		}
	}
}

func applyFailOn(f *FailOn, layers []Layer, prov Provenance) {
	for _, l := range layers {
		if l.Doc.FailOn.Conditions != nil {
			f.Conditions = *l.Doc.FailOn.Conditions
			prov["fail_on.conditions"] = l.Name
		}
	}
}

func applyGo(g *GoLangConfig, layers []Layer, prov Provenance) {
	for _, l := range layers {
		if l.Doc.Go.ExcludeStdlib != nil {
			g.ExcludeStdlib = *l.Doc.Go.ExcludeStdlib
			prov["go.exclude_stdlib"] = l.Name
		}
	}
}

func applyPython(p *PythonConfig, layers []Layer, prov Provenance) {
	for _, l := range layers {
		if l.Doc.Python.ResolveRelative != nil {
			p.ResolveRelative = *l.Doc.Python.ResolveRelative
			prov["python.resolve_relative"] = l.Name
		}
	}
}

func applyRuby(rb *RubyConfig, layers []Layer, prov Provenance) {
	for _, l := range layers {
		if l.Doc.Ruby.Zeitwerk != nil {
			rb.Zeitwerk = *l.Doc.Ruby.Zeitwerk
			prov["ruby.zeitwerk"] = l.Name
		}
		if l.Doc.Ruby.LoadPath != nil {
			rb.LoadPath = *l.Doc.Ruby.LoadPath
			prov["ruby.load_path"] = l.Name
		}
	}
}

func applyPerformance(perf *Performance, layers []Layer, prov Provenance) {
	for _, l := range layers {
		if l.Doc.Performance.Workers != nil {
			perf.Workers = *l.Doc.Performance.Workers
			prov["performance.workers"] = l.Name
		}
	}
}

// applyOverrides implements spec §4.7's override semantics: each time any
// layer (re)declares an override for a glob, that override's final Rules
// is recomputed from the built-in rule defaults merged with only that
// layer's own fields for the glob — never with a lower layer's
// accumulated value for the same glob. The first layer to mention a glob
// fixes its position in the first-match-wins accumulation order.
func applyOverrides(layers []Layer, prov Provenance) []Override {
	order := make([]string, 0)
	seen := make(map[string]bool)
	resolved := make(map[string]Override)

	for _, l := range layers {
		for glob, lo := range l.Doc.Overrides {
			if !seen[glob] {
				seen[glob] = true
				order = append(order, glob)
			}

			ov := Override{Glob: glob, Rules: defaultRules()}
			if lo.Disabled != nil {
				ov.Disabled = *lo.Disabled
				prov["overrides."+glob+".disabled"] = l.Name
			}
			if lo.Rules != nil {
				applyRuleGroup(&ov.Rules, *lo.Rules, prov, "overrides."+glob+".rules", l.Name)
			}
			resolved[glob] = ov
			prov["overrides."+glob] = l.Name
		}
	}

	out := make([]Override, 0, len(order))
	for _, glob := range order {
		out = append(out, resolved[glob])
	}
	return out
}
