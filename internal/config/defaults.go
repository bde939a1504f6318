package config

func ptr[T any](v T) *T { return &v }

// builtinLayer is the built-in-defaults layer: every field is specified so
// every leaf always has a value and a "default" provenance entry before any
// other layer is applied.
func builtinLayer() Layer {
	return Layer{
		Name: "default",
		Doc: layerDocument{
			Defaults: layerDefaults{
				Lang:         ptr(""),
				Format:       ptr("json"),
				Quiet:        ptr(false),
				Top:          ptr(0),
				IncludeTests: ptr(false),
				NoInsights:   ptr(false),
			},
			Targeting: layerTargeting{
				Include: ptr([]string{}),
				Exclude: ptr([]string{}),
			},
			Rules: layerRules{
				HighFanout: &layerHighFanout{
					Enabled: ptr(true), MinFanout: ptr(20),
					RelativeToP90: ptr(true), WarningMultiplier: ptr(1.5),
				},
				GodModule: &layerGodModule{
					Enabled: ptr(true), MinFanout: ptr(15), MinFanin: ptr(15),
					RelativeToP90: ptr(true),
				},
				CircularDependency: &layerCircularDependency{
					Enabled: ptr(true), WarningMinSize: ptr(2),
				},
				DeepChain: &layerDeepChain{
					Enabled: ptr(true), AbsoluteDepth: ptr(10),
					RelativeMultiplier: ptr(2.0), RelativeMinDepth: ptr(4),
				},
				HighEntropy: &layerHighEntropy{
					Enabled: ptr(true), MinEntropy: ptr(2.0), MinFanout: ptr(4),
				},
			},
			FailOn: layerFailOn{Conditions: ptr([]string{})},
			Go:     layerGo{ExcludeStdlib: ptr(true)},
			Python: layerPython{ResolveRelative: ptr(true)},
			Ruby:   layerRuby{Zeitwerk: ptr(false), LoadPath: ptr([]string{})},
			Performance: layerPerformance{
				Workers: ptr(0),
			},
		},
	}
}

// defaultRules is the built-in Rules value overrides revert to for any
// field they do not themselves specify.
func defaultRules() Rules {
	d := builtinLayer().Doc.Rules
	var r Rules
	applyRuleGroup(&r, d, nil, "", "default")
	return r
}
