package config

// Every field in a layer document is a pointer so a layer can express "this
// field was not specified here" as nil, distinguishing it from an
// explicit zero value. This mirrors the optional-override idiom used
// throughout the corpus's layered-config code, generalized from viper's
// single-key replace to per-field provenance.

type layerDefaults struct {
	Lang         *string `toml:"lang"`
	Format       *string `toml:"format"`
	Quiet        *bool   `toml:"quiet"`
	Top          *int    `toml:"top"`
	IncludeTests *bool   `toml:"include_tests"`
	NoInsights   *bool   `toml:"no_insights"`
}

type layerTargeting struct {
	Include *[]string `toml:"include"`
	Exclude *[]string `toml:"exclude"`
}

type layerHighFanout struct {
	Enabled           *bool    `toml:"enabled"`
	MinFanout         *int     `toml:"min_fanout"`
	RelativeToP90     *bool    `toml:"relative_to_p90"`
	WarningMultiplier *float64 `toml:"warning_multiplier"`
}

type layerGodModule struct {
	Enabled       *bool `toml:"enabled"`
	MinFanout     *int  `toml:"min_fanout"`
	MinFanin      *int  `toml:"min_fanin"`
	RelativeToP90 *bool `toml:"relative_to_p90"`
}

type layerCircularDependency struct {
	Enabled        *bool `toml:"enabled"`
	WarningMinSize *int  `toml:"warning_min_size"`
}

type layerDeepChain struct {
	Enabled            *bool    `toml:"enabled"`
	AbsoluteDepth      *int     `toml:"absolute_depth"`
	RelativeMultiplier *float64 `toml:"relative_multiplier"`
	RelativeMinDepth   *int     `toml:"relative_min_depth"`
}

type layerHighEntropy struct {
	Enabled    *bool    `toml:"enabled"`
	MinEntropy *float64 `toml:"min_entropy"`
	MinFanout  *int     `toml:"min_fanout"`
}

type layerRules struct {
	HighFanout         *layerHighFanout         `toml:"high_fanout"`
	GodModule          *layerGodModule          `toml:"god_module"`
	CircularDependency *layerCircularDependency `toml:"circular_dependency"`
	DeepChain          *layerDeepChain          `toml:"deep_chain"`
	HighEntropy        *layerHighEntropy        `toml:"high_entropy"`
}

type layerFailOn struct {
	Conditions *[]string `toml:"conditions"`
}

type layerGo struct {
	ExcludeStdlib *bool `toml:"exclude_stdlib"`
}

type layerPython struct {
	ResolveRelative *bool `toml:"resolve_relative"`
}

type layerRuby struct {
	Zeitwerk *bool     `toml:"zeitwerk"`
	LoadPath *[]string `toml:"load_path"`
}

type layerPerformance struct {
	Workers *int `toml:"workers"`
}

type layerOverride struct {
	Disabled *bool       `toml:"disabled"`
	Rules    *layerRules `toml:"rules"`
}

// layerDocument is what one layer's TOML document decodes into.
type layerDocument struct {
	Defaults    layerDefaults            `toml:"defaults"`
	Targeting   layerTargeting           `toml:"targeting"`
	Rules       layerRules               `toml:"rules"`
	FailOn      layerFailOn              `toml:"fail_on"`
	Go          layerGo                  `toml:"go"`
	Python      layerPython              `toml:"python"`
	Ruby        layerRuby                `toml:"ruby"`
	Performance layerPerformance         `toml:"performance"`
	Overrides   map[string]layerOverride `toml:"overrides"`
}

// Layer is one named configuration source ready to be folded into a
// Resolver, in priority order (lowest first).
type Layer struct {
	Name string
	Doc  layerDocument
}
