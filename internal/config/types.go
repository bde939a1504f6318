// Package config implements the five-layer configuration resolver: built-in
// defaults, user config, project config, environment variables, and
// command-line overrides, merged with per-field provenance tracking.
package config

// Defaults holds the [defaults] section.
type Defaults struct {
	Lang         string `toml:"lang"`
	Format       string `toml:"format"`
	Quiet        bool   `toml:"quiet"`
	Top          int    `toml:"top"`
	IncludeTests bool   `toml:"include_tests"`
	NoInsights   bool   `toml:"no_insights"`
}

// Targeting holds the [targeting] section.
type Targeting struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type HighFanoutRule struct {
	Enabled           bool    `toml:"enabled"`
	MinFanout         int     `toml:"min_fanout"`
	RelativeToP90     bool    `toml:"relative_to_p90"`
	WarningMultiplier float64 `toml:"warning_multiplier"`
}

type GodModuleRule struct {
	Enabled       bool `toml:"enabled"`
	MinFanout     int  `toml:"min_fanout"`
	MinFanin      int  `toml:"min_fanin"`
	RelativeToP90 bool `toml:"relative_to_p90"`
}

type CircularDependencyRule struct {
	Enabled        bool `toml:"enabled"`
	WarningMinSize int  `toml:"warning_min_size"`
}

type DeepChainRule struct {
	Enabled            bool    `toml:"enabled"`
	AbsoluteDepth      int     `toml:"absolute_depth"`
	RelativeMultiplier float64 `toml:"relative_multiplier"`
	RelativeMinDepth   int     `toml:"relative_min_depth"`
}

type HighEntropyRule struct {
	Enabled   bool    `toml:"enabled"`
	MinEntropy float64 `toml:"min_entropy"`
	MinFanout  int     `toml:"min_fanout"`
}

// Rules holds every [rules.<name>] sub-record.
type Rules struct {
	HighFanout         HighFanoutRule         `toml:"high_fanout"`
	GodModule          GodModuleRule          `toml:"god_module"`
	CircularDependency CircularDependencyRule `toml:"circular_dependency"`
	DeepChain          DeepChainRule          `toml:"deep_chain"`
	HighEntropy        HighEntropyRule        `toml:"high_entropy"`
}

// FailOn holds the [fail_on] section.
type FailOn struct {
	Conditions []string `toml:"conditions"`
}

type GoLangConfig struct {
	ExcludeStdlib bool `toml:"exclude_stdlib"`
}

type PythonConfig struct {
	ResolveRelative bool `toml:"resolve_relative"`
}

type RubyConfig struct {
	Zeitwerk bool     `toml:"zeitwerk"`
	LoadPath []string `toml:"load_path"`
}

// Performance holds the [performance] section (supplemented: generalizes
// the teacher's hardcoded runtime.NumCPU() worker count into a config
// field; 0 means auto-detect).
type Performance struct {
	Workers int `toml:"workers"`
}

// Override is one [overrides."<glob>"] entry. Unspecified fields in an
// override revert to Rules' built-in defaults, never to a lower layer's
// accumulated value, per spec §4.7.
type Override struct {
	Glob     string `toml:"-"`
	Disabled bool   `toml:"disabled"`
	Rules    Rules  `toml:"rules"`
}

// Config is the fully resolved configuration the rest of untangle consumes.
type Config struct {
	Defaults    Defaults     `toml:"defaults"`
	Targeting   Targeting    `toml:"targeting"`
	Rules       Rules        `toml:"rules"`
	FailOn      FailOn       `toml:"fail_on"`
	Go          GoLangConfig `toml:"go"`
	Python      PythonConfig `toml:"python"`
	Ruby        RubyConfig   `toml:"ruby"`
	Performance Performance  `toml:"performance"`
	Overrides   []Override   `toml:"-"`
}

// Provenance maps a dotted leaf-field path to the layer name that supplied
// its final value ("default", "user", "project", "env", "cli").
type Provenance map[string]string

// MatchOverride returns the first override (in accumulation order) whose
// glob matches modulePath, and whether one matched.
func (c *Config) MatchOverride(modulePath string, matches func(glob, path string) bool) (Override, bool) {
	for _, o := range c.Overrides {
		if matches(o.Glob, modulePath) {
			return o, true
		}
	}
	return Override{}, false
}

// RulesFor returns the rule set that applies to modulePath: the matching
// override's rules (or a disabled Rules value, if the override disables
// insights for this path) when one matches, otherwise c.Rules.
func (c *Config) RulesFor(modulePath string, matches func(glob, path string) bool) (rules Rules, disabled bool) {
	o, ok := c.MatchOverride(modulePath, matches)
	if !ok {
		return c.Rules, false
	}
	if o.Disabled {
		return Rules{}, true
	}
	return o.Rules, false
}
