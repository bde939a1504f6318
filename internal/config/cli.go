package config

import (
	"os"
	"strconv"
	"strings"
)

// envBinding maps an UNTANGLE_-prefixed environment variable to a setter on
// a layerDocument, mirroring the small, explicit flag-to-field bindings the
// teacher's cobra/viper setup uses rather than a generic reflection-based
// scan (spec §4.7 fixes the env var names; viper's automatic env binding
// doesn't know how to target a pointer-optional leaf, so untangle reads
// these directly with os.LookupEnv, only delegating un-layered scalar
// binding to viper elsewhere).
var envBindings = map[string]func(*layerDocument, string){
	"UNTANGLE_LANG":       func(d *layerDocument, v string) { d.Defaults.Lang = strPtr(v) },
	"UNTANGLE_FORMAT":     func(d *layerDocument, v string) { d.Defaults.Format = strPtr(v) },
	"UNTANGLE_QUIET":      func(d *layerDocument, v string) { d.Defaults.Quiet = boolPtr(v) },
	"UNTANGLE_TOP":        func(d *layerDocument, v string) { d.Defaults.Top = intPtr(v) },
	"UNTANGLE_FAIL_ON":    func(d *layerDocument, v string) { d.FailOn.Conditions = listPtr(v) },
	"UNTANGLE_WORKERS":    func(d *layerDocument, v string) { d.Performance.Workers = intPtr(v) },
	"UNTANGLE_EXCLUDE":    func(d *layerDocument, v string) { d.Targeting.Exclude = listPtr(v) },
	"UNTANGLE_INCLUDE":    func(d *layerDocument, v string) { d.Targeting.Include = listPtr(v) },
}

// EnvLayer builds the "env" layer by reading whichever UNTANGLE_* variables
// are actually set in the process environment; unset variables leave their
// field nil so they don't shadow lower layers.
func EnvLayer() Layer {
	doc := layerDocument{}
	for name, bind := range envBindings {
		if v, ok := os.LookupEnv(name); ok {
			bind(&doc, v)
		}
	}
	return Layer{Name: "env", Doc: doc}
}

// CLIFlags is the minimal set of flag values cmd/untangle collects; a field
// is applied only when Set reports it was explicitly passed, so an unset
// flag never shadows a lower layer with its zero value.
type CLIFlags struct {
	Lang, Format          string
	Quiet, IncludeTests   bool
	Top                   int
	FailOn                []string
	Workers               int
	Exclude, Include      []string
	Set                   map[string]bool
}

// CLILayer builds the highest-priority "cli" layer from explicitly-set
// command-line flags.
func CLILayer(f CLIFlags) Layer {
	doc := layerDocument{}
	if f.Set["lang"] {
		doc.Defaults.Lang = &f.Lang
	}
	if f.Set["format"] {
		doc.Defaults.Format = &f.Format
	}
	if f.Set["quiet"] {
		doc.Defaults.Quiet = &f.Quiet
	}
	if f.Set["include-tests"] {
		doc.Defaults.IncludeTests = &f.IncludeTests
	}
	if f.Set["top"] {
		doc.Defaults.Top = &f.Top
	}
	if f.Set["fail-on"] {
		doc.FailOn.Conditions = &f.FailOn
	}
	if f.Set["workers"] {
		doc.Performance.Workers = &f.Workers
	}
	if f.Set["exclude"] {
		doc.Targeting.Exclude = &f.Exclude
	}
	if f.Set["include"] {
		doc.Targeting.Include = &f.Include
	}
	return Layer{Name: "cli", Doc: doc}
}

func strPtr(v string) *string { return &v }

func boolPtr(v string) *bool {
	b, _ := strconv.ParseBool(v)
	return &b
}

func intPtr(v string) *int {
	n, err := strconv.Atoi(v)
	if err != nil {
		n = 0
	}
	return &n
}

func listPtr(v string) *[]string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return &out
}
