package config

import "testing"

func TestResolve_OverrideRevertsToBuiltinDefaultsNotProjectLayer(t *testing.T) {
	// spec §8 scenario 7: default min_fanout=20 (built-in); project sets it
	// to 10; an override for src/legacy/** sets it to 40. The override's
	// other high_fanout fields must come from the built-in defaults, not
	// from the project layer's 10.
	r := NewResolver()

	projectMinFanout := 10
	r.Add(Layer{Name: "project", Doc: layerDocument{
		Rules: layerRules{
			HighFanout: &layerHighFanout{MinFanout: &projectMinFanout},
		},
	}})

	overrideMinFanout := 40
	r.Add(Layer{Name: "project", Doc: layerDocument{
		Overrides: map[string]layerOverride{
			"src/legacy/**": {
				Rules: &layerRules{
					HighFanout: &layerHighFanout{MinFanout: &overrideMinFanout},
				},
			},
		},
	}})

	cfg, prov := r.Resolve()

	if cfg.Rules.HighFanout.MinFanout != 10 {
		t.Fatalf("expected project-level min_fanout=10, got %d", cfg.Rules.HighFanout.MinFanout)
	}
	if prov["rules.high_fanout.min_fanout"] != "project" {
		t.Fatalf("expected provenance=project, got %s", prov["rules.high_fanout.min_fanout"])
	}

	if len(cfg.Overrides) != 1 {
		t.Fatalf("expected one override, got %d", len(cfg.Overrides))
	}
	ov := cfg.Overrides[0]
	if ov.Glob != "src/legacy/**" {
		t.Fatalf("unexpected glob: %s", ov.Glob)
	}
	if ov.Rules.HighFanout.MinFanout != 40 {
		t.Fatalf("expected override min_fanout=40, got %d", ov.Rules.HighFanout.MinFanout)
	}
	// RelativeToP90 was not specified by the override; it must come from
	// the built-in default (true), not from the project layer's value.
	if !ov.Rules.HighFanout.RelativeToP90 {
		t.Fatalf("expected override to fall back to built-in relative_to_p90=true")
	}
}

func TestResolve_IsIdempotent(t *testing.T) {
	build := func() (Config, Provenance) {
		r := NewResolver()
		top := 15
		r.Add(Layer{Name: "cli", Doc: layerDocument{Defaults: layerDefaults{Top: &top}}})
		return r.Resolve()
	}

	cfg1, prov1 := build()
	cfg2, prov2 := build()

	if cfg1.Defaults.Top != cfg2.Defaults.Top {
		t.Fatalf("expected identical resolution, got %d vs %d", cfg1.Defaults.Top, cfg2.Defaults.Top)
	}
	if len(prov1) != len(prov2) {
		t.Fatalf("expected identical provenance maps, got %d vs %d entries", len(prov1), len(prov2))
	}
	for k, v := range prov1 {
		if prov2[k] != v {
			t.Fatalf("provenance mismatch for %s: %s vs %s", k, v, prov2[k])
		}
	}
}

func TestResolve_ListFieldsReplaceNotConcatenate(t *testing.T) {
	r := NewResolver()
	r.Add(Layer{Name: "user", Doc: layerDocument{
		Targeting: layerTargeting{Exclude: &[]string{"a/**", "b/**"}},
	}})
	r.Add(Layer{Name: "project", Doc: layerDocument{
		Targeting: layerTargeting{Exclude: &[]string{"c/**"}},
	}})

	cfg, prov := r.Resolve()
	if len(cfg.Targeting.Exclude) != 1 || cfg.Targeting.Exclude[0] != "c/**" {
		t.Fatalf("expected exclude list to be replaced wholesale, got %v", cfg.Targeting.Exclude)
	}
	if prov["targeting.exclude"] != "project" {
		t.Fatalf("expected provenance=project, got %s", prov["targeting.exclude"])
	}
}

func TestMigrateLegacy_FlatSchemaMigratesToNestedLayer(t *testing.T) {
	raw := []byte(`
include = ["src/**"]
exclude = ["vendor/**"]
threshold_fanout = 12
threshold_entropy = 3.5
`)
	doc, migrated, err := MigrateLegacy(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !migrated {
		t.Fatalf("expected legacy schema to be detected")
	}
	if doc.Targeting.Include == nil || (*doc.Targeting.Include)[0] != "src/**" {
		t.Fatalf("expected include migrated, got %v", doc.Targeting.Include)
	}
	if doc.Targeting.Exclude == nil || (*doc.Targeting.Exclude)[0] != "vendor/**" {
		t.Fatalf("expected exclude migrated, got %v", doc.Targeting.Exclude)
	}
	if doc.Rules.HighFanout == nil || *doc.Rules.HighFanout.MinFanout != 12 {
		t.Fatalf("expected threshold_fanout migrated to rules.high_fanout.min_fanout")
	}
	if doc.Rules.HighEntropy == nil || *doc.Rules.HighEntropy.MinEntropy != 3.5 {
		t.Fatalf("expected threshold_entropy migrated to rules.high_entropy.min_entropy")
	}
}

func TestMigrateLegacy_NestedSchemaIsNotMigrated(t *testing.T) {
	raw := []byte(`
[targeting]
exclude = ["vendor/**"]
`)
	_, migrated, err := MigrateLegacy(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if migrated {
		t.Fatalf("expected current nested schema to not be treated as legacy")
	}
}

func TestLoadLayer_MissingFileIsEmptyLayerNotError(t *testing.T) {
	l, err := LoadLayer("user", "/nonexistent/path/untangle.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Name != "user" {
		t.Fatalf("expected layer name preserved, got %s", l.Name)
	}
}

func TestRulesFor_DisabledOverrideSuppressesRules(t *testing.T) {
	cfg := Config{
		Rules: defaultRules(),
		Overrides: []Override{
			{Glob: "generated/**", Disabled: true},
		},
	}
	matches := func(glob, path string) bool { return glob == "generated/**" && path == "generated/foo" }

	rules, disabled := cfg.RulesFor("generated/foo", matches)
	if !disabled {
		t.Fatalf("expected disabled=true")
	}
	if rules.HighFanout.Enabled {
		t.Fatalf("expected zero-value rules for disabled override")
	}

	rules, disabled = cfg.RulesFor("other/foo", matches)
	if disabled {
		t.Fatalf("expected disabled=false for non-matching path")
	}
	if rules.HighFanout.MinFanout != cfg.Rules.HighFanout.MinFanout {
		t.Fatalf("expected fallback to top-level rules")
	}
}
