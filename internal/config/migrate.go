package config

import "github.com/pelletier/go-toml/v2"

// legacyDocument is the pre-layered flat schema: top-level include/exclude
// instead of a [targeting] table, and flat threshold_fanout/threshold_entropy
// instead of [rules.high_fanout]/[rules.high_entropy]. Grounded on
// standardbeagle-lci's own Config, which keeps Include/Exclude as top-level
// fields rather than nested under a sub-section.
type legacyDocument struct {
	Include         []string `toml:"include"`
	Exclude         []string `toml:"exclude"`
	ThresholdFanout *int     `toml:"threshold_fanout"`
	ThresholdEntropy *float64 `toml:"threshold_entropy"`
	Lang            string   `toml:"lang"`
	Format          string   `toml:"format"`
}

// isLegacy reports whether raw TOML looks like the flat legacy schema
// rather than the current nested one: it has a top-level include/exclude
// or threshold_fanout/threshold_entropy key and no [targeting] or [rules]
// table.
func isLegacy(raw map[string]any) bool {
	_, hasTargeting := raw["targeting"]
	_, hasRules := raw["rules"]
	if hasTargeting || hasRules {
		return false
	}
	_, hasInclude := raw["include"]
	_, hasExclude := raw["exclude"]
	_, hasFanout := raw["threshold_fanout"]
	_, hasEntropy := raw["threshold_entropy"]
	return hasInclude || hasExclude || hasFanout || hasEntropy
}

// MigrateLegacy decodes raw TOML bytes, and if they match the legacy flat
// schema, transparently rewrites them into the current nested layerDocument
// shape before handing back to the caller. Returns migrated=false when the input
// did not need migration, so the caller can fall back to decoding it
// directly as a layerDocument.
func MigrateLegacy(data []byte) (doc layerDocument, migrated bool, err error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return layerDocument{}, false, err
	}
	if !isLegacy(raw) {
		return layerDocument{}, false, nil
	}

	var legacy legacyDocument
	if err := toml.Unmarshal(data, &legacy); err != nil {
		return layerDocument{}, false, err
	}

	doc = layerDocument{}
	if legacy.Include != nil {
		doc.Targeting.Include = &legacy.Include
	}
	if legacy.Exclude != nil {
		doc.Targeting.Exclude = &legacy.Exclude
	}
	if legacy.Lang != "" {
		doc.Defaults.Lang = &legacy.Lang
	}
	if legacy.Format != "" {
		doc.Defaults.Format = &legacy.Format
	}
	if legacy.ThresholdFanout != nil {
		doc.Rules.HighFanout = &layerHighFanout{MinFanout: legacy.ThresholdFanout}
	}
	if legacy.ThresholdEntropy != nil {
		doc.Rules.HighEntropy = &layerHighEntropy{MinEntropy: legacy.ThresholdEntropy}
	}
	return doc, true, nil
}
