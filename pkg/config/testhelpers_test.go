package config

// MinimalConfig returns a valid configuration with a single ruleset.
func MinimalConfig() *Config {
	cfg := Default()
	cfg.Rulesets["person"] = map[string]string{"base": "rules/person/base.json"}
	return cfg
}
