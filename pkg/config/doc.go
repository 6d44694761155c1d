// Package config provides configuration management for jsonrules.
//
// Configuration is read from a YAML file, layered over defaults and
// optionally over environment variables:
//
//	rulesets:
//	  person:
//	    base: rules/person/base.json
//	    Addr: rules/person/addr.json
//	validation:
//	  root_document: base
//	  max_depth: 32
//	server:
//	  listen_address: 127.0.0.1:8088
//
// Relative document locations resolve against rules_dir, which defaults to
// the directory holding the configuration file.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention JSONRULES_SECTION_FIELD,
// for example JSONRULES_SERVER_LISTEN_ADDRESS or
// JSONRULES_TELEMETRY_LOGGING_LEVEL. They always take precedence over the
// file. Rulesets can only be declared in the file.
//
// # Singleton Pattern
//
//	cfg, err := config.LoadConfigWithEnvOverrides("jsonrules.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	config.SetConfig(cfg)
//	// later, anywhere in the process
//	cfg = config.GetConfig()
//
// For testing, prefer passing explicit Config instances.
package config
