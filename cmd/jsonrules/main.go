// Jsonrules validates JSON and YAML data against named rulesets of rule
// documents.
//
// Usage:
//
//	# Validate a data file against the "person" ruleset
//	jsonrules validate --ruleset person --data person.json
//
//	# Check every configured ruleset for mistakes
//	jsonrules lint
//
//	# Serve validations over HTTP with hot reload
//	jsonrules serve --config /etc/jsonrules/jsonrules.yaml
//
//	# Show the most recent failed runs
//	jsonrules history --ruleset person --failed
//
//	# Show version information
//	jsonrules version
package main

func main() {
	Execute()
}
