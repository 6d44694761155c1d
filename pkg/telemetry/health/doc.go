// Package health provides liveness and readiness probes.
//
// A Checker holds named CheckFuncs. Liveness only reports that the process
// is up; readiness runs every check with a timeout and reports 503 when any
// fails. RulesetCheck adapts a rule store into a check so that a failed hot
// reload shows up on /readyz.
//
//	checker := health.New(0)
//	checker.RegisterCheck("ruleset:person", health.RulesetCheck(store))
//	health.Register(mux, checker, version, commit, buildTime)
package health
