// Package server exposes rulesets over HTTP.
//
// # Endpoints
//
//	POST /v1/rulesets/{name}/validate   validate the request body
//	GET  /v1/rulesets                   list served rulesets
//	GET  /v1/rulesets/{name}            describe one ruleset
//	POST /v1/rulesets/{name}/reload     reload its documents
//	GET  /healthz, /readyz, /version    probes
//	GET  <metrics path>                 Prometheus metrics
//
// A validate call answers 200 when the data passes and 422 with the
// diagnostics when it does not. Unknown rulesets get 404 and bodies that
// are not valid JSON (or YAML, with a YAML content type) get 400.
//
// # Usage
//
//	srv := server.New(cfg, validators, collector, server.BuildInfo{Version: version}, logger)
//	if err := srv.Start(ctx); err != nil {
//		return err
//	}
//
// Start blocks until ctx is cancelled and then shuts down gracefully.
package server
