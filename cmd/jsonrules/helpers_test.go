package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// newTestCommand returns a command whose output is captured and whose
// stdin reads from stdin.
func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	return cmd, out
}

// useConfig points --config at path for the duration of the test.
func useConfig(t *testing.T, path string) {
	t.Helper()
	orig, origVerbose := cfgFile, verbose
	cfgFile, verbose = path, false
	t.Cleanup(func() {
		cfgFile, verbose = orig, origVerbose
	})
}

// writeAuditConfig writes a config serving the testdata rulesets with
// audit recording to a database in a temp directory.
func writeAuditConfig(t *testing.T) string {
	t.Helper()

	rulesDir, err := filepath.Abs("testdata")
	if err != nil {
		t.Fatalf("filepath.Abs() error = %v", err)
	}
	dir := t.TempDir()

	content := `rulesets:
  person:
    base: rules/person/base.json
    address: rules/person/address.json
rules_dir: ` + rulesDir + `
audit:
  enabled: true
  path: ` + filepath.Join(dir, "audit.db") + `
telemetry:
  logging:
    level: error
    format: text
`
	path := filepath.Join(dir, "jsonrules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}
