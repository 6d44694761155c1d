package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"nocartorio/jsonrules/pkg/cli"
	"nocartorio/jsonrules/pkg/config"
	"nocartorio/jsonrules/pkg/rules/lint"
	"nocartorio/jsonrules/pkg/rules/store"
)

var lintFlags struct {
	ruleset string
	strict  bool
	format  string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check rulesets for mistakes",
	Long: `Check configured rulesets for mistakes the validator would silently
tolerate: malformed documents, unknown constraint names, dangling or cyclic
file references and documents the root never reaches.

Without --ruleset every configured ruleset is linted. Warnings only fail the
command in --strict mode.

Examples:
  # Lint every ruleset
  jsonrules lint

  # Lint one ruleset, treating warnings as errors
  jsonrules lint --ruleset person --strict

  # Output results as CSV
  jsonrules lint --format csv`,
	RunE: lintRulesets,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.ruleset, "ruleset", "r", "", "ruleset to lint (default: all)")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "o", "text", "output format: text, json or csv")
}

// lintReports renders a set of reports as one table.
type lintReports []*lint.Report

func (r lintReports) Header() []string {
	return []string{"ruleset", "severity", "document", "line", "field", "message"}
}

func (r lintReports) Rows() [][]string {
	var rows [][]string
	for _, report := range r {
		for _, issue := range report.Issues {
			line := ""
			if issue.Line > 0 {
				line = strconv.Itoa(issue.Line)
			}
			rows = append(rows, []string{
				report.Ruleset, string(issue.Severity), issue.Document, line, issue.Field, issue.Message,
			})
		}
	}
	return rows
}

func lintRulesets(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	catalog := store.Catalog(cfg.Rulesets)
	names := catalog.Rulesets()
	if lintFlags.ruleset != "" {
		names = []string{lintFlags.ruleset}
	}

	reports := make(lintReports, 0, len(names))
	for _, name := range names {
		reports = append(reports, lintRuleset(cfg, catalog, name, logger))
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatText {
		printLint(out, reports, lintFlags.strict)
	} else if err := cli.NewFormatter(format).FormatTo(out, reports); err != nil {
		return err
	}

	failures := 0
	for _, report := range reports {
		failures += len(report.Errors())
		if lintFlags.strict {
			failures += len(report.Warnings())
		}
	}
	if failures > 0 {
		return cli.NewFailedError("lint", failures)
	}
	return nil
}

// lintRuleset loads and lints one ruleset. Load failures become a report
// with a single error issue.
func lintRuleset(cfg *config.Config, catalog store.Catalog, name string, logger *slog.Logger) *lint.Report {
	loader := store.NewLoader(catalog, store.NewFileSource(cfg.RulesDir),
		&store.LoaderConfig{MaxFileSize: cfg.Loader.MaxFileSize}, logger)

	s, err := store.Open(name, cfg.Validation.RootDocument, loader, logger)
	if err != nil {
		return &lint.Report{
			Ruleset: name,
			Root:    cfg.Validation.RootDocument,
			Issues:  []lint.Issue{loadIssue(err)},
		}
	}
	return lint.LintStore(s)
}

func loadIssue(err error) lint.Issue {
	issue := lint.Issue{
		Severity: lint.SeverityError,
		Message:  err.Error(),
	}

	var (
		decodeErr *store.RulesetDecodeError
		loadErr   *store.LoadError
		rootErr   *store.RootDocumentError
	)
	switch {
	case errors.As(err, &decodeErr):
		issue.Document = decodeErr.Document
		issue.Line = decodeErr.Line
		issue.Message = decodeErr.Message
	case errors.As(err, &loadErr):
		issue.Document = loadErr.Document
	case errors.As(err, &rootErr):
		issue.Document = rootErr.Document
		issue.Message = "root document is not part of the ruleset"
	}
	return issue
}

func printLint(w io.Writer, reports lintReports, strict bool) {
	totalErrors, totalWarnings := 0, 0

	for _, report := range reports {
		fmt.Fprintf(w, "Linting %s...\n", report.Ruleset)

		if len(report.Issues) == 0 {
			fmt.Fprintln(w, "✓ No issues found")
		}
		for _, issue := range report.Errors() {
			fmt.Fprintf(w, "✗ Error: %s\n", issue)
			totalErrors++
		}
		for _, issue := range report.Warnings() {
			fmt.Fprintf(w, "⚠  Warning: %s\n", issue)
			totalWarnings++
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d ruleset(s), %d error(s), %d warning(s)", len(reports), totalErrors, totalWarnings)
	if strict && totalWarnings > 0 {
		fmt.Fprint(w, " (strict mode: warnings fail)")
	}
	fmt.Fprintln(w)
}
