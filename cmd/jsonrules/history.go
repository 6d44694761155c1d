package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nocartorio/jsonrules/pkg/audit"
	"nocartorio/jsonrules/pkg/cli"
)

var historyFlags struct {
	ruleset    string
	failedOnly bool
	since      time.Duration
	limit      int
	format     string
}

var pruneFlags struct {
	olderThan time.Duration
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded validation runs",
	Long: `Show validation runs recorded in the audit database, newest first.

The database is the one named by audit.path in the configuration; it is read
even when audit.enabled is false.

Examples:
  # Show the last 20 runs of the person ruleset
  jsonrules history --ruleset person --limit 20

  # Failed runs of the last hour as CSV
  jsonrules history --failed --since 1h --format csv

  # Delete runs older than 30 days
  jsonrules history prune --older-than 720h`,
	RunE: showHistory,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old validation runs",
	Long:  `Delete validation runs started before --older-than ago from the audit database.`,
	RunE:  pruneHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(pruneCmd)

	historyCmd.Flags().StringVarP(&historyFlags.ruleset, "ruleset", "r", "", "only show runs of this ruleset")
	historyCmd.Flags().BoolVar(&historyFlags.failedOnly, "failed", false, "only show failed runs")
	historyCmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only show runs started within this duration")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", audit.DefaultListLimit, "maximum number of runs")
	historyCmd.Flags().StringVarP(&historyFlags.format, "format", "o", "text", "output format: text, json or csv")

	pruneCmd.Flags().DurationVar(&pruneFlags.olderThan, "older-than", 30*24*time.Hour, "delete runs older than this duration")
}

// historyTable renders audit entries as rows.
type historyTable []*audit.Entry

func (h historyTable) Header() []string {
	return []string{"started_at", "ruleset", "result", "errors", "duration", "run_id"}
}

func (h historyTable) Rows() [][]string {
	rows := make([][]string, 0, len(h))
	for _, e := range h {
		result := "pass"
		if !e.OK {
			result = "fail"
		}
		rows = append(rows, []string{
			e.StartedAt.UTC().Format(time.RFC3339),
			e.Ruleset,
			result,
			strconv.Itoa(e.ErrorCount),
			e.Duration.String(),
			e.RunID,
		})
	}
	return rows
}

func openAudit() (audit.Store, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Audit.Path == "" {
		return nil, cli.NewConfigError("audit.path", "audit database path is not configured")
	}
	return audit.Open(cfg.Audit)
}

func showHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return err
	}

	s, err := openAudit()
	if err != nil {
		return err
	}
	defer s.Close()

	q := audit.Query{
		Ruleset:    historyFlags.ruleset,
		FailedOnly: historyFlags.failedOnly,
		Limit:      historyFlags.limit,
	}
	if historyFlags.since > 0 {
		q.Since = time.Now().Add(-historyFlags.since)
	}

	entries, err := s.List(commandContext(cmd), q)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if entries == nil {
			entries = []*audit.Entry{}
		}
		return cli.NewFormatter(format).FormatTo(out, entries)
	}
	if format == cli.FormatText && len(entries) == 0 {
		fmt.Fprintln(out, "No validation runs recorded")
		return nil
	}
	return cli.NewFormatter(format).FormatTo(out, historyTable(entries))
}

func pruneHistory(cmd *cobra.Command, args []string) error {
	if pruneFlags.olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	s, err := openAudit()
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.Cleanup(commandContext(cmd), time.Now().Add(-pruneFlags.olderThan))
	if err != nil {
		return cli.NewCommandError("history prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d validation run(s) older than %s\n", removed, pruneFlags.olderThan)
	return nil
}
