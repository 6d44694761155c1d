package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nocartorio/jsonrules/pkg/cli"
	"nocartorio/jsonrules/pkg/datatree"
	"nocartorio/jsonrules/pkg/jsonrules"
	ruleerrors "nocartorio/jsonrules/pkg/rules/errors"
)

var validateFlags struct {
	ruleset     string
	data        string
	inputFormat string
	format      string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a data file against a ruleset",
	Long: `Validate a JSON or YAML data file against a configured ruleset.

The input format is taken from the file extension (.yaml and .yml select
YAML, anything else JSON) unless --input-format is given. Use --data - to
read from standard input.

The command exits with status 2 when the data does not satisfy the ruleset.

Examples:
  # Validate a JSON file
  jsonrules validate --ruleset person --data person.json

  # Validate YAML from stdin
  cat person.yaml | jsonrules validate -r person --input-format yaml

  # Emit diagnostics as JSON
  jsonrules validate -r person -d person.json --format json`,
	RunE: validateData,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.ruleset, "ruleset", "r", "", "ruleset to validate against (required)")
	validateCmd.Flags().StringVarP(&validateFlags.data, "data", "d", "-", "data file path, - for stdin")
	validateCmd.Flags().StringVar(&validateFlags.inputFormat, "input-format", "", "input format: json or yaml (default: from extension)")
	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "o", "text", "output format: text, json or csv")
}

// validateOutput is the printable outcome of one validation.
type validateOutput struct {
	Ruleset string              `json:"ruleset"`
	Version string              `json:"version,omitempty"`
	RunID   string              `json:"run_id"`
	OK      bool                `json:"ok"`
	Errors  []ruleerrors.Record `json:"errors"`
}

func (o validateOutput) Header() []string {
	return []string{"field", "kind", "document", "message"}
}

func (o validateOutput) Rows() [][]string {
	rows := make([][]string, 0, len(o.Errors))
	for _, e := range o.Errors {
		rows = append(rows, []string{e.Field, string(e.Kind), e.Document, e.Message})
	}
	return rows
}

func validateData(cmd *cobra.Command, args []string) error {
	if validateFlags.ruleset == "" {
		return fmt.Errorf("--ruleset is required")
	}
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}

	data, inputFormat, err := readInput(cmd.InOrStdin(), validateFlags.data, validateFlags.inputFormat)
	if err != nil {
		return err
	}
	tree, err := datatree.Decode(data, inputFormat)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", validateFlags.data, err)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	v, err := jsonrules.New(validateFlags.ruleset,
		jsonrules.WithConfig(cfg),
		jsonrules.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer v.Close()

	result := v.Check(commandContext(cmd), tree)
	output := validateOutput{
		Ruleset: result.Ruleset,
		Version: result.Version,
		RunID:   result.RunID,
		OK:      result.OK,
		Errors:  result.Errors,
	}
	if output.Errors == nil {
		output.Errors = []ruleerrors.Record{}
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatText {
		printValidation(out, output)
	} else if err := cli.NewFormatter(format).FormatTo(out, output); err != nil {
		return err
	}

	if !result.OK {
		return cli.NewFailedError(validateFlags.ruleset, len(result.Errors))
	}
	return nil
}

// readInput reads path, or r when path is "-" or empty, and picks the input
// format from the explicit flag or the file extension.
func readInput(r io.Reader, path, explicit string) ([]byte, string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input: %w", err)
	}

	format := explicit
	if format == "" {
		format = filepath.Ext(path)
	}
	return data, format, nil
}

func printValidation(w io.Writer, o validateOutput) {
	if o.OK {
		fmt.Fprintf(w, "✓ %s: valid\n", o.Ruleset)
		return
	}

	fmt.Fprintf(w, "✗ %s: %d error(s)\n", o.Ruleset, len(o.Errors))
	for _, e := range o.Errors {
		fmt.Fprintf(w, "  - %s", e.Message)
		if e.Kind != "" {
			fmt.Fprintf(w, " [%s]", e.Kind)
		}
		if e.Suggestion != "" {
			fmt.Fprintf(w, " (%s)", e.Suggestion)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "run %s, version %s\n", o.RunID, shortVersion(o.Version))
}

func shortVersion(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	if v == "" {
		return "-"
	}
	return v
}
