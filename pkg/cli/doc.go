/*
Package cli provides command-line helpers shared by the jsonrules command.

Output Formatting:

Results can be printed as text, JSON or, for tabular results, CSV:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

A result implementing Table is rendered as aligned columns in text mode
and as rows in CSV mode.

Exit Codes:

Commands return *FailedError when the data or ruleset they checked did not
pass. ExitCode maps it to ExitValidationFailed so scripts can tell a failed
check from a broken invocation.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
