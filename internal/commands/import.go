package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	importservice "github.com/aksumit1/budgetbuddy-backend/internal/domain/import/service"
)

const (
	formatJSON  = "json"
	formatCSV   = "csv"
	formatTable = "table"
)

type importFlags struct {
	format          string
	headerRow       int
	delimiter       string
	maxTransactions int
}

func newImportCommand(root *rootFlags) *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import <file> [file...]",
		Short: "Import CSV or Excel statements and print the transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch flags.format {
			case formatJSON, formatCSV, formatTable:
			default:
				return fmt.Errorf("unknown format %q (want json, csv or table)", flags.format)
			}
			opts := importservice.ImportOptions{HeaderRow: flags.headerRow}
			if flags.delimiter != "" {
				runes := []rune(flags.delimiter)
				if flags.delimiter == `\t` {
					runes = []rune{'\t'}
				}
				if len(runes) != 1 {
					return fmt.Errorf("delimiter must be a single character")
				}
				opts.Delimiter = runes[0]
			}

			e, err := newEnv(cmd, root)
			if err != nil {
				return err
			}
			defer e.Close()
			if flags.maxTransactions > 0 {
				e.importer.WithLimits(importservice.Limits{MaxTransactions: flags.maxTransactions})
			}
			return runImport(cmd, e, args, opts, flags.format)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", formatTable, "output format: json, csv or table")
	cmd.Flags().IntVar(&flags.headerRow, "header-row", 0, "1-based header line (0 detects it)")
	cmd.Flags().StringVar(&flags.delimiter, "delimiter", "", "field delimiter (detected when empty)")
	cmd.Flags().IntVar(&flags.maxTransactions, "max-transactions", 0, "transaction cap per file")

	return cmd
}

func runImport(cmd *cobra.Command, e *env, paths []string, opts importservice.ImportOptions, format string) error {
	files := make([]importservice.BatchFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("opening %s: %w", p, err)
		}
		defer f.Close()
		files = append(files, importservice.BatchFile{Name: filepath.Base(p), Reader: f})
	}

	results := e.importer.ImportBatch(cmd.Context(), files, opts)

	out := cmd.OutOrStdout()
	var failed error
	for _, res := range results {
		if res.Err != nil {
			writeLine(cmd.ErrOrStderr(), "%s: %v", res.Filename, res.Err)
			failed = fmt.Errorf("%d of %d files failed", countFailed(results), len(results))
			continue
		}
		if err := writeResult(out, cmd.ErrOrStderr(), res.Result, format); err != nil {
			return err
		}
	}
	return failed
}

func writeResult(out, errOut io.Writer, result *importservice.ImportResult, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case formatCSV:
		return importservice.ExportCSV(out, result.Transactions)
	}

	writeLine(out, "%s: %d imported, %d failed, %d duplicates", result.Filename, result.SuccessCount, result.FailureCount, result.Duplicates)
	if d := result.DetectedAccount; d != nil {
		writeLine(out, "account: %s %s %s %s", d.InstitutionName, d.AccountType, d.AccountSubtype, d.AccountNumber)
	}
	for _, msg := range result.Info {
		writeLine(errOut, "info: %s", msg)
	}
	for _, msg := range result.Errors {
		writeLine(errOut, "error: %s", msg)
	}
	return importservice.WriteTable(out, result.Transactions)
}

func countFailed(results []importservice.BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
