// Package commands implements the budgetbuddy command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
	importservice "github.com/aksumit1/budgetbuddy-backend/internal/domain/import/service"
)

// Version is set at build time
var Version = "dev"

// env is the pipeline shared by the subcommands
type env struct {
	classifiers *categorization.Service
	index       *categorization.SearchIndex
	importer    *importservice.ImportService
	logger      *slog.Logger
}

func (e *env) Close() {
	if e.index != nil {
		_ = e.index.Close()
	}
}

type rootFlags struct {
	rules    string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:     "budgetbuddy",
		Short:   "Import and categorize bank and card statements",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.rules, "rules", "", "YAML file with extra merchant rules")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newImportCommand(flags),
		newClassifyCommand(flags),
		newMerchantsCommand(flags),
		newUnifyCommand(flags),
	)

	return rootCmd
}

// newEnv builds the classifier stack. Logs go to stderr so they never mix
// with command output.
func newEnv(cmd *cobra.Command, flags *rootFlags) (*env, error) {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(flags.logLevel)}))

	var rules []categorization.MerchantRule
	if flags.rules != "" {
		loaded, err := categorization.LoadRulesFile(flags.rules)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	detector, index, err := categorization.NewIndexedDetector(rules, logger)
	if err != nil {
		return nil, fmt.Errorf("building merchant index: %w", err)
	}

	classifiers := categorization.NewService(nil, rules, logger,
		categorization.WithDetector(detector),
		categorization.WithLogger(logger),
	)
	importer := importservice.NewImportService(classifiers, nil, logger).
		WithUnifier(categorization.NewUnifier(classifiers.Default(), detector, logger))

	return &env{classifiers: classifiers, index: index, importer: importer, logger: logger}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
