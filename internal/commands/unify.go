package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/source"
)

func newUnifyCommand(root *rootFlags) *cobra.Command {
	var accounts []string

	cmd := &cobra.Command{
		Use:   "unify <transactions.json>",
		Short: "Decide category and type for aggregator transactions",
		Long: "Reads an aggregator transactions payload (a JSON array or an object with\n" +
			"\"transactions\"/\"added\" arrays) and prints the unified category and type.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accts, err := parseAccounts(accounts)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			e, err := newEnv(cmd, root)
			if err != nil {
				return err
			}
			defer e.Close()

			unified, err := e.importer.UnifyAggregated(cmd.Context(), f, accts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(unified)
		},
	}

	cmd.Flags().StringArrayVar(&accounts, "account", nil, "account id and type as id=type[/subtype], repeatable")

	return cmd
}

// parseAccounts reads "acc-1=depository/checking" pairs.
func parseAccounts(pairs []string) (map[string]source.Account, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]source.Account, len(pairs))
	for _, p := range pairs {
		id, kind, ok := strings.Cut(p, "=")
		if !ok || id == "" || kind == "" {
			return nil, fmt.Errorf("invalid --account %q (want id=type[/subtype])", p)
		}
		accountType, subtype, _ := strings.Cut(kind, "/")
		out[id] = source.Account{Type: accountType, Subtype: subtype}
	}
	return out, nil
}
