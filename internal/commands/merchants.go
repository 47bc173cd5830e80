package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
)

func newMerchantsCommand(root *rootFlags) *cobra.Command {
	var search, category string
	var limit int

	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Search the merchant table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (search == "") == (category == "") {
				return errors.New("exactly one of --search or --category is required")
			}

			e, err := newEnv(cmd, root)
			if err != nil {
				return err
			}
			defer e.Close()

			var results []categorization.SearchResult
			if search != "" {
				results, err = e.index.Search(search, limit)
			} else {
				results, err = e.index.SearchByCategory(category, limit)
			}
			if err != nil {
				return err
			}
			if len(results) == 0 {
				writeLine(cmd.ErrOrStderr(), "no merchants found")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATTERN\tNAME\tCATEGORY\tSOURCE\tSCORE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n", r.Document.Pattern, r.Document.Name, r.Document.Category, r.Document.Type, r.Score)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "merchant name to search for (typos allowed)")
	cmd.Flags().StringVar(&category, "category", "", "list merchants of a category")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results")

	return cmd
}
