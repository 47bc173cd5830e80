package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
)

type classifyFlags struct {
	amount         string
	category       string
	merchant       string
	channel        string
	indicator      string
	accountType    string
	accountSubtype string
}

func newClassifyCommand(root *rootFlags) *cobra.Command {
	flags := &classifyFlags{}

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify a single transaction description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(flags.amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", flags.amount, err)
			}

			e, err := newEnv(cmd, root)
			if err != nil {
				return err
			}
			defer e.Close()

			in := categorization.Input{
				RawCategory:          flags.category,
				Description:          strings.Join(args, " "),
				Merchant:             flags.merchant,
				Amount:               amount,
				PaymentChannel:       flags.channel,
				DebitCreditIndicator: flags.indicator,
				AccountType:          flags.accountType,
				AccountSubtype:       flags.accountSubtype,
			}
			in.TransactionType = string(categorization.DetermineType(in.AccountType, in.AccountSubtype, in.RawCategory, in.RawCategory, amount))

			category, stage := e.classifiers.Default().ClassifyWithTrace(cmd.Context(), in)
			txType := categorization.DetermineType(in.AccountType, in.AccountSubtype, category, category, amount)

			out := cmd.OutOrStdout()
			writeLine(out, "category: %s", category)
			writeLine(out, "stage:    %s", stage)
			writeLine(out, "type:     %s", txType)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.amount, "amount", "0", "signed amount, negative for money out")
	cmd.Flags().StringVar(&flags.category, "category", "", "category or transaction type code reported by the bank")
	cmd.Flags().StringVar(&flags.merchant, "merchant", "", "merchant name")
	cmd.Flags().StringVar(&flags.channel, "channel", "", "payment channel (online, in store, ach)")
	cmd.Flags().StringVar(&flags.indicator, "indicator", "", "debit/credit indicator")
	cmd.Flags().StringVar(&flags.accountType, "account-type", "", "account type (depository, credit, loan, investment)")
	cmd.Flags().StringVar(&flags.accountSubtype, "account-subtype", "", "account subtype (checking, savings, credit card)")

	return cmd
}
