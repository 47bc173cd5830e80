package service

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gocarina/gocsv"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/parser"
)

// exportRow is the flat CSV shape of a transaction
type exportRow struct {
	Row              int    `csv:"row"`
	Date             string `csv:"date"`
	Amount           string `csv:"amount"`
	Currency         string `csv:"currency"`
	Description      string `csv:"description"`
	Merchant         string `csv:"merchant"`
	Category         string `csv:"category"`
	CategoryDetailed string `csv:"category_detailed"`
	Type             string `csv:"type"`
	AccountID        string `csv:"account_id"`
	Fingerprint      string `csv:"fingerprint"`
}

func toExportRows(txs []*parser.ParsedTransaction) []*exportRow {
	rows := make([]*exportRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, &exportRow{
			Row:              tx.RowNumber,
			Date:             tx.Date.Format("2006-01-02"),
			Amount:           tx.Amount.StringFixed(2),
			Currency:         tx.CurrencyCode,
			Description:      tx.Description,
			Merchant:         tx.MerchantName,
			Category:         tx.CategoryPrimary,
			CategoryDetailed: tx.CategoryDetailed,
			Type:             tx.TransactionType,
			AccountID:        tx.AccountID,
			Fingerprint:      tx.Fingerprint,
		})
	}
	return rows
}

// ExportCSV writes transactions as CSV with a header row
func ExportCSV(w io.Writer, txs []*parser.ParsedTransaction) error {
	if err := gocsv.Marshal(toExportRows(txs), w); err != nil {
		return fmt.Errorf("failed to export transactions: %w", err)
	}
	return nil
}

// WriteTable writes a human readable, column aligned summary of transactions
func WriteTable(w io.Writer, txs []*parser.ParsedTransaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tAMOUNT\tCURRENCY\tCATEGORY\tTYPE\tDESCRIPTION")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date.Format("2006-01-02"),
			tx.Amount.StringFixed(2),
			tx.CurrencyCode,
			tx.CategoryPrimary,
			tx.TransactionType,
			tx.Description,
		)
	}
	return tw.Flush()
}
