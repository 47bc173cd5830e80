package source

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/parser"
)

// Imported adapts a parsed statement row. The row's classified category is
// reported as the importer category, so unification of a file import starts
// from what the import pipeline already decided.
type Imported struct {
	tx     *parser.ParsedTransaction
	source categorization.ImportSource
}

var _ Transaction = Imported{}

// FromParsed wraps tx. source is usually SourceCSV or SourceExcel.
func FromParsed(tx *parser.ParsedTransaction, source categorization.ImportSource) Imported {
	return Imported{tx: tx, source: source}
}

// FromParsedAll wraps every row of an import result.
func FromParsedAll(txs []*parser.ParsedTransaction, source categorization.ImportSource) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			out = append(out, FromParsed(tx, source))
		}
	}
	return out
}

func (i Imported) ExternalID() string                  { return i.tx.Fingerprint }
func (i Imported) AccountID() string                   { return i.tx.AccountID }
func (i Imported) Date() time.Time                     { return i.tx.Date }
func (i Imported) Amount() decimal.Decimal             { return i.tx.Amount }
func (i Imported) CurrencyCode() string                { return i.tx.CurrencyCode }
func (i Imported) Description() string                 { return i.tx.Description }
func (i Imported) MerchantName() string                { return i.tx.MerchantName }
func (i Imported) PaymentChannel() string              { return i.tx.PaymentChannel }
func (i Imported) DebitCreditIndicator() string        { return i.tx.DebitCreditIndicator }
func (i Imported) Pending() bool                       { return false }
func (i Imported) Source() categorization.ImportSource { return i.source }

func (i Imported) CategoryPrimary() string {
	if i.tx.CategoryPrimary != "" {
		return i.tx.CategoryPrimary
	}
	return i.tx.ImporterCategoryPrimary
}

func (i Imported) CategoryDetailed() string {
	if i.tx.CategoryDetailed != "" {
		return i.tx.CategoryDetailed
	}
	return i.tx.ImporterCategoryDetailed
}
