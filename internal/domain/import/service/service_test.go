package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/account"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
	"github.com/aksumit1/budgetbuddy-backend/pkg/money"
	"github.com/aksumit1/budgetbuddy-backend/pkg/telemetry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() *ImportService {
	logger := discardLogger()
	return NewImportService(categorization.NewService(nil, nil, logger), nil, logger)
}

func importString(t *testing.T, s *ImportService, filename, content string) *ImportResult {
	t.Helper()
	result, err := s.Import(context.Background(), strings.NewReader(content), filename, ImportOptions{})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// fakeStore answers matching lookups with one fixed account and reports the
// descriptions in dupes as previously imported.
type fakeStore struct {
	accountID uuid.UUID
	dupes     map[string]bool
	keys      []account.CompositeKey
}

func (f *fakeStore) FindByPlaidAccountID(ctx context.Context, userID uuid.UUID, plaidAccountID string) (*account.Account, error) {
	return nil, account.ErrNotFound
}

func (f *fakeStore) FindByPlaidItemID(ctx context.Context, userID uuid.UUID, plaidItemID string) ([]account.Account, error) {
	return nil, nil
}

func (f *fakeStore) FindByAccountNumberAndInstitution(ctx context.Context, userID uuid.UUID, number, institution string) (*account.Account, error) {
	if f.accountID == uuid.Nil {
		return nil, account.ErrNotFound
	}
	return &account.Account{ID: f.accountID, UserID: userID, AccountNumber: number, InstitutionName: institution}, nil
}

func (f *fakeStore) FindByAccountNumber(ctx context.Context, userID uuid.UUID, number string) (*account.Account, error) {
	return nil, account.ErrNotFound
}

func (f *fakeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]account.Account, error) {
	return nil, nil
}

func (f *fakeStore) FindDuplicate(ctx context.Context, key account.CompositeKey) (string, error) {
	f.keys = append(f.keys, key)
	if f.dupes[key.Description] {
		return "tx-existing", nil
	}
	return "", account.ErrNotFound
}

type panicDetector struct{}

func (panicDetector) Detect(merchant, description string, amount decimal.Decimal, channel, rawCategory string) categorization.Detection {
	if strings.Contains(description, "ZZQX") {
		panic("detector exploded")
	}
	return categorization.Detection{}
}

// ============================================================================
// Import
// ============================================================================

func TestImportService_Import_Basic(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv",
		"Date,Description,Amount\n"+
			"01/15/2024,STARBUCKS STORE 123,-5.40\n"+
			"01/16/2024,SAFEWAY #1234,-82.10\n")

	require.Len(t, result.Transactions, 2)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.FailureCount)
	assert.Empty(t, result.Errors)
	assert.NotEqual(t, uuid.Nil, result.JobID)

	first := result.Transactions[0]
	assert.Equal(t, 2, first.RowNumber)
	assert.Equal(t, "2024-01-15", first.Date.Format("2006-01-02"))
	assert.Equal(t, "-5.40", first.Amount.StringFixed(2))
	assert.Equal(t, money.USD, first.CurrencyCode)
	assert.NotEmpty(t, first.CategoryPrimary)
	assert.NotEmpty(t, first.TransactionType)
	assert.Len(t, first.Fingerprint, 64)
}

func TestImportService_Import_ACHCreditPayroll(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv",
		"Date,Description,Amount,Type\n"+
			"01/15/2024,GUSTO PAYROLL,2500.00,ACH_CREDIT\n")

	require.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]
	assert.Equal(t, categorization.CategorySalary, tx.CategoryPrimary)
	assert.Equal(t, "ACH_CREDIT", tx.ImporterCategoryPrimary)
	assert.Equal(t, string(categorization.TypeIncome), tx.TransactionType)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(2500)))
}

func TestImportService_Import_InfersCheckingFromRows(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv",
		"Date,Description,Amount\n"+
			"01/02/2024,CHECK 1001,-120.00\n"+
			"01/03/2024,ATM WITHDRAWAL,-60.00\n"+
			"01/04/2024,SAFEWAY,-45.12\n"+
			"01/05/2024,CHECK 1002,-300.00\n")

	require.NotNil(t, result.DetectedAccount)
	assert.Equal(t, account.TypeDepository, result.DetectedAccount.AccountType)
	assert.Equal(t, account.SubtypeChecking, result.DetectedAccount.AccountSubtype)
	assert.Equal(t, 4, result.DetectedAccount.Tally.Sampled)
	assert.Equal(t, 2, result.DetectedAccount.Tally.Checks)
	assert.Equal(t, 1, result.DetectedAccount.Tally.ATM)
	assert.Equal(t, categorization.CategoryCash, result.Transactions[1].CategoryPrimary)
}

func TestImportService_Import_CreditCardSignReversal(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "chase_credit_card_1234.csv",
		"Date,Description,Amount\n"+
			"01/05/2024,STARBUCKS STORE 88,5.40\n"+
			"01/20/2024,PAYMENT THANK YOU,-200.00\n"+
			"01/21/2024,ADJUSTMENT,0.00\n")

	require.NotNil(t, result.DetectedAccount)
	assert.Equal(t, account.TypeCredit, result.DetectedAccount.AccountType)
	assert.Equal(t, "1234", result.DetectedAccount.AccountNumber)

	require.Len(t, result.Transactions, 3)
	assert.Equal(t, "-5.40", result.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "200.00", result.Transactions[1].Amount.StringFixed(2))
	assert.True(t, result.Transactions[2].Amount.IsZero())
}

// ============================================================================
// Card signs, account inference and statement balances
// ============================================================================

func TestImportService_Import_CardSignBeforeClassification(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "visa_credit_card.csv",
		"Date,Description,Amount\n"+
			"02/01/2024,CORNER SHOP XYZ,25.00\n"+
			"02/02/2024,TIP TOP PIZZA,18.00\n"+
			"02/10/2024,PAYMENT THANK YOU,-100.00\n")

	require.NotNil(t, result.DetectedAccount)
	require.True(t, result.DetectedAccount.IsCredit())
	require.Len(t, result.Transactions, 3)

	tests := []struct {
		name     string
		amount   string
		txType   categorization.TransactionType
		category string
	}{
		{"purchase", "-25.00", categorization.TypeExpense, ""},
		{"purchase with income word", "-18.00", categorization.TypeExpense, categorization.CategoryDining},
		{"payment", "100.00", "", ""},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := result.Transactions[i]
			assert.Equal(t, tt.amount, tx.Amount.StringFixed(2))
			if tt.txType != "" {
				assert.Equal(t, string(tt.txType), tx.TransactionType)
			}
			if tt.category != "" {
				assert.Equal(t, tt.category, tx.CategoryPrimary)
			}
			assert.NotEqual(t, categorization.CategoryTips, tx.CategoryPrimary)
		})
	}
}

func TestImportService_Import_CardOrientedRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name: "indicator column",
			content: "Date,Description,Amount,Credit Debit Indicator\n" +
				"02/01/2024,CORNER SHOP XYZ,25.00,Debit\n" +
				"02/03/2024,REFUND CORNER SHOP,10.00,Credit\n",
			want: []string{"-25.00", "10.00"},
		},
		{
			name: "split debit and credit columns",
			content: "Date,Description,Debit,Credit\n" +
				"02/01/2024,CORNER SHOP XYZ,40.00,\n" +
				"02/10/2024,AUTOPAY,,100.00\n",
			want: []string{"-40.00", "100.00"},
		},
		{
			name: "unknown indicator falls back to reversal",
			content: "Date,Description,Amount,Credit Debit Indicator\n" +
				"02/01/2024,CORNER SHOP XYZ,25.00,Pending\n",
			want: []string{"-25.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := importString(t, newTestService(), "visa_credit_card.csv", tt.content)
			require.True(t, result.DetectedAccount.IsCredit())
			require.Len(t, result.Transactions, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, result.Transactions[i].Amount.StringFixed(2), "row %d", i)
			}
		})
	}
}

func TestImportService_Import_LateIndicatorsInferType(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv",
		"Date,Description,Amount\n"+
			"01/02/2024,SAFEWAY,-45.12\n"+
			"01/03/2024,STARBUCKS,-5.40\n"+
			"01/04/2024,TARGET,-30.00\n"+
			"01/05/2024,CHECK #1021,-120.00\n"+
			"01/06/2024,CHECK #1022,-80.00\n")

	require.NotNil(t, result.DetectedAccount)
	assert.Equal(t, account.TypeDepository, result.DetectedAccount.AccountType)
	assert.Equal(t, account.SubtypeChecking, result.DetectedAccount.AccountSubtype)
	assert.Equal(t, 4, result.DetectedAccount.Tally.Sampled)
	assert.Equal(t, 1, result.DetectedAccount.Tally.Checks)
	for _, tx := range result.Transactions {
		assert.Equal(t, string(categorization.TypeExpense), tx.TransactionType)
	}
}

func TestImportService_Import_IndicatorsPastSampleCapAreIgnored(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Description,Amount\n")
	for i := 0; i < account.DefaultSampleMax; i++ {
		fmt.Fprintf(&b, "01/%02d/2024,SAFEWAY,-%d.00\n", i+1, i+1)
	}
	b.WriteString("01/28/2024,CHECK #1021,-120.00\n")

	result := importString(t, newTestService(), "statement.csv", b.String())
	assert.Len(t, result.Transactions, account.DefaultSampleMax+1)
	assert.Nil(t, result.DetectedAccount)
}

func TestImportService_Import_AccountColumnsOnRows(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "export.csv",
		"Date,Description,Amount,Card No.,Account Type,Bank Name\n"+
			"03/01/2024,STARBUCKS STORE 88,5.40,XXXX-XXXX-XXXX-4321,Credit Card,Chase\n"+
			"03/05/2024,PAYMENT THANK YOU,-50.00,XXXX-XXXX-XXXX-4321,Credit Card,Chase\n")

	require.NotNil(t, result.DetectedAccount)
	assert.Equal(t, "4321", result.DetectedAccount.AccountNumber)
	assert.Equal(t, account.TypeCredit, result.DetectedAccount.AccountType)
	assert.Equal(t, "Chase", result.DetectedAccount.InstitutionName)
	assert.NotEmpty(t, result.DetectedAccount.AccountName)

	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "-5.40", result.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "50.00", result.Transactions[1].Amount.StringFixed(2))
}

func TestImportService_Import_StatementBalance(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{
			name:     "card keeps the printed balance",
			filename: "visa_credit_card.csv",
			content: "New Balance: $500.00\n" +
				"Date,Description,Amount,Balance\n" +
				"02/01/2024,CORNER SHOP XYZ,25.00,120.00\n" +
				"02/02/2024,TIP TOP PIZZA,18.00,138.00\n",
			want: "500.00",
		},
		{
			name:     "checking takes the latest row balance",
			filename: "chase_checking_1234.csv",
			content: "Ending Balance: $900.00\n" +
				"Date,Description,Amount,Balance\n" +
				"02/01/2024,SAFEWAY,-50.00,1000.00\n" +
				"02/02/2024,STARBUCKS,-50.00,950.00\n",
			want: "950.00",
		},
		{
			name:     "card without a printed balance uses the rows",
			filename: "visa_credit_card.csv",
			content: "Date,Description,Amount,Balance\n" +
				"02/01/2024,CORNER SHOP XYZ,25.00,120.00\n" +
				"02/02/2024,TIP TOP PIZZA,18.00,138.00\n",
			want: "138.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := importString(t, newTestService(), tt.filename, tt.content)
			require.NotNil(t, result.DetectedAccount)
			require.NotNil(t, result.DetectedAccount.Balance)
			assert.Equal(t, tt.want, result.DetectedAccount.Balance.StringFixed(2))
		})
	}
}

func TestImportService_Import_NothingToImport(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantInfo string
	}{
		{"empty file", "", "empty"},
		{"whitespace only", "\n\n  \n", "empty"},
		{"header only", "Date,Description,Amount\n", "header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := importString(t, newTestService(), "statement.csv", tt.content)
			assert.Empty(t, result.Transactions)
			assert.Equal(t, 0, result.FailureCount)
			assert.Empty(t, result.Errors)
			require.NotEmpty(t, result.Info)
			assert.Contains(t, strings.ToLower(strings.Join(result.Info, " ")), tt.wantInfo)
		})
	}
}

func TestImportService_Import_RowErrors(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv",
		"Date,Description,Amount\n"+
			"01/15/2024,COFFEE,-3.00\n"+
			",NO DATE,-4.00\n"+
			"01/17/2024,NO AMOUNT,\n"+
			"01/18/2024,TEA,-2.50\n")

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	assert.Equal(t, []string{"row 3: missing date", "row 4: missing amount"}, result.Errors)
	assert.Len(t, result.Transactions, 2)
}

func TestImportService_Import_ShortRowsArePadded(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv",
		"Date,Amount,Description,Balance\n"+
			"01/15/2024,-12.00,LUNCH\n")

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "LUNCH", result.Transactions[0].Description)
	assert.Nil(t, result.Transactions[0].Balance)
}

func TestImportService_Import_InFileRepeatsAreKept(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv",
		"Date,Description,Amount\n"+
			"01/15/2024,SAFEWAY,-20.00\n"+
			"01/15/2024,safeway ,-20.00\n"+
			"01/16/2024,SAFEWAY,-20.00\n")

	require.Len(t, result.Transactions, 3)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 1, result.Repeated)
	assert.Equal(t, 0, result.Duplicates)
	assert.Empty(t, result.Info)

	fingerprints := map[string]bool{}
	for _, tx := range result.Transactions {
		assert.Len(t, tx.Fingerprint, 64)
		fingerprints[tx.Fingerprint] = true
	}
	assert.Len(t, fingerprints, 3)
	assert.NotEqual(t, result.Transactions[0].Fingerprint, result.Transactions[1].Fingerprint)
}

func TestImportService_Import_RepeatFingerprintsAreStable(t *testing.T) {
	content := "Date,Description,Amount\n" +
		"01/15/2024,SAFEWAY,-20.00\n" +
		"01/15/2024,SAFEWAY,-20.00\n"

	first := importString(t, newTestService(), "statement.csv", content)
	second := importString(t, newTestService(), "statement.csv", content)

	require.Len(t, first.Transactions, 2)
	require.Len(t, second.Transactions, 2)
	for i := range first.Transactions {
		assert.Equal(t, first.Transactions[i].Fingerprint, second.Transactions[i].Fingerprint)
	}
}

func TestImportService_Import_Latin1(t *testing.T) {
	s := newTestService()
	content := "Date,Description,Amount\n01/05/2024,CAF\xc9 ROUGE,-4.50\n"
	result := importString(t, s, "statement.csv", content)

	require.Len(t, result.Transactions, 1)
	assert.Contains(t, result.Transactions[0].Description, "CAFÉ")
}

func TestImportService_Import_ReadFailure(t *testing.T) {
	s := newTestService()
	result, err := s.Import(context.Background(), iotest.ErrReader(io.ErrUnexpectedEOF), "statement.csv", ImportOptions{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestImportService_Import_Cancelled(t *testing.T) {
	s := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Import(ctx, strings.NewReader("Date,Description,Amount\n01/15/2024,COFFEE,-3.00\n"), "statement.csv", ImportOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportService_Import_TransactionCap(t *testing.T) {
	var buf bytes.Buffer
	rows := money.NewTestDataGeneratorWithSeed(42).Rows(money.USD, DefaultMaxTransactions+50)
	require.NoError(t, money.WriteCSV(&buf, rows))

	s := newTestService()
	result, err := s.Import(context.Background(), &buf, "statement.csv", ImportOptions{})
	require.NoError(t, err)

	assert.Len(t, result.Transactions, DefaultMaxTransactions)
	assert.True(t, result.Truncated)
	assert.Contains(t, result.Errors, "transaction limit of 10000 reached; remaining rows were not imported")
}

func TestImportService_Import_CustomLimit(t *testing.T) {
	s := newTestService().WithLimits(Limits{MaxTransactions: 2})
	result := importString(t, s, "statement.csv",
		"Date,Description,Amount\n"+
			"01/15/2024,A,-1.00\n"+
			"01/16/2024,B,-2.00\n"+
			"01/17/2024,C,-3.00\n")

	assert.Len(t, result.Transactions, 2)
	assert.True(t, result.Truncated)
	assert.Equal(t, []string{"transaction limit of 2 reached; remaining rows were not imported"}, result.Errors)
}

func TestImportService_Import_RowPanicIsIsolated(t *testing.T) {
	logger := discardLogger()
	classifiers := categorization.NewService(nil, nil, logger, categorization.WithDetector(panicDetector{}))
	s := NewImportService(classifiers, nil, logger)

	result := importString(t, s, "statement.csv",
		"Date,Description,Amount\n"+
			"01/15/2024,ZZQX QWERTY,-10.00\n"+
			"01/16/2024,ATM WITHDRAWAL,-40.00\n")

	assert.Equal(t, 1, result.FailureCount)
	assert.Equal(t, []string{"row 2: unexpected error while processing row"}, result.Errors)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 3, result.Transactions[0].RowNumber)
}

func TestImportService_Import_HeaderRowOverride(t *testing.T) {
	s := newTestService()
	content := "Exported 2024-02-01\n" +
		"Date,Description,Amount\n" +
		"01/15/2024,COFFEE,-3.00\n"
	result, err := s.Import(context.Background(), strings.NewReader(content), "statement.csv", ImportOptions{HeaderRow: 2})
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 3, result.Transactions[0].RowNumber)
}

func TestImportService_Import_Excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Description", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"01/15/2024", "WHOLE FOODS MARKET", "-54.20"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	s := newTestService()
	result, err := s.Import(context.Background(), buf, "statement.xlsx", ImportOptions{})
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "-54.20", result.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, categorization.CategoryGroceries, result.Transactions[0].CategoryPrimary)
}

func TestImportService_Import_AccountMatchingAndStoreDedup(t *testing.T) {
	logger := discardLogger()
	store := &fakeStore{accountID: uuid.New(), dupes: map[string]bool{"NETFLIX.COM": true}}
	s := NewImportService(categorization.NewService(nil, nil, logger), store, logger)
	userID := uuid.New()

	result, err := s.Import(context.Background(), strings.NewReader(
		"Date,Description,Amount\n"+
			"01/15/2024,NETFLIX.COM,15.99\n"+
			"01/16/2024,SPOTIFY,9.99\n"), "chase_credit_card_1234.csv", ImportOptions{UserID: userID})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, store.accountID.String(), result.MatchedAccountID)
	assert.Equal(t, store.accountID.String(), result.Transactions[0].AccountID)
	require.Len(t, store.keys, 2)
	assert.Equal(t, userID, store.keys[0].UserID)
}

func TestImportService_Import_NoUserSkipsStore(t *testing.T) {
	logger := discardLogger()
	store := &fakeStore{dupes: map[string]bool{"NETFLIX.COM": true}}
	s := NewImportService(categorization.NewService(nil, nil, logger), store, logger)

	result := importString(t, s, "statement.csv", "Date,Description,Amount\n01/15/2024,NETFLIX.COM,-15.99\n")
	assert.Equal(t, 0, result.Duplicates)
	assert.Empty(t, store.keys)
}

func TestImportService_Import_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestService().WithMetrics(telemetry.NewMetrics(reg))

	importString(t, s, "statement.csv",
		"Date,Description,Amount\n"+
			"01/15/2024,COFFEE,-3.00\n"+
			",NO DATE,-4.00\n"+
			"01/15/2024,COFFEE,-3.00\n")

	families, err := reg.Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "budgetbuddy_import_rows_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			outcomes[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		telemetry.OutcomeImported: 2,
		telemetry.OutcomeFailed:   1,
	}, outcomes)
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "budgetbuddy_import_duration_seconds"))
}

// ============================================================================
// Batch and export
// ============================================================================

func TestImportService_ImportBatch(t *testing.T) {
	s := newTestService()
	files := make([]BatchFile, 6)
	for i := range files {
		files[i] = BatchFile{
			Name:   fmt.Sprintf("statement_%d.csv", i),
			Reader: strings.NewReader(fmt.Sprintf("Date,Description,Amount\n01/%02d/2024,ITEM %d,-%d.00\n", i+1, i, i+1)),
		}
	}
	files = append(files, BatchFile{Name: "broken.csv", Reader: iotest.ErrReader(io.ErrClosedPipe)})

	results := s.ImportBatch(context.Background(), files, ImportOptions{})
	require.Len(t, results, len(files))
	for i := 0; i < 6; i++ {
		assert.Equal(t, files[i].Name, results[i].Filename)
		require.NoError(t, results[i].Err)
		require.Len(t, results[i].Result.Transactions, 1)
		assert.Equal(t, fmt.Sprintf("ITEM %d", i), results[i].Result.Transactions[0].Description)
	}
	assert.ErrorIs(t, results[6].Err, ErrReadFailed)
	assert.Nil(t, results[6].Result)
}

func TestExportCSV(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv", "Date,Description,Amount\n01/15/2024,COFFEE SHOP,-3.00\n")

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, result.Transactions))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "row,date,amount,currency,description,merchant,category,category_detailed,type,account_id,fingerprint", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2,2024-01-15,-3.00,USD,COFFEE SHOP,"))
}

func TestWriteTable(t *testing.T) {
	s := newTestService()
	result := importString(t, s, "statement.csv", "Date,Description,Amount\n01/15/2024,COFFEE SHOP,-3.00\n")

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, result.Transactions))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "DATE"))
	assert.Contains(t, out, "2024-01-15")
	assert.Contains(t, out, "COFFEE SHOP")
}
