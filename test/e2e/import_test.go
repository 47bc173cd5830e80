// Package e2etest runs statements through the whole import stack: sniffing,
// parsing, classification, account detection, unification and the inbox.
package e2etest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/account"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
	importservice "github.com/aksumit1/budgetbuddy-backend/internal/domain/import/service"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/sniffer"
	"github.com/aksumit1/budgetbuddy-backend/pkg/cron"
	"github.com/aksumit1/budgetbuddy-backend/pkg/storage"
)

const (
	chaseCard = "Date,Description,Amount\n" +
		"01/05/2024,STARBUCKS STORE 88,5.40\n" +
		"01/20/2024,PAYMENT THANK YOU,-200.00\n"

	germanChecking = "Kontoauszug Girokonto\n" +
		"\n" +
		"Buchungstag;Verwendungszweck;Betrag\n" +
		"13.01.2024;REWE MARKT 4711;-12,50\n" +
		"15.01.2024;GEHALT JANUAR;2.400,00\n"
)

// newPipeline wires the same classifier stack the server and CLI use.
func newPipeline(t *testing.T) *importservice.ImportService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	detector, index, err := categorization.NewIndexedDetector(nil, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	classifiers := categorization.NewService(nil, nil, logger, categorization.WithDetector(detector))
	return importservice.NewImportService(classifiers, nil, logger).
		WithUnifier(categorization.NewUnifier(classifiers.Default(), detector, logger))
}

// TestCreditCard_Import covers a card export named after its issuer.
func TestCreditCard_Import(t *testing.T) {
	svc := newPipeline(t)
	ctx := context.Background()

	t.Run("DetectConfig", func(t *testing.T) {
		config, err := sniffer.DetectConfig([]byte(chaseCard))
		require.NoError(t, err)
		assert.Equal(t, ',', config.Delimiter)
		assert.Equal(t, 0, config.SkipLines)
		assert.Equal(t, []string{"Date", "Description", "Amount"}, config.Headers)
	})

	result, err := svc.Import(ctx, strings.NewReader(chaseCard), "chase_credit_card_1234.csv", importservice.ImportOptions{})
	require.NoError(t, err)

	t.Run("Account", func(t *testing.T) {
		require.NotNil(t, result.DetectedAccount)
		assert.Equal(t, account.TypeCredit, result.DetectedAccount.AccountType)
		assert.Equal(t, "1234", result.DetectedAccount.AccountNumber)
	})

	t.Run("CanonicalSigns", func(t *testing.T) {
		require.Len(t, result.Transactions, 2)
		assert.Equal(t, "-5.40", result.Transactions[0].Amount.StringFixed(2))
		assert.Equal(t, "200.00", result.Transactions[1].Amount.StringFixed(2))
	})

	t.Run("Unify", func(t *testing.T) {
		unified, err := svc.UnifyImported(ctx, result)
		require.NoError(t, err)
		require.Len(t, unified, 2)
		assert.Equal(t, categorization.TypeExpense, unified[0].Type.Type)
		for i, u := range unified {
			assert.Equal(t, result.Transactions[i].Fingerprint, u.ExternalID)
		}
	})

	t.Run("ExportCSV", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, importservice.ExportCSV(&buf, result.Transactions))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Len(t, lines, 3)
	})
}

// TestGermanChecking_Import covers a semicolon export with a preamble,
// day-first dates and comma decimals.
func TestGermanChecking_Import(t *testing.T) {
	svc := newPipeline(t)

	t.Run("DetectConfig", func(t *testing.T) {
		config, err := sniffer.DetectConfig([]byte(germanChecking))
		require.NoError(t, err)
		assert.Equal(t, ';', config.Delimiter)
		assert.Equal(t, []string{"Buchungstag", "Verwendungszweck", "Betrag"}, config.Headers)
		assert.Contains(t, config.Preamble, "Kontoauszug Girokonto")
	})

	result, err := svc.Import(context.Background(), strings.NewReader(germanChecking), "umsaetze.csv", importservice.ImportOptions{})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Errors)

	rewe := result.Transactions[0]
	assert.Equal(t, "2024-01-13", rewe.Date.Format("2006-01-02"))
	assert.Equal(t, "-12.50", rewe.Amount.StringFixed(2))
	assert.Equal(t, "EUR", rewe.CurrencyCode)
	assert.Equal(t, 4, rewe.RowNumber)

	salary := result.Transactions[1]
	assert.Equal(t, "2400.00", salary.Amount.StringFixed(2))
}

// TestInbox_ImportAndArchive drops statements into an inbox directory,
// runs the scheduled import once and archives what was imported.
func TestInbox_ImportAndArchive(t *testing.T) {
	svc := newPipeline(t)
	inbox := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, os.WriteFile(filepath.Join(inbox, "chase_credit_card_1234.csv"), []byte(chaseCard), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "umsaetze.csv"), []byte(germanChecking), 0o644))

	report, err := cron.NewScheduler(svc, inbox, "@every 1h", logger).RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 4, report.Transactions)

	processed, err := os.ReadDir(filepath.Join(inbox, cron.ProcessedDir))
	require.NoError(t, err)
	require.Len(t, processed, 2)

	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)
	user := uuid.New()
	for _, entry := range processed {
		f, err := os.Open(filepath.Join(inbox, cron.ProcessedDir, entry.Name()))
		require.NoError(t, err)
		_, err = archive.Save(context.Background(), user, entry.Name(), f)
		f.Close()
		require.NoError(t, err)
	}

	statements, err := archive.List(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, statements, 2)

	// an archived statement imports the same way as the original upload
	rc, st, err := archive.Open(context.Background(), user, statements[0].ID)
	require.NoError(t, err)
	defer rc.Close()
	again, err := svc.Import(context.Background(), rc, st.Name, importservice.ImportOptions{})
	require.NoError(t, err)
	assert.Len(t, again.Transactions, 2)
}
