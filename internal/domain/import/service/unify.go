package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/parser"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/source"
)

// ErrUnifierDisabled is returned by the unify operations when the service was
// built without a unifier.
var ErrUnifierDisabled = errors.New("category unification is not configured")

// UnifyAggregated decides the persisted category and type of an aggregator
// transactions payload.
func (s *ImportService) UnifyAggregated(ctx context.Context, r io.Reader, accounts map[string]source.Account) ([]source.Unified, error) {
	if s.unifier == nil {
		return nil, ErrUnifierDisabled
	}
	ctx, span := s.tracer.Start(ctx, "import.UnifyAggregated")
	defer span.End()

	txs, err := source.DecodePlaid(r)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("transactions", len(txs)))

	unified := source.Unify(ctx, s.unifier, txs, accounts)
	s.logger.Info("aggregator transactions unified", slog.Int("count", len(unified)))
	return unified, nil
}

// UnifyImported runs the imported rows of a result through the unifier
// against the detected account.
func (s *ImportService) UnifyImported(ctx context.Context, result *ImportResult) ([]source.Unified, error) {
	if s.unifier == nil {
		return nil, ErrUnifierDisabled
	}
	_, span := s.tracer.Start(ctx, "import.UnifyImported", trace.WithAttributes(attribute.String("filename", result.Filename)))
	defer span.End()

	origin := categorization.SourceCSV
	if parser.IsExcelFile(result.Filename) {
		origin = categorization.SourceExcel
	}

	accounts := map[string]source.Account{}
	if d := result.DetectedAccount; d != nil {
		acct := source.Account{Type: d.AccountType, Subtype: d.AccountSubtype}
		accounts[""] = acct
		if result.MatchedAccountID != "" {
			accounts[result.MatchedAccountID] = acct
		}
	}
	return source.Unify(ctx, s.unifier, source.FromParsedAll(result.Transactions, origin), accounts), nil
}
