// Package service provides the import orchestration logic.
package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/account"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/normalizer"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/parser"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/sniffer"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/tokenizer"
	"github.com/aksumit1/budgetbuddy-backend/pkg/money"
	"github.com/aksumit1/budgetbuddy-backend/pkg/telemetry"
)

// DefaultMaxTransactions caps the transactions taken from one file
const DefaultMaxTransactions = 10000

// mismatchLogLimit is how many column count mismatches are logged per file
const mismatchLogLimit = 3

// ErrReadFailed wraps failures to read the uploaded stream itself
var ErrReadFailed = errors.New("failed to read statement")

// User-facing informational messages
const (
	infoEmptyFile   = "file is empty; nothing to import"
	infoNoHeader    = "no header row found; nothing to import"
	infoEmptyHeader = "header row is empty; nothing to import"
	infoHeaderOnly  = "file has a header but no transaction rows"
)

// ImportResult contains the result of an import operation
type ImportResult struct {
	JobID            uuid.UUID                   `json:"jobId"`
	Filename         string                      `json:"filename"`
	Transactions     []*parser.ParsedTransaction `json:"transactions"`
	SuccessCount     int                         `json:"successCount"`
	FailureCount     int                         `json:"failureCount"`
	Errors           []string                    `json:"errors"`
	Info             []string                    `json:"info,omitempty"`
	DetectedAccount  *account.DetectedAccount    `json:"detectedAccount,omitempty"`
	MatchedAccountID string                      `json:"matchedAccountId,omitempty"`
	Truncated        bool                        `json:"truncated"`
	Duplicates       int                         `json:"duplicates"`
	// Repeated counts rows identical to an earlier row of the same file.
	// They are kept and get their own fingerprint.
	Repeated         int                         `json:"repeated"`
}

// ImportOptions allows callers to override detected file settings.
type ImportOptions struct {
	// UserID selects the user's merchant rules and enables account matching
	// and duplicate lookups against earlier imports.
	UserID uuid.UUID
	// AccountID skips account matching when the caller already knows it.
	AccountID string
	// HeaderRow is the 1-based header line; 0 auto-detects.
	HeaderRow int
	// Delimiter overrides the sniffed delimiter when non-zero.
	Delimiter rune
}

// Limits bounds a single import
type Limits struct {
	MaxTransactions int
	SampleMin       int
	SampleMax       int
	DefaultCurrency string
	BatchWorkers    int
}

// DefaultLimits returns the production limits
func DefaultLimits() Limits {
	return Limits{
		MaxTransactions: DefaultMaxTransactions,
		SampleMin:       account.DefaultSampleMin,
		SampleMax:       account.DefaultSampleMax,
		DefaultCurrency: money.USD,
		BatchWorkers:    4,
	}
}

// ImportService orchestrates statement parsing, account detection and
// classification.
type ImportService struct {
	classifiers *categorization.Service
	unifier     *categorization.Unifier
	detector    *account.Detector
	matcher     *account.Matcher
	store       account.Store // optional: nil disables cross-file dedup
	sanitizer   *normalizer.MerchantSanitizer
	metrics     *telemetry.Metrics
	tracer      trace.Tracer
	limits      Limits
	logger      *slog.Logger
}

// NewImportService creates a new import service. store may be nil.
func NewImportService(classifiers *categorization.Service, store account.Store, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}
	if classifiers == nil {
		classifiers = categorization.NewService(nil, nil, logger)
	}
	return &ImportService{
		classifiers: classifiers,
		detector:    account.NewDetector(logger),
		matcher:     account.NewMatcher(store, logger),
		store:       store,
		sanitizer:   normalizer.NewMerchantSanitizer(),
		tracer:      telemetry.Tracer(),
		limits:      DefaultLimits(),
		logger:      logger,
	}
}

// WithMetrics records row outcomes and durations on m
func (s *ImportService) WithMetrics(m *telemetry.Metrics) *ImportService {
	s.metrics = m
	return s
}

// WithLimits replaces the default limits. Zero fields keep their defaults.
func (s *ImportService) WithLimits(l Limits) *ImportService {
	d := DefaultLimits()
	if l.MaxTransactions <= 0 {
		l.MaxTransactions = d.MaxTransactions
	}
	if l.SampleMin <= 0 {
		l.SampleMin = d.SampleMin
	}
	if l.SampleMax < l.SampleMin {
		l.SampleMax = max(d.SampleMax, l.SampleMin)
	}
	if l.DefaultCurrency == "" {
		l.DefaultCurrency = d.DefaultCurrency
	}
	if l.BatchWorkers <= 0 {
		l.BatchWorkers = d.BatchWorkers
	}
	s.limits = l
	return s
}

// WithUnifier enables UnifyAggregated
func (s *ImportService) WithUnifier(u *categorization.Unifier) *ImportService {
	s.unifier = u
	return s
}

// importState is the per-file state threaded through the row loop
type importState struct {
	result           *ImportResult
	headers          []string
	parser           *parser.Parser
	classifier       *categorization.Classifier
	detected         *account.DetectedAccount
	inferType        bool
	inferred         bool
	statementBalance bool // the preamble printed the balance
	mismatches       int
	seen             map[string]int
	opts             ImportOptions
}

// Import reads one statement and converts its rows into transactions. Row
// problems are reported in the result; only a failure to read r is returned
// as an error.
func (s *ImportService) Import(ctx context.Context, r io.Reader, filename string, opts ImportOptions) (*ImportResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "import.Import", trace.WithAttributes(attribute.String("filename", filename)))
	defer span.End()

	result := &ImportResult{
		JobID:        uuid.New(),
		Filename:     filename,
		Transactions: []*parser.ParsedTransaction{},
		Errors:       []string{},
	}

	data, err := io.ReadAll(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	if parser.IsExcelFile(filename) {
		converted, sheet, err := parser.ExcelToCSV(bytes.NewReader(data))
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
		}
		s.logger.Debug("converted workbook", slog.String("filename", filename), slog.String("sheet", sheet))
		data = converted
	}
	data = normalizeCSVBytes(data)

	detectOpts := &sniffer.DetectOptions{HeaderRowIndex: -1, Delimiter: opts.Delimiter}
	if opts.HeaderRow > 0 {
		detectOpts.HeaderRowIndex = opts.HeaderRow - 1
	}
	config, err := sniffer.DetectConfigWithOptions(data, detectOpts)
	if err != nil {
		switch {
		case errors.Is(err, sniffer.ErrEmptyFile):
			result.Info = append(result.Info, infoEmptyFile)
		case errors.Is(err, sniffer.ErrNoHeadersFound), errors.Is(err, sniffer.ErrInvalidDelimiter):
			result.Info = append(result.Info, infoNoHeader)
		default:
			result.Info = append(result.Info, fmt.Sprintf("header row could not be read: %v", err))
		}
		s.logger.Info("nothing to import", slog.String("filename", filename), slog.Any("reason", err))
		return result, nil
	}

	headers, err := tokenizer.NormalizeHeaders(config.Headers, s.logger)
	if err != nil {
		result.Info = append(result.Info, infoEmptyHeader)
		return result, nil
	}

	st := &importState{
		result:  result,
		headers: headers,
		parser: parser.NewParser(parser.ParserConfig{
			HeaderLine:      strings.Join(config.Headers, string(config.Delimiter)),
			Filename:        filename,
			DefaultCurrency: s.limits.DefaultCurrency,
		}),
		classifier: s.classifiers.ClassifierFor(ctx, opts.UserID),
		seen:       make(map[string]int),
		opts:       opts,
	}
	st.detected = s.detectAccount(ctx, config, filename)
	if fromRows := s.detector.DetectFromRows(headers, sampleRows(data, config, len(headers))); fromRows != nil {
		st.detected.Merge(fromRows)
	}
	st.inferType = st.detected.AccountType == ""
	st.statementBalance = st.detected.Balance != nil

	if err := s.readRows(ctx, st, data, config); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.finishAccount(ctx, st)
	if len(result.Transactions) == 0 && result.FailureCount == 0 && result.Duplicates == 0 {
		result.Info = append(result.Info, infoHeaderOnly)
	}

	elapsed := time.Since(start)
	s.metrics.ImportFinished(elapsed)
	span.SetAttributes(
		attribute.Int("import.success", result.SuccessCount),
		attribute.Int("import.failed", result.FailureCount),
		attribute.Bool("import.truncated", result.Truncated),
	)
	s.logger.Info("statement imported",
		slog.String("job_id", result.JobID.String()),
		slog.String("filename", filename),
		slog.Int("imported", result.SuccessCount),
		slog.Int("failed", result.FailureCount),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("repeated", result.Repeated),
		slog.Bool("truncated", result.Truncated),
		slog.Duration("elapsed", elapsed),
	)
	return result, nil
}

// bodyReader yields the records below the header line, or nil when there
// are none.
func bodyReader(data []byte, config *sniffer.FileConfig) *tokenizer.Reader {
	lines := bytes.SplitAfter(data, []byte("\n"))
	if config.SkipLines+1 >= len(lines) {
		return nil
	}
	body := bytes.Join(lines[config.SkipLines+1:], nil)
	return tokenizer.NewReader(bytes.NewReader(body), config.Delimiter, config.SkipLines+2)
}

// sampleRows reads the first account.DefaultSampleMax records for the
// row-level account detector. Malformed records are skipped.
func sampleRows(data []byte, config *sniffer.FileConfig, width int) [][]string {
	reader := bodyReader(data, config)
	if reader == nil {
		return nil
	}
	rows := make([][]string, 0, account.DefaultSampleMax)
	for len(rows) < account.DefaultSampleMax {
		fields, _, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			break
		}
		fields, _ = tokenizer.FitWidth(fields, width)
		rows = append(rows, fields)
	}
	return rows
}

// readRows runs the row loop over everything below the header line.
func (s *ImportService) readRows(ctx context.Context, st *importState, data []byte, config *sniffer.FileConfig) error {
	reader := bodyReader(data, config)
	if reader == nil {
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields, line, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return fmt.Errorf("%w: %w", ErrReadFailed, err)
			}
			s.fail(st, fmt.Sprintf("row %d: %v", line, perr.Err))
			continue
		}

		if len(st.result.Transactions) >= s.limits.MaxTransactions {
			st.result.Truncated = true
			st.result.Errors = append(st.result.Errors, fmt.Sprintf(
				"transaction limit of %d reached; remaining rows were not imported", s.limits.MaxTransactions))
			s.metrics.RowProcessed(telemetry.OutcomeTruncated)
			s.logger.Warn("transaction limit reached", slog.Int("limit", s.limits.MaxTransactions), slog.Int("row", line))
			return nil
		}

		var pc panics.Catcher
		pc.Try(func() { s.processRow(ctx, st, fields, line) })
		if rec := pc.Recovered(); rec != nil {
			s.logger.Error("row processing panicked", slog.Int("row", line), slog.Any("panic", rec.Value))
			s.fail(st, fmt.Sprintf("row %d: unexpected error while processing row", line))
		}
	}
}

// processRow turns one record into a transaction or a row error.
func (s *ImportService) processRow(ctx context.Context, st *importState, fields []string, line int) {
	fields, changed := tokenizer.FitWidth(fields, len(st.headers))
	if changed {
		st.mismatches++
		if st.mismatches <= mismatchLogLimit {
			s.logger.Warn("column count mismatch",
				slog.Int("row", line),
				slog.Int("expected", len(st.headers)),
			)
		}
	}

	row := parser.NewRawRow(st.headers, fields)
	tx, perr := st.parser.ParseRow(row, line)
	if perr != nil {
		s.fail(st, fmt.Sprintf("row %d: %s", line, perr.Message))
		return
	}
	if tx.Clamped {
		s.logger.Warn("amount clamped", slog.Int("row", line))
	}
	// card statements print purchases as positive amounts
	if st.detected.IsCredit() && !tx.Oriented {
		tx.Amount = tx.Amount.Neg()
	}

	if st.inferType && !st.inferred && !st.detected.Tally.Full() {
		st.detected.Tally = st.detected.Tally.Observe(tx.Description, row.Get(parser.IndicatorColumns...))
		if st.detected.Tally.Ready() {
			s.inferAccountType(st)
		}
	}
	// a card's running balance column does not override the statement balance
	if tx.Balance != nil && (st.detected.IsDepository() || !st.statementBalance) {
		st.detected.ObserveBalance(*tx.Balance, tx.Date)
	}

	merchant := tx.MerchantName
	if merchant == "" {
		merchant = tx.Description
	}
	tx.MerchantName = s.sanitizer.Sanitize(merchant).NormalizedName

	acctType, subtype := st.detected.AccountType, st.detected.AccountSubtype
	prelim := categorization.DetermineType(acctType, subtype, tx.ImporterCategoryPrimary, tx.ImporterCategoryDetailed, tx.Amount)
	rawCategory := tx.ImporterCategoryPrimary
	if rawCategory == "" {
		rawCategory = tx.ImporterCategoryDetailed
	}
	category := st.classifier.Classify(ctx, categorization.Input{
		RawCategory:          rawCategory,
		Description:          tx.Description,
		Merchant:             tx.MerchantName,
		Amount:               tx.Amount,
		PaymentChannel:       tx.PaymentChannel,
		DebitCreditIndicator: tx.DebitCreditIndicator,
		TransactionType:      string(prelim),
		AccountType:          acctType,
		AccountSubtype:       subtype,
	})
	tx.CategoryPrimary = category
	tx.CategoryDetailed = category
	tx.TransactionType = string(categorization.DetermineType(acctType, subtype, category, category, tx.Amount))

	tx.AccountID = st.opts.AccountID
	base := fingerprint(tx)
	occurrence := st.seen[base]
	st.seen[base] = occurrence + 1
	if occurrence > 0 {
		st.result.Repeated++
	}
	tx.Fingerprint = occurrenceFingerprint(base, occurrence)
	if s.isDuplicate(ctx, st, tx) {
		st.result.Duplicates++
		s.metrics.RowProcessed(telemetry.OutcomeDuplicate)
		return
	}

	st.result.Transactions = append(st.result.Transactions, tx)
	st.result.SuccessCount++
	s.metrics.RowProcessed(telemetry.OutcomeImported)
}

func (s *ImportService) fail(st *importState, msg string) {
	st.result.FailureCount++
	st.result.Errors = append(st.result.Errors, msg)
	s.metrics.RowProcessed(telemetry.OutcomeFailed)
}

// isDuplicate looks the row up among earlier imports. Identical rows inside
// one file are separate transactions and never count as duplicates.
func (s *ImportService) isDuplicate(ctx context.Context, st *importState, tx *parser.ParsedTransaction) bool {
	if s.store == nil || st.opts.UserID == uuid.Nil {
		return false
	}
	id, err := s.store.FindDuplicate(ctx, account.CompositeKey{
		UserID:      st.opts.UserID,
		AccountID:   tx.AccountID,
		Amount:      tx.Amount,
		Date:        tx.Date,
		Description: tx.Description,
	})
	if err != nil {
		if !errors.Is(err, account.ErrNotFound) {
			s.logger.Warn("duplicate lookup failed", slog.Int("row", tx.RowNumber), slog.Any("error", err))
		}
		return false
	}
	return id != ""
}

// detectAccount runs header, preamble and filename detection.
func (s *ImportService) detectAccount(ctx context.Context, config *sniffer.FileConfig, filename string) *account.DetectedAccount {
	_, span := s.tracer.Start(ctx, "import.DetectAccount")
	defer span.End()

	detected := s.detector.Detect(config.Preamble, config.Headers, filename)
	if detected == nil {
		detected = &account.DetectedAccount{}
	}
	detected.Tally = account.NewTally(s.limits.SampleMin, s.limits.SampleMax)
	span.SetAttributes(
		attribute.String("account.type", detected.AccountType),
		attribute.String("account.institution", detected.InstitutionName),
	)
	return detected
}

// inferAccountType applies the tally once it is conclusive. An inconclusive
// tally is retried on later rows and again at end of file.
func (s *ImportService) inferAccountType(st *importState) {
	accountType, subtype, ok := st.detected.Tally.Infer()
	if !ok {
		return
	}
	st.inferred = true
	st.detected.AccountType = accountType
	st.detected.AccountSubtype = subtype
	for _, tx := range st.result.Transactions {
		tx.TransactionType = string(categorization.DetermineType(accountType, subtype, tx.CategoryPrimary, tx.CategoryDetailed, tx.Amount))
	}
	s.logger.Info("account type inferred from transactions",
		slog.String("account_type", accountType),
		slog.String("account_subtype", subtype),
		slog.Int("sampled", st.detected.Tally.Sampled),
	)
}

// finishAccount runs the end-of-file inference, matches the account and
// attaches the result.
func (s *ImportService) finishAccount(ctx context.Context, st *importState) {
	if st.inferType && !st.inferred {
		s.inferAccountType(st)
	}

	detected := st.detected
	if detected.Empty() {
		return
	}
	st.result.DetectedAccount = detected

	matchedID := st.opts.AccountID
	if matchedID == "" {
		id, err := s.matcher.MatchToExisting(ctx, st.opts.UserID, detected)
		if err != nil {
			s.logger.Warn("account matching failed", slog.Any("error", err))
		}
		matchedID = id
	}
	if matchedID == "" {
		return
	}
	detected.MatchedAccountID = matchedID
	st.result.MatchedAccountID = matchedID
	for _, tx := range st.result.Transactions {
		if tx.AccountID == "" {
			tx.AccountID = matchedID
		}
	}
}
