// Package handler exposes the import pipeline over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/account"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
	importservice "github.com/aksumit1/budgetbuddy-backend/internal/domain/import/service"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/source"
	"github.com/aksumit1/budgetbuddy-backend/pkg/storage"
)

// UserIDHeader carries the caller's user id. Authentication happens upstream.
const UserIDHeader = "X-User-ID"

// StatementIDHeader returns the archive id of an uploaded statement.
const StatementIDHeader = "X-Statement-ID"

const defaultUploadName = "upload.csv"

// ImportHandler handles statement uploads, aggregator unification and
// merchant rules.
type ImportHandler struct {
	importSvc      *importservice.ImportService
	rules          *categorization.Service
	accounts       account.Store
	archive        storage.Archive
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importSvc *importservice.ImportService, rules *categorization.Service, maxUploadBytes int64, logger *slog.Logger) *ImportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportHandler{
		importSvc:      importSvc,
		rules:          rules,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// WithAccounts lets the unify endpoint look up the user's account types
func (h *ImportHandler) WithAccounts(store account.Store) *ImportHandler {
	h.accounts = store
	return h
}

// WithArchive keeps a copy of every statement uploaded by a known user
func (h *ImportHandler) WithArchive(archive storage.Archive) *ImportHandler {
	h.archive = archive
	return h
}

// Register mounts the routes on mux
func (h *ImportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/imports", h.Import)
	mux.HandleFunc("GET /v1/statements", h.ListStatements)
	mux.HandleFunc("POST /v1/statements/{id}/import", h.ImportStatement)
	mux.HandleFunc("POST /v1/transactions/unify", h.Unify)
	mux.HandleFunc("POST /v1/classify", h.Classify)
	mux.HandleFunc("POST /v1/rules", h.CreateRule)
}

// Import accepts a statement either as the "file" part of a multipart form
// or as the raw request body (name taken from ?filename=).
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	opts, err := importOptions(r, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	body, filename, err := uploadedFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.archive != nil && userID != uuid.Nil {
		st, err := h.archive.Save(r.Context(), userID, filename, body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "statement is too large")
				return
			}
			h.logger.Error("failed to archive statement", slog.String("filename", filename), slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "import failed")
			return
		}
		rc, _, err := h.archive.Open(r.Context(), userID, st.ID)
		if err != nil {
			h.logger.Error("failed to reopen statement", slog.String("statement_id", st.ID.String()), slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "import failed")
			return
		}
		defer rc.Close()
		body = rc
		w.Header().Set(StatementIDHeader, st.ID.String())
	}

	h.runImport(w, r, body, filename, opts)
}

// ListStatements returns the caller's archived statements
func (h *ImportHandler) ListStatements(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireArchive(w, r)
	if !ok {
		return
	}
	statements, err := h.archive.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list statements", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list statements")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statements": statements})
}

// ImportStatement runs the importer again on an archived statement, picking
// up merchant rules added since the upload.
func (h *ImportHandler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireArchive(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid statement id")
		return
	}
	opts, err := importOptions(r, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rc, st, err := h.archive.Open(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to open statement", slog.String("statement_id", id.String()), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}
	defer rc.Close()

	w.Header().Set(StatementIDHeader, st.ID.String())
	h.runImport(w, r, rc, st.Name, opts)
}

func (h *ImportHandler) runImport(w http.ResponseWriter, r *http.Request, body io.Reader, filename string, opts importservice.ImportOptions) {
	result, err := h.importSvc.Import(r.Context(), body, filename, opts)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "statement is too large")
		case errors.Is(err, importservice.ErrReadFailed):
			writeError(w, http.StatusBadRequest, "statement could not be read")
		default:
			h.logger.Error("import failed", slog.String("filename", filename), slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "import failed")
		}
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv")
		if err := importservice.ExportCSV(w, result.Transactions); err != nil {
			h.logger.Error("csv export failed", slog.Any("error", err))
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Unify decides category and type for an aggregator transactions payload
func (h *ImportHandler) Unify(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	unified, err := h.importSvc.UnifyAggregated(r.Context(), r.Body, h.userAccounts(r, userID))
	if err != nil {
		switch {
		case errors.Is(err, importservice.ErrUnifierDisabled):
			writeError(w, http.StatusNotImplemented, err.Error())
		case errors.Is(err, source.ErrNoTransactions):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, "invalid transactions payload")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": unified})
}

type classifyRequest struct {
	Description    string `json:"description"`
	Merchant       string `json:"merchant"`
	Amount         string `json:"amount"`
	Category       string `json:"category"`
	PaymentChannel string `json:"paymentChannel"`
	AccountType    string `json:"accountType"`
	AccountSubtype string `json:"accountSubtype"`
}

type classifyResponse struct {
	Category string `json:"category"`
	Stage    string `json:"stage"`
	Type     string `json:"type"`
}

// Classify runs the classifier on a single transaction description
func (h *ImportHandler) Classify(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" && strings.TrimSpace(req.Merchant) == "" {
		writeError(w, http.StatusBadRequest, "description or merchant is required")
		return
	}
	amount := decimal.Zero
	if req.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(req.Amount); err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
	}

	in := categorization.Input{
		RawCategory:    req.Category,
		Description:    req.Description,
		Merchant:       req.Merchant,
		Amount:         amount,
		PaymentChannel: req.PaymentChannel,
		AccountType:    req.AccountType,
		AccountSubtype: req.AccountSubtype,
	}
	in.TransactionType = string(categorization.DetermineType(req.AccountType, req.AccountSubtype, req.Category, req.Category, amount))
	category, stage := h.rules.ClassifierFor(r.Context(), userID).ClassifyWithTrace(r.Context(), in)
	writeJSON(w, http.StatusOK, classifyResponse{
		Category: category,
		Stage:    stage,
		Type:     string(categorization.DetermineType(req.AccountType, req.AccountSubtype, category, category, amount)),
	})
}

type ruleRequest struct {
	Pattern         string `json:"pattern"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Priority        int    `json:"priority"`
	ApplyToExisting bool   `json:"applyToExisting"`
}

type ruleResponse struct {
	ID       string `json:"id"`
	Pattern  string `json:"pattern"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
	Updated  int64  `json:"updated"`
}

// CreateRule stores a user merchant rule. Posting a pattern the user already
// has replaces its name, category and priority.
func (h *ImportHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if userID == uuid.Nil {
		writeError(w, http.StatusUnauthorized, UserIDHeader+" header is required")
		return
	}
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, updated, err := h.rules.CreateRule(r.Context(), userID, categorization.MerchantRule{
		Pattern:  req.Pattern,
		Name:     req.Name,
		Category: req.Category,
	}, req.Priority, req.ApplyToExisting)
	if err != nil {
		switch {
		case errors.Is(err, categorization.ErrInvalidRule):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, categorization.ErrNoRuleStore):
			writeError(w, http.StatusNotImplemented, "merchant rules are not available")
		default:
			h.logger.Error("failed to create rule", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "failed to create rule")
		}
		return
	}
	writeJSON(w, http.StatusCreated, ruleResponse{
		ID:       rule.ID.String(),
		Pattern:  rule.Pattern,
		Name:     rule.Name,
		Category: rule.Category,
		Priority: rule.Priority,
		Updated:  updated,
	})
}

// userID reads the optional user header. A malformed id is rejected.
func (h *ImportHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+UserIDHeader+" header")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ImportHandler) requireArchive(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return uuid.Nil, false
	}
	if userID == uuid.Nil {
		writeError(w, http.StatusUnauthorized, UserIDHeader+" header is required")
		return uuid.Nil, false
	}
	if h.archive == nil {
		writeError(w, http.StatusNotImplemented, "statement archive is not configured")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *ImportHandler) userAccounts(r *http.Request, userID uuid.UUID) map[string]source.Account {
	if h.accounts == nil || userID == uuid.Nil {
		return nil
	}
	accounts, err := h.accounts.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Warn("failed to list accounts for unify", slog.Any("error", err))
		return nil
	}
	out := make(map[string]source.Account, len(accounts))
	for _, acc := range accounts {
		a := source.Account{Type: acc.AccountType, Subtype: acc.AccountSubtype}
		if acc.PlaidAccountID != "" {
			out[acc.PlaidAccountID] = a
		}
		out[acc.ID.String()] = a
	}
	return out
}

func importOptions(r *http.Request, userID uuid.UUID) (importservice.ImportOptions, error) {
	q := r.URL.Query()
	opts := importservice.ImportOptions{UserID: userID, AccountID: q.Get("account_id")}
	if v := q.Get("header_row"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, errors.New("header_row must be a positive integer")
		}
		opts.HeaderRow = n
	}
	if v := q.Get("delimiter"); v != "" {
		if v == `\t` || v == "tab" {
			v = "\t"
		}
		runes := []rune(v)
		if len(runes) != 1 {
			return opts, errors.New("delimiter must be a single character")
		}
		opts.Delimiter = runes[0]
	}
	return opts, nil
}

// uploadedFile returns the statement stream and its name.
func uploadedFile(r *http.Request) (io.Reader, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("filename")
		if name == "" {
			name = defaultUploadName
		}
		return r.Body, name, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", errors.New("invalid multipart body")
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", errors.New(`multipart body has no "file" part`)
		}
		if err != nil {
			return nil, "", errors.New("invalid multipart body")
		}
		if part.FormName() != "file" {
			continue
		}
		name := part.FileName()
		if name == "" {
			name = defaultUploadName
		}
		return part, name, nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
