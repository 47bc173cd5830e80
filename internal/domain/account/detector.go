package account

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	generatedNameRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(csv|xlsx|xls|pdf)$`)
	extensionRe     = regexp.MustCompile(`\.(csv|xlsx|xlsm|xls|pdf|txt)$`)
	lettersDigitsRe = regexp.MustCompile(`([a-z]+)(\d{4})(?:_|\s|$)`)
	separatedDigits = regexp.MustCompile(`(?:^|_|\s)(\d{4})(?:$|_|\s)`)

	accountNumberRe = regexp.MustCompile(`(?i)(?:` +
		`(?:account|acct|card|credit\s*card|debit\s*card|savings\s*account|checking\s*account|loan\s*account|mortgage\s*account)\s*(?:number|#|no\.?)?\s*` +
		`(?:ending\s*(?:in|with)?\s*:?\s*|with\s*(?:last\s*)?(?:4\s*|four\s*)?(?:digits?|numbers?)\s*:?\s*)` +
		`|last\s*(?:4\s*|four\s*)?(?:digits?|numbers?)\s*:?\s*` +
		`|(?:account|acct|card|credit\s*card|debit\s*card|savings|checking|investment|brokerage|loan|mortgage)\s*(?:number|#|no\.?)\s*:?\s*` +
		`)([*xX\s-]{0,24}(?:\d[\s-]*){3,19}\d)`)
	maskedCardRe = regexp.MustCompile(`[*xX]{2,}[\s-]*(\d{4})\b`)
	maskChars    = regexp.MustCompile(`[^0-9]`)

	balanceLabelRe = regexp.MustCompile(`(?i)(?:new|current|closing|ending|statement|available|ledger|outstanding)?\s*balance\s*[:：]?\s*(\(?[-+]?\s*[$€£¥₹]?\s*\d[\d,.]*\)?(?:\s*(?:CR|DR)\b)?)`)
)

// Detector extracts account metadata from statement filenames, header rows and
// the free-text lines some banks print above the header.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a detector
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// DetectFromFilename extracts institution, type and last four digits from a
// name such as "chase_checking_1234.csv". Generated names return nil.
func (d *Detector) DetectFromFilename(filename string) *DetectedAccount {
	lower := strings.ToLower(strings.TrimSpace(filename))
	if lower == "" {
		return nil
	}
	if strings.HasPrefix(lower, "unknown") || strings.HasPrefix(lower, "import_") || generatedNameRe.MatchString(lower) {
		d.logger.Debug("skipping account detection for generated filename", slog.String("filename", filename))
		return nil
	}

	name := extensionRe.ReplaceAllString(lower, "")
	normalized := strings.NewReplacer("_", " ", "-", " ").Replace(name)

	detected := &DetectedAccount{
		InstitutionName: institutionIn(normalized),
		AccountType:     accountTypeFromFilename(normalized),
	}

	detected.AccountSubtype = subtypeFor(detected.AccountType, normalized)

	if m := lettersDigitsRe.FindStringSubmatch(name); m != nil {
		detected.AccountNumber = m[2]
	} else if m := separatedDigits.FindStringSubmatch(name); m != nil {
		detected.AccountNumber = m[1]
	}

	if detected.InstitutionName != "" && detected.AccountType != "" {
		detected.AccountName = generateAccountName(detected.InstitutionName, detected.AccountType,
			detected.AccountSubtype, detected.AccountNumber)
	}

	if detected.Empty() {
		return nil
	}
	d.logger.Debug("detected account from filename",
		slog.String("filename", filename),
		slog.String("institution", detected.InstitutionName),
		slog.String("type", detected.AccountType),
	)
	return detected
}

// DetectFromHeaders inspects the header row and filename. For transaction
// tables only the account number may come from the header text; institution
// and type come from the filename, since columns such as "type" describe the
// transaction rather than the account.
func (d *Detector) DetectFromHeaders(headers []string, filename string) *DetectedAccount {
	if len(headers) == 0 {
		return d.DetectFromFilename(filename)
	}

	isTransactionTable := IsTransactionTable(headers)
	text := strings.Join(headers, " ")

	detected := &DetectedAccount{AccountNumber: extractAccountNumber(text)}

	for _, h := range headers {
		if label, value, ok := splitLabel(h); ok && value != "" {
			switch {
			case containsAny(label, institutionHeaderKeywords) || containsAny(label, productNameKeywords):
				detected.InstitutionName = normalizeInstitutionName(value)
			case strings.Contains(label, "account name"):
				detected.AccountName = value
			}
		}
	}

	if !isTransactionTable {
		detected.AccountType = accountTypeIn(strings.ToLower(text))
		detected.AccountSubtype = subtypeFor(detected.AccountType, strings.ToLower(text))
		if detected.InstitutionName == "" && len(headers) > 1 && len(strings.TrimSpace(text)) > 10 {
			detected.InstitutionName = institutionIn(strings.ToLower(text))
		}
		if bal, ok := extractLabelledBalance(text); ok {
			detected.Balance = &bal
		}
	}

	if fromFilename := d.DetectFromFilename(filename); fromFilename != nil {
		if isTransactionTable {
			if fromFilename.InstitutionName != "" {
				detected.InstitutionName = fromFilename.InstitutionName
			}
			if fromFilename.AccountType != "" {
				detected.AccountType = fromFilename.AccountType
				detected.AccountSubtype = fromFilename.AccountSubtype
			}
			if fromFilename.AccountNumber != "" {
				detected.AccountNumber = fromFilename.AccountNumber
			}
		} else {
			detected.merge(fromFilename)
		}
	}

	if detected.Empty() {
		return nil
	}
	return detected
}

// DetectFromPreamble reads the metadata lines printed above the header row,
// e.g. "Account Number: ****1234" or "Closing balance: $1,234.56".
func (d *Detector) DetectFromPreamble(lines []string) *DetectedAccount {
	if len(lines) == 0 {
		return nil
	}
	text := strings.Join(lines, " ")
	lower := strings.ToLower(text)

	detected := &DetectedAccount{
		AccountNumber:   extractAccountNumber(text),
		InstitutionName: institutionIn(lower),
		AccountType:     accountTypeIn(lower),
	}
	detected.AccountSubtype = subtypeFor(detected.AccountType, lower)
	if bal, ok := extractLabelledBalance(text); ok {
		detected.Balance = &bal
	}
	if detected.Empty() {
		return nil
	}
	d.logger.Debug("detected account from preamble",
		slog.Int("lines", len(lines)),
		slog.String("institution", detected.InstitutionName),
		slog.String("account_number", detected.AccountNumber),
	)
	return detected
}

// Detect combines header, preamble and filename signals. Header and filename
// values win over preamble ones.
func (d *Detector) Detect(preamble, headers []string, filename string) *DetectedAccount {
	detected := d.DetectFromHeaders(headers, filename)
	fromPreamble := d.DetectFromPreamble(preamble)
	switch {
	case detected == nil:
		detected = fromPreamble
	case fromPreamble != nil:
		detected.merge(fromPreamble)
	}
	if detected != nil && detected.AccountName == "" && detected.InstitutionName != "" && detected.AccountType != "" {
		detected.AccountName = generateAccountName(detected.InstitutionName, detected.AccountType,
			detected.AccountSubtype, detected.AccountNumber)
	}
	return detected
}

// DetectFromRows reads account columns that some exports repeat on every
// transaction row, such as "Card No." or "Account Type". Only the first
// DefaultSampleMax rows are looked at and the first usable value per column
// wins. Generic "type" and "category" columns describe transactions and are
// ignored.
func (d *Detector) DetectFromRows(headers []string, rows [][]string) *DetectedAccount {
	if len(headers) == 0 || len(rows) == 0 {
		return nil
	}
	if len(rows) > DefaultSampleMax {
		rows = rows[:DefaultSampleMax]
	}

	numberCols := columnsNamed(headers, accountNumberColumns())
	institutionCols := columnsNamed(headers, InstitutionKeywords())
	typeCols := columnsNamed(headers, rowAccountTypeColumns())
	if len(numberCols)+len(institutionCols)+len(typeCols) == 0 {
		return nil
	}

	detected := &DetectedAccount{}
	for _, row := range rows {
		if detected.AccountNumber == "" {
			for _, v := range cellsAt(row, numberCols) {
				if n := lastFourDigits(v); n != "" {
					detected.AccountNumber = n
					break
				}
			}
		}
		if detected.InstitutionName == "" {
			for _, v := range cellsAt(row, institutionCols) {
				if name := institutionIn(strings.ToLower(v)); name != "" {
					detected.InstitutionName = name
					break
				}
				if lastFourDigits(v) == "" {
					detected.InstitutionName = v
					break
				}
			}
		}
		if detected.AccountType == "" {
			for _, v := range cellsAt(row, typeCols) {
				lower := strings.ToLower(v)
				if t := accountTypeFromFilename(lower); t != "" {
					detected.AccountType = t
					detected.AccountSubtype = subtypeFor(t, lower)
					break
				}
			}
		}
	}

	if detected.Empty() {
		return nil
	}
	d.logger.Debug("detected account from rows",
		slog.Int("rows", len(rows)),
		slog.String("institution", detected.InstitutionName),
		slog.String("account_number", detected.AccountNumber),
		slog.String("type", detected.AccountType),
	)
	return detected
}

// columnsNamed returns the indexes of headers equal to one of names.
func columnsNamed(headers, names []string) []int {
	var out []int
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func cellsAt(row []string, cols []int) []string {
	out := make([]string, 0, len(cols))
	for _, i := range cols {
		if i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// lastFourDigits keeps the last four digits of a masked or full number such
// as "****1234" or "XXXX-XXXX-XXXX-1234".
func lastFourDigits(v string) string {
	digits := maskChars.ReplaceAllString(v, "")
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

// IsTransactionTable reports whether at least three headers name
// per-transaction columns such as date, amount or description.
func IsTransactionTable(headers []string) bool {
	count := 0
	for _, keyword := range transactionColumnKeywords {
		for _, header := range headers {
			h := strings.ToLower(strings.TrimSpace(header))
			if h == keyword ||
				strings.HasPrefix(h, keyword+" ") ||
				strings.HasSuffix(h, " "+keyword) ||
				strings.Contains(h, " "+keyword+" ") {
				count++
				break
			}
		}
	}
	return count >= 3
}

// extractAccountNumber finds a labelled or masked account number and keeps
// its last four digits.
func extractAccountNumber(text string) string {
	if len(text) > 10000 {
		text = text[:10000]
	}
	for _, re := range []*regexp.Regexp{accountNumberRe, maskedCardRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		digits := maskChars.ReplaceAllString(m[len(m)-1], "")
		if len(digits) >= 4 {
			return digits[len(digits)-4:]
		}
	}
	return ""
}

func extractLabelledBalance(text string) (decimal.Decimal, bool) {
	m := balanceLabelRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	return ExtractBalanceFromValue(m[1])
}

func accountTypeFromFilename(normalized string) string {
	for _, p := range []string{"credit card", "creditcard", "card"} {
		if containsWord(normalized, p) {
			return TypeCredit
		}
	}
	return accountTypeIn(normalized)
}

func subtypeFor(accountType, lower string) string {
	switch accountType {
	case TypeDepository:
		if containsWord(lower, "checking") || containsWord(lower, "check") {
			return SubtypeChecking
		}
		if containsWord(lower, "savings") || containsWord(lower, "saving") {
			return SubtypeSavings
		}
	case TypeCredit:
		return SubtypeCreditCard
	}
	return ""
}

func accountTypeIn(lower string) string {
	for _, p := range accountTypePatterns {
		if containsWord(lower, p.keyword) {
			return p.accountType
		}
	}
	return ""
}

func institutionIn(lower string) string {
	for _, keyword := range institutionKeywords {
		if containsWord(lower, keyword) {
			return normalizeInstitutionName(keyword)
		}
	}
	return ""
}

// splitLabel splits "Institution Name: Chase" into its label and value.
func splitLabel(header string) (label, value string, ok bool) {
	idx := strings.IndexAny(header, ":：")
	if idx < 0 {
		return "", "", false
	}
	label = strings.ToLower(strings.TrimSpace(header[:idx]))
	_, size := utf8.DecodeRuneInString(header[idx:])
	value = strings.TrimSpace(header[idx+size:])
	return label, value, true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if containsWord(s, k) {
			return true
		}
	}
	return false
}

// containsWord reports whether keyword occurs in s without a letter directly
// before or after it, so "ubs" does not match "subscriptions".
func containsWord(s, keyword string) bool {
	if keyword == "" {
		return false
	}
	for start := 0; start < len(s); {
		idx := strings.Index(s[start:], keyword)
		if idx < 0 {
			return false
		}
		i := start + idx
		j := i + len(keyword)
		if (i == 0 || !isLetter(s[i-1])) && (j == len(s) || !isLetter(s[j])) {
			return true
		}
		start = i + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
