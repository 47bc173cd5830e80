package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/parser"
)

func normalizeCSVBytes(data []byte) []byte {
	data = stripUTF8BOM(data)
	if utf8.Valid(data) {
		return data
	}
	return decodeLatin1(data)
}

func stripUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// decodeLatin1 reads bytes as Windows-1252, the superset of Latin-1 that
// most bank exports actually use.
func decodeLatin1(data []byte) []byte {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

// fingerprint is the dedup key: SHA-256 of date, amount and the lowercased,
// whitespace-collapsed description.
func fingerprint(tx *parser.ParsedTransaction) string {
	desc := strings.ToLower(strings.Join(strings.Fields(tx.Description), " "))
	sum := sha256.Sum256([]byte(tx.Date.Format("2006-01-02") + "|" + tx.Amount.StringFixed(2) + "|" + desc))
	return hex.EncodeToString(sum[:])
}

// occurrenceFingerprint keeps the plain fingerprint for the first occurrence
// of a row and derives a distinct one for each repeat, so re-importing the
// same file yields the same keys.
func occurrenceFingerprint(base string, occurrence int) string {
	if occurrence == 0 {
		return base
	}
	sum := sha256.Sum256([]byte(base + "#" + strconv.Itoa(occurrence)))
	return hex.EncodeToString(sum[:])
}
