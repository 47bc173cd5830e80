package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelToCSV converts the transaction sheet of an XLSX workbook into
// comma-separated text so it can flow through the same row pipeline as CSV
// uploads. It returns the CSV bytes and the name of the sheet used.
func ExcelToCSV(reader io.Reader) ([]byte, string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := findTransactionSheet(f)
	if sheetName == "" {
		return nil, "", fmt.Errorf("no suitable sheet found")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, "", fmt.Errorf("failed to convert sheet %s: %w", sheetName, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to convert sheet %s: %w", sheetName, err)
	}
	return buf.Bytes(), sheetName, nil
}

// IsExcelFile reports whether the filename carries a workbook extension.
func IsExcelFile(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}

// findTransactionSheet finds the best sheet for transaction data
func findTransactionSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}

	// Look for sheets with transaction-related names
	preferredNames := []string{
		"transactions", "transaction history", "activity", "movimentos", "extrato",
		"statement", "umsätze", "data", "sheet1",
	}

	for _, preferred := range preferredNames {
		for _, sheet := range sheets {
			if strings.EqualFold(sheet, preferred) {
				return sheet
			}
		}
	}

	// Return first sheet as fallback
	return sheets[0]
}
