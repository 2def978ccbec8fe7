// Package importer turns spreadsheet exports of product research into
// normalized records.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gitlab.connectwisedev.com/product-scanner/models"
	"gitlab.connectwisedev.com/product-scanner/pkg/research"
)

// ErrNoRows is returned for a CSV with a header and nothing else.
var ErrNoRows = errors.New("CSV is empty or has only headers")

// columnAliases maps accepted header names to the keys Normalize reads.
var columnAliases = map[string]string{
	"title":          "title",
	"name":           "title",
	"product":        "title",
	"asin":           "asin",
	"category":       "category",
	"price":          "price",
	"amazon_price":   "price",
	"supplier_price": "supplier_price",
	"cost":           "supplier_price",
	"bsr":            "bsr",
	"rank":           "bsr",
	"rating":         "rating",
	"reviews":        "reviews",
	"monthly_sales":  "monthly_sales",
	"sales":          "monthly_sales",
	"image_url":      "image_url",
	"image":          "image_url",
	"amazon_url":     "amazon_url",
	"supplier_url":   "supplier_url",
}

// RowError records a row that could not be read.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

// Parse reads a headed CSV. Unknown columns are ignored and every row is run
// through research.Normalize, so sparse rows still produce complete records.
// Malformed rows are skipped and reported.
func Parse(data []byte, category string) ([]models.ProductRecord, []RowError, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrNoRows
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = columnAliases[strings.ToLower(strings.TrimSpace(h))]
	}

	var (
		records []models.ProductRecord
		skipped []RowError
	)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped = append(skipped, RowError{Row: line, Err: err})
			continue
		}

		raw := make(map[string]any, len(row))
		for i, v := range row {
			if i >= len(columns) || columns[i] == "" || strings.TrimSpace(v) == "" {
				continue
			}
			raw[columns[i]] = strings.TrimSpace(v)
		}
		if len(raw) == 0 {
			skipped = append(skipped, RowError{Row: line, Err: errors.New("no recognised values")})
			continue
		}
		records = append(records, research.Normalize(raw, len(records), category, ""))
	}

	if len(records) == 0 && len(skipped) == 0 {
		return nil, nil, ErrNoRows
	}
	return records, skipped, nil
}
