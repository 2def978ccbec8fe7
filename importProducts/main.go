package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"gitlab.connectwisedev.com/product-scanner/pkg/app"
	"gitlab.connectwisedev.com/product-scanner/pkg/importer"
)

var application *app.App

func init() {
	var err error
	application, err = app.Bootstrap(context.Background(), "import-products")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
}

// ImportEvent carries a CSV export to add to a user's saved products.
type ImportEvent struct {
	UserID   string `json:"user_id"`
	Category string `json:"category,omitempty"`
	CSVData  string `json:"csv_data"`
}

// ImportResult summarises an import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

func handler(ctx context.Context, event ImportEvent) (ImportResult, error) {
	var result ImportResult
	if event.CSVData == "" {
		return result, errors.New("no CSV data found in the payload")
	}

	records, skipped, err := importer.Parse([]byte(event.CSVData), event.Category)
	if err != nil {
		return result, fmt.Errorf("failed to read CSV: %w", err)
	}
	for _, s := range skipped {
		log.Warn().Int("row", s.Row).Err(s.Err).Msg("Skipping CSV row")
		result.Skipped = append(result.Skipped, s.Error())
	}

	for _, p := range records {
		if _, err := application.Store.SaveProduct(ctx, event.UserID, p); err != nil {
			// Storage failures apply to every row, so stop at the first one.
			return result, fmt.Errorf("failed to save product %s: %w", p.ASIN, err)
		}
		result.Imported++
	}

	log.Info().Int("imported", result.Imported).Int("skipped", len(skipped)).Msg("Products imported successfully")
	return result, nil
}

func main() {
	defer application.Close()
	lambda.Start(handler)
}
