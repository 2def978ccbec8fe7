package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gitlab.connectwisedev.com/product-scanner/models"
)

// ErrTooFewProducts is returned when a bundle is requested for fewer than two products.
var ErrTooFewProducts = errors.New("need at least 2 products to create bundle ideas")

const (
	maxBundleProducts = 5
	bundleDiscount    = 0.10
	bundleMaxTokens   = 600
	bundleSystem      = "You are an Amazon FBA bundling expert. Answer in plain text, no markdown."
)

// SuggestBundle proposes a bundle built from up to five products. The second
// return value reports whether the text came from the search API; on any API
// failure a deterministic suggestion is returned instead.
func (s *Service) SuggestBundle(ctx context.Context, products []models.ProductRecord, category string) (string, bool, error) {
	if len(products) < 2 {
		return "", false, ErrTooFewProducts
	}
	if len(products) > maxBundleProducts {
		products = products[:maxBundleProducts]
	}

	if s.upstream != nil {
		text, err := s.upstream.Complete(ctx, bundleSystem, bundlePrompt(products, category), bundleMaxTokens)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), true, nil
		}
		s.logger.Warn().Err(err).Str("category", category).Msg("bundle suggestion failed, using template")
	}
	return templateBundle(products), false, nil
}

func bundlePrompt(products []models.ProductRecord, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest one product bundle for the %q category using these products:\n", categoryOrDefault(category))
	for _, p := range products {
		fmt.Fprintf(&b, "- %s (ASIN %s, $%.2f, supplier cost $%.2f)\n", p.Title, p.ASIN, p.Price, p.SupplierPrice)
	}
	b.WriteString("Give a bundle name, which products to include, a bundle price and one sentence on why it sells.")
	return b.String()
}

func templateBundle(products []models.ProductRecord) string {
	titles := make([]string, len(products))
	var retail, cost float64
	for i, p := range products {
		titles[i] = p.Title
		retail += p.Price
		cost += p.SupplierPrice
	}
	price := round2(retail * (1 - bundleDiscount))
	return fmt.Sprintf("Bundle idea: %s. Combined retail $%.2f, suggested bundle price $%.2f (%.0f%% off), sourcing cost $%.2f.",
		strings.Join(titles, " + "), retail, price, bundleDiscount*100, cost)
}
