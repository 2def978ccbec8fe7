package research

import (
	"fmt"
	"math"

	"gitlab.connectwisedev.com/product-scanner/models"
)

// DefaultBatchSize is the number of records every search returns.
const DefaultBatchSize = 8

var fallbackAdjectives = [...]string{
	"Premium", "Professional", "Deluxe", "Ultimate",
	"Essential", "Advanced", "Compact", "Portable",
}

// Fallback synthesizes count placeholder records for a search without any
// I/O. Names are unique within the batch; cost rises and sales fall with the
// index. Only the ASINs are random.
func Fallback(category, keyword string, count int) []models.ProductRecord {
	if count <= 0 {
		count = DefaultBatchSize
	}
	term := titleCase(searchTerm(category, keyword))
	cat := categoryOrDefault(category)

	out := make([]models.ProductRecord, count)
	for i := range out {
		name := fallbackAdjectives[i%len(fallbackAdjectives)] + " " + term
		if round := i / len(fallbackAdjectives); round > 0 {
			name = fmt.Sprintf("%s %d", name, round+1)
		}

		p := models.ProductRecord{
			Title:          name,
			ASIN:           NewASIN(),
			Category:       cat,
			Price:          round2(19.99 + 4*float64(i)),
			SupplierPrice:  round2(5.5 + 1.75*float64(i)),
			BestSellerRank: 3000 + 2500*i,
			Rating:         math.Max(3.0, round2(4.8-0.05*float64(i))),
			ReviewCount:    max(25, 2400-250*i),
			MonthlySales:   max(30, 1500-150*i),
		}
		fillLinks(&p)
		recomputeProfit(&p)
		out[i] = p
	}
	return out
}
