package research

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gitlab.connectwisedev.com/product-scanner/models"
)

// Recognised filter names.
const (
	FilterMinPrice   = "minPrice"
	FilterMaxPrice   = "maxPrice"
	FilterMinMargin  = "minMargin"
	FilterMaxBSR     = "maxBSR"
	FilterMinReviews = "minReviews"
	FilterMinRating  = "minRating"
	FilterSortBy     = "sortBy"
)

// Sort orders accepted by the sortBy filter.
const (
	SortProfit  = "profit"
	SortPrice   = "price"
	SortBSR     = "bsr"
	SortRating  = "rating"
	SortReviews = "reviews"
	SortROI     = "roi"
)

// Filters is the filter object of a search request as decoded from JSON.
// Values may be numbers or numeric strings; empty strings mean "unset".
type Filters map[string]any

// Canonical serializes the set filters as "name=value" pairs sorted by name.
// Numeric strings are rendered as numbers, so {"minPrice":"10"} and
// {"minPrice":10} are equal.
func (f Filters) Canonical() string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if _, ok := canonicalValue(v); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := canonicalValue(f[k])
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

// keyPart is the canonical form without sortBy, which only reorders results.
func (f Filters) keyPart() string {
	if len(f) == 0 {
		return ""
	}
	cp := make(Filters, len(f))
	for k, v := range f {
		if k != FilterSortBy {
			cp[k] = v
		}
	}
	return cp.Canonical()
}

func canonicalValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if n, ok := toFloat(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v), true
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Number returns the numeric value of filter name, if set and numeric.
func (f Filters) Number(name string) (float64, bool) {
	v, ok := f[name]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// SortBy returns the requested order, defaulting to profit.
func (f Filters) SortBy() string {
	if s, ok := f[FilterSortBy].(string); ok {
		switch s = strings.ToLower(strings.TrimSpace(s)); s {
		case SortPrice, SortBSR, SortRating, SortReviews, SortROI:
			return s
		}
	}
	return SortProfit
}

// Constraints describes the numeric filters in prose for the search prompt.
func (f Filters) Constraints() []string {
	var out []string
	if v, ok := f.Number(FilterMinPrice); ok {
		out = append(out, fmt.Sprintf("Amazon price at least $%s", formatNum(v)))
	}
	if v, ok := f.Number(FilterMaxPrice); ok {
		out = append(out, fmt.Sprintf("Amazon price at most $%s", formatNum(v)))
	}
	if v, ok := f.Number(FilterMinMargin); ok {
		out = append(out, fmt.Sprintf("Profit margin at least %s%%", formatNum(v)))
	}
	if v, ok := f.Number(FilterMaxBSR); ok {
		out = append(out, fmt.Sprintf("Best seller rank at most %s", formatNum(v)))
	}
	if v, ok := f.Number(FilterMinReviews); ok {
		out = append(out, fmt.Sprintf("At least %s reviews", formatNum(v)))
	}
	if v, ok := f.Number(FilterMinRating); ok {
		out = append(out, fmt.Sprintf("Rating at least %s", formatNum(v)))
	}
	return out
}

// Apply drops records outside the numeric bounds and sorts the rest. When no
// record survives it returns the whole batch, sorted, and reports false.
func (f Filters) Apply(records []models.ProductRecord) ([]models.ProductRecord, bool) {
	kept := make([]models.ProductRecord, 0, len(records))
	for _, r := range records {
		if f.match(r) {
			kept = append(kept, r)
		}
	}
	matched := true
	if len(kept) == 0 && len(records) > 0 {
		kept = append(kept, records...)
		matched = false
	}
	sortRecords(kept, f.SortBy())
	return kept, matched
}

func (f Filters) match(r models.ProductRecord) bool {
	if v, ok := f.Number(FilterMinPrice); ok && r.Price < v {
		return false
	}
	if v, ok := f.Number(FilterMaxPrice); ok && r.Price > v {
		return false
	}
	if v, ok := f.Number(FilterMinMargin); ok && r.Margin < v {
		return false
	}
	if v, ok := f.Number(FilterMaxBSR); ok && float64(r.BestSellerRank) > v {
		return false
	}
	if v, ok := f.Number(FilterMinReviews); ok && float64(r.ReviewCount) < v {
		return false
	}
	if v, ok := f.Number(FilterMinRating); ok && r.Rating < v {
		return false
	}
	return true
}

func sortRecords(records []models.ProductRecord, by string) {
	var less func(a, b models.ProductRecord) bool
	switch by {
	case SortPrice:
		less = func(a, b models.ProductRecord) bool { return a.Price < b.Price }
	case SortBSR:
		less = func(a, b models.ProductRecord) bool { return a.BestSellerRank < b.BestSellerRank }
	case SortRating:
		less = func(a, b models.ProductRecord) bool { return a.Rating > b.Rating }
	case SortReviews:
		less = func(a, b models.ProductRecord) bool { return a.ReviewCount > b.ReviewCount }
	case SortROI:
		less = func(a, b models.ProductRecord) bool { return a.ROI > b.ROI }
	default:
		less = func(a, b models.ProductRecord) bool { return a.Profit() > b.Profit() }
	}
	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
