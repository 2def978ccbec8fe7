package models

import (
	"regexp"
	"time"
)

// ProductRecord is a normalized product returned by a search. Every field is
// always populated once it leaves the research pipeline.
type ProductRecord struct {
	Title          string  `json:"title"`
	ASIN           string  `json:"asin"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	SupplierPrice  float64 `json:"supplier_price"`
	BestSellerRank int     `json:"bsr"`
	Rating         float64 `json:"rating"`
	ReviewCount    int     `json:"reviews"`
	MonthlySales   int     `json:"monthly_sales"`
	ImageURL       string  `json:"image_url"`
	MarketplaceURL string  `json:"amazon_url"`
	SupplierURL    string  `json:"supplier_url"`
	Margin         float64 `json:"margin"` // percent of sell price
	ROI            float64 `json:"roi"`    // percent of sourcing cost
}

var asinPattern = regexp.MustCompile(`^B0[A-Z0-9]{8}$`)

// ValidASIN reports whether s has the B0 + 8 alphanumerics shape.
func ValidASIN(s string) bool {
	return asinPattern.MatchString(s)
}

// Profit is the per-unit profit after the marketplace referral fee.
func (p ProductRecord) Profit() float64 {
	return p.Price - p.SupplierPrice - p.Price*MarketplaceFeeRate
}

// MarketplaceFeeRate is the referral fee deducted from the sell price when
// computing profit.
const MarketplaceFeeRate = 0.15

// CacheEntry is one stored search result set. Entries are insert-only; the
// newest unexpired entry for a key wins.
type CacheEntry struct {
	ID        string          `json:"id"` // UUID as string
	CacheKey  string          `json:"cache_key"`
	Category  string          `json:"category"`
	Keyword   string          `json:"keyword"`
	Products  []ProductRecord `json:"products"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	HitCount  int64           `json:"hit_count"`
}

// Expired reports whether the entry is no longer servable at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// HistorySample captures the market signals of one product at search time.
type HistorySample struct {
	ID             int64     `json:"id"`
	ASIN           string    `json:"asin"`
	Price          float64   `json:"price"`
	BestSellerRank int       `json:"bsr"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"reviews"`
	Timestamp      time.Time `json:"timestamp"`
}
