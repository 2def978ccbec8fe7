package research

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.connectwisedev.com/product-scanner/models"
)

const asinAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// supplierURLPattern accepts only supplier listings that carry a numeric item id.
var supplierURLPattern = regexp.MustCompile(
	`^https?://(?:[a-z0-9-]+\.)?(?:alibaba\.com/product-detail/\S*?\d{6,}\.html|aliexpress\.(?:com|us)/item/\d+\.html)`)

// Normalize coerces one decoded upstream element into a fully populated
// record. Missing or invalid fields get defaults that depend on the element's
// position i, so a batch of defaults still varies. It never fails.
func Normalize(raw any, i int, category, keyword string) models.ProductRecord {
	m, _ := raw.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	if i < 0 {
		i = 0
	}
	term := searchTerm(category, keyword)

	var p models.ProductRecord

	if s, ok := toString(pick(m, "title", "name", "product_name")); ok {
		p.Title = s
	} else {
		p.Title = fmt.Sprintf("%s Product %d", titleCase(term), i+1)
	}

	if s, ok := toString(pick(m, "asin", "ASIN")); ok && models.ValidASIN(strings.ToUpper(s)) {
		p.ASIN = strings.ToUpper(s)
	} else {
		p.ASIN = NewASIN()
	}

	if s, ok := toString(pick(m, "category")); ok {
		p.Category = s
	} else {
		p.Category = categoryOrDefault(category)
	}

	if f, ok := toMoney(pick(m, "price", "amazon_price", "sell_price")); ok {
		p.Price = f
	} else {
		p.Price = float64(25 + 2*i)
	}

	if f, ok := toMoney(pick(m, "supplier_price", "supplierPrice", "cost", "source_price")); ok {
		p.SupplierPrice = f
	} else {
		p.SupplierPrice = math.Max(minMoney, round2(p.Price*(0.30+0.01*float64(i))))
	}

	if n, ok := toInt(pick(m, "bsr", "best_seller_rank", "bestSellerRank", "rank")); ok && n > 0 {
		p.BestSellerRank = n
	} else {
		p.BestSellerRank = 5000 + 1000*i
	}

	if f, ok := toFloat(pick(m, "rating", "stars")); ok && f >= 0 && f <= 5 {
		p.Rating = round2(f)
	} else {
		p.Rating = math.Max(3.5, round2(4.6-0.05*float64(i)))
	}

	if n, ok := toInt(pick(m, "reviews", "review_count", "reviewCount")); ok && n >= 0 {
		p.ReviewCount = n
	} else {
		p.ReviewCount = 250 + 125*i
	}

	if n, ok := toInt(pick(m, "monthly_sales", "monthlySales", "est_monthly_sales")); ok && n >= 0 {
		p.MonthlySales = n
	} else {
		p.MonthlySales = max(100, 1500-150*i)
	}

	if s, ok := toString(pick(m, "image_url", "imageUrl", "image")); ok && isHTTPURL(s) {
		p.ImageURL = s
	}
	if s, ok := toString(pick(m, "amazon_url", "marketplace_url", "marketplaceUrl", "url")); ok && isHTTPURL(s) {
		p.MarketplaceURL = s
	}
	if s, ok := toString(pick(m, "supplier_url", "supplierUrl", "alibaba_url")); ok && supplierURLPattern.MatchString(s) {
		p.SupplierURL = s
	}

	fillLinks(&p)
	recomputeProfit(&p)
	return p
}

// NormalizeAll applies Normalize to every element of a batch.
func NormalizeAll(items []any, category, keyword string) []models.ProductRecord {
	out := make([]models.ProductRecord, len(items))
	for i, item := range items {
		out[i] = Normalize(item, i, category, keyword)
	}
	return out
}

// NewASIN returns a random code shaped like an ASIN.
func NewASIN() string {
	b := make([]byte, 10)
	b[0], b[1] = 'B', '0'
	for i := 2; i < len(b); i++ {
		b[i] = asinAlphabet[rand.Intn(len(asinAlphabet))]
	}
	return string(b)
}

// fillLinks synthesizes missing links. Supplier links fall back to a catalog
// search, never to a made-up product page.
func fillLinks(p *models.ProductRecord) {
	if p.ImageURL == "" {
		p.ImageURL = fmt.Sprintf("https://images-na.ssl-images-amazon.com/images/P/%s.01.L.jpg", p.ASIN)
	}
	if p.MarketplaceURL == "" {
		p.MarketplaceURL = "https://www.amazon.com/dp/" + p.ASIN
	}
	if p.SupplierURL == "" {
		p.SupplierURL = "https://www.alibaba.com/trade/search?SearchText=" + url.QueryEscape(p.Title)
	}
}

// recomputeProfit overwrites margin and ROI from price and supplier price.
// Without two positive finite prices both are zero.
func recomputeProfit(p *models.ProductRecord) {
	if !(p.Price > 0 && p.SupplierPrice > 0) || math.IsInf(p.Price, 0) || math.IsInf(p.SupplierPrice, 0) {
		p.Margin, p.ROI = 0, 0
		return
	}
	profit := p.Price - p.SupplierPrice
	p.Margin = math.Round(profit / p.Price * 100)
	p.ROI = math.Round(profit / p.SupplierPrice * 100)
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func searchTerm(category, keyword string) string {
	if k := strings.TrimSpace(keyword); k != "" {
		return k
	}
	return categoryOrDefault(category)
}

func categoryOrDefault(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return defaultCategory
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
