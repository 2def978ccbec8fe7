package research

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/product-scanner/models"
)

var asinRe = regexp.MustCompile(`^B0[A-Z0-9]{8}$`)

func assertPopulated(t *testing.T, p models.ProductRecord) {
	t.Helper()
	assert.NotEmpty(t, p.Title)
	assert.Regexp(t, asinRe, p.ASIN)
	assert.NotEmpty(t, p.Category)
	assert.Greater(t, p.Price, 0.0)
	assert.Greater(t, p.SupplierPrice, 0.0)
	assert.Greater(t, p.BestSellerRank, 0)
	assert.GreaterOrEqual(t, p.Rating, 0.0)
	assert.LessOrEqual(t, p.Rating, 5.0)
	assert.GreaterOrEqual(t, p.ReviewCount, 0)
	assert.GreaterOrEqual(t, p.MonthlySales, 0)
	assert.NotEmpty(t, p.ImageURL)
	assert.NotEmpty(t, p.MarketplaceURL)
	assert.NotEmpty(t, p.SupplierURL)
}

func TestNormalize_Totality(t *testing.T) {
	inputs := []string{
		`{}`,
		`null`,
		`"a string"`,
		`[1,2,3]`,
		`{"title":null,"asin":null,"price":null}`,
		`{"title":42,"asin":"not-an-asin","price":"free","rating":9,"bsr":-5,"reviews":"many"}`,
		`{"price":-3,"supplier_price":0,"rating":"NaN","monthly_sales":-1}`,
		`{"image_url":"javascript:alert(1)","amazon_url":"not a url","supplier_url":"https://www.alibaba.com/product-detail/fake.html"}`,
		`{"price":0.001}`,
		`{"price":0.004,"supplier_price":0.001}`,
		`{"price":24.99,"supplier_price":0.004}`,
		`{"price":1e308,"supplier_price":1e308}`,
		`{"price":"1e308"}`,
		`{"price":0.01}`,
	}

	for i, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var raw any
			require.NoError(t, json.Unmarshal([]byte(in), &raw))
			p := Normalize(raw, i, "Tech", "usb hub")
			assertPopulated(t, p)
			assert.LessOrEqual(t, p.Price, maxMoney)

			_, err := json.Marshal(p)
			assert.NoError(t, err)
		})
	}
}

func TestNormalize_RejectsPricesThatRoundToZero(t *testing.T) {
	p := Normalize(map[string]any{"price": 24.99, "supplier_price": 0.004}, 0, "Tech", "")
	assert.InDelta(t, 24.99, p.Price, 0.001)
	assert.InDelta(t, 7.5, p.SupplierPrice, 0.001)
	assert.Equal(t, 70.0, p.Margin)
	assert.Equal(t, 233.0, p.ROI)

	p = Normalize(map[string]any{"price": 1e308}, 1, "Tech", "")
	assert.Equal(t, 27.0, p.Price)
}

func TestNormalize_PartialProduct(t *testing.T) {
	p := Normalize(map[string]any{"title": "Widget"}, 2, "Tech", "")

	assert.Equal(t, "Widget", p.Title)
	assert.Regexp(t, asinRe, p.ASIN)
	assert.Equal(t, 29.0, p.Price)
	assert.Equal(t, 7000, p.BestSellerRank)
	assert.Equal(t, "Tech", p.Category)
	assert.True(t, strings.HasPrefix(p.SupplierURL, "https://www.alibaba.com/trade/search?SearchText="))
	assert.Contains(t, p.SupplierURL, "Widget")
	assertPopulated(t, p)
}

func TestNormalize_KeepsValidUpstreamValues(t *testing.T) {
	raw := map[string]any{
		"title":          "Resistance Bands Set",
		"asin":           "b0abcdefgh",
		"price":          "$24.99",
		"supplier_price": 8.5,
		"bsr":            "1,234",
		"rating":         4.6,
		"reviews":        json.Number("5120"),
		"monthly_sales":  900.0,
		"image_url":      "https://m.media-amazon.com/images/I/abc.jpg",
		"amazon_url":     "https://www.amazon.com/dp/B0ABCDEFGH",
		"supplier_url":   "https://www.alibaba.com/product-detail/Resistance-Bands_1600123456789.html",
		"margin":         12,
		"roi":            3,
	}

	p := Normalize(raw, 0, "Fitness", "resistance bands")

	assert.Equal(t, "B0ABCDEFGH", p.ASIN)
	assert.Equal(t, 24.99, p.Price)
	assert.Equal(t, 8.5, p.SupplierPrice)
	assert.Equal(t, 1234, p.BestSellerRank)
	assert.Equal(t, 4.6, p.Rating)
	assert.Equal(t, 5120, p.ReviewCount)
	assert.Equal(t, 900, p.MonthlySales)
	assert.Equal(t, "https://m.media-amazon.com/images/I/abc.jpg", p.ImageURL)
	assert.Equal(t, "https://www.amazon.com/dp/B0ABCDEFGH", p.MarketplaceURL)
	assert.Equal(t, "https://www.alibaba.com/product-detail/Resistance-Bands_1600123456789.html", p.SupplierURL)

	// upstream margin/roi are always replaced
	assert.Equal(t, 66.0, p.Margin)
	assert.Equal(t, 194.0, p.ROI)
}

func TestNormalize_AcceptsAliExpressItem(t *testing.T) {
	p := Normalize(map[string]any{"supplier_url": "https://www.aliexpress.com/item/1005001234567890.html"}, 0, "Tech", "")
	assert.Equal(t, "https://www.aliexpress.com/item/1005001234567890.html", p.SupplierURL)
}

func TestNormalize_DefaultsVaryByIndex(t *testing.T) {
	a := Normalize(map[string]any{}, 0, "Tech", "hub")
	b := Normalize(map[string]any{}, 5, "Tech", "hub")

	assert.Equal(t, 25.0, a.Price)
	assert.Equal(t, 35.0, b.Price)
	assert.Equal(t, 5000, a.BestSellerRank)
	assert.Equal(t, 10000, b.BestSellerRank)
	assert.NotEqual(t, a.Title, b.Title)
	assert.NotEqual(t, a.ReviewCount, b.ReviewCount)
}

func TestRecomputeProfit(t *testing.T) {
	p := models.ProductRecord{Price: 24.99, SupplierPrice: 8.50, Margin: 1, ROI: 1}
	recomputeProfit(&p)
	assert.Equal(t, 66.0, p.Margin)
	assert.Equal(t, 194.0, p.ROI)

	loss := models.ProductRecord{Price: 10, SupplierPrice: 12}
	recomputeProfit(&loss)
	assert.LessOrEqual(t, loss.Margin, 0.0)
	assert.LessOrEqual(t, loss.ROI, 0.0)

	for _, bad := range []models.ProductRecord{
		{Price: 0, SupplierPrice: 5},
		{Price: 10, SupplierPrice: 0},
		{Price: math.Inf(1), SupplierPrice: 5},
		{Price: math.NaN(), SupplierPrice: 5},
	} {
		recomputeProfit(&bad)
		assert.Equal(t, 0.0, bad.Margin)
		assert.Equal(t, 0.0, bad.ROI)
	}
}

func TestNewASIN(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, asinRe, NewASIN())
	}
}

func TestNormalizeAll(t *testing.T) {
	items := []any{map[string]any{"title": "A"}, nil, map[string]any{"title": "C"}}
	out := NormalizeAll(items, "Pets", "dog toys")
	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, "Dog Toys Product 2", out[1].Title)
	assert.Equal(t, "C", out[2].Title)
}
