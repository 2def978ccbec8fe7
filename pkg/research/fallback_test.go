package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_CountAndDistinctNames(t *testing.T) {
	for _, kw := range []string{"resistance bands", ""} {
		out := Fallback("Fitness", kw, 8)
		require.Len(t, out, 8)

		names := map[string]bool{}
		for _, p := range out {
			names[p.Title] = true
			assertPopulated(t, p)
		}
		assert.Len(t, names, 8)
	}
}

func TestFallback_MonotonicSpread(t *testing.T) {
	out := Fallback("Kitchen", "knife set", 8)
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i].SupplierPrice, out[i-1].SupplierPrice, "cost rises with index")
		assert.Less(t, out[i].MonthlySales, out[i-1].MonthlySales, "sales fall with index")
		assert.Greater(t, out[i].Price, out[i-1].Price)
		assert.Greater(t, out[i].BestSellerRank, out[i-1].BestSellerRank)
	}
	assert.Equal(t, "Premium Knife Set", out[0].Title)
	assert.Equal(t, "Kitchen", out[0].Category)
}

func TestFallback_DeterministicApartFromASIN(t *testing.T) {
	a := Fallback("Tech", "usb hub", 8)
	b := Fallback("Tech", "usb hub", 8)
	for i := range a {
		a[i].ASIN, b[i].ASIN = "", ""
		a[i].ImageURL, b[i].ImageURL = "", ""
		a[i].MarketplaceURL, b[i].MarketplaceURL = "", ""
	}
	assert.Equal(t, a, b)
}

func TestFallback_LargerBatchesStayDistinct(t *testing.T) {
	out := Fallback("Tech", "", 12)
	require.Len(t, out, 12)
	names := map[string]bool{}
	for _, p := range out {
		names[p.Title] = true
	}
	assert.Len(t, names, 12)
	assert.Len(t, Fallback("Tech", "", 0), DefaultBatchSize)
}
