package research

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toFloat accepts JSON numbers and numeric strings such as "$24.99" or
// "12,345". NaN and infinities are rejected.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Round(f)), true
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// pick returns the first present, non-null value among keys.
func pick(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

// Prices are kept within [minMoney, maxMoney] after rounding to cents.
const (
	minMoney = 0.01
	maxMoney = 1e6
)

// toMoney reads a positive price. Values that round to zero cents or exceed
// maxMoney are rejected so margin and ROI stay finite.
func toMoney(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || f > maxMoney {
		return 0, false
	}
	f = round2(f)
	return f, f >= minMoney
}
