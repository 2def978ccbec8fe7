package research

import "strings"

const (
	defaultCategory = "general"
	defaultKeyword  = "default"
)

// DeriveKey maps a search to its cache key:
//
//	lower("<category>_<keyword>[_<filters>]") with every character outside [a-z0-9] replaced by '_'
//
// An empty category becomes "general" and an empty keyword "default". Filters
// contribute their canonical form, so key order in the request does not
// matter. The key is kept human-readable; distinct inputs that sanitize to the
// same string share a cache entry.
func DeriveKey(category, keyword string, filters Filters) string {
	category = strings.TrimSpace(category)
	if category == "" {
		category = defaultCategory
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		keyword = defaultKeyword
	}

	raw := category + "_" + keyword
	if c := filters.keyPart(); c != "" {
		raw += "_" + c
	}
	return sanitizeKey(raw)
}

func sanitizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
