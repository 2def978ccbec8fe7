package upstream

import (
	"fmt"
	"strings"
)

// BatchSize is the number of products requested per search.
const BatchSize = 8

const systemPrompt = "You are a product research assistant for Amazon FBA sellers. " +
	"Search the web for current trending products and return ONLY a valid JSON array. " +
	"No markdown, no explanations, just the JSON array."

// Query describes one product search.
type Query struct {
	Category    string
	Keyword     string
	Constraints []string // human-readable filter constraints
}

// Term is the phrase searched for: the keyword, or the category without one.
func (q Query) Term() string {
	if k := strings.TrimSpace(q.Keyword); k != "" {
		return k
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		return c
	}
	return "general"
}

// BuildPrompt renders the user instruction for q.
func BuildPrompt(q Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find exactly %d real, currently selling Amazon products for %q", BatchSize, q.Term())
	if c := strings.TrimSpace(q.Category); c != "" && !strings.EqualFold(c, q.Term()) {
		fmt.Fprintf(&b, " in the %q category", c)
	}
	b.WriteString(".\n\nEach array element must be an object with these fields:\n")
	b.WriteString(`- "title": product name` + "\n")
	b.WriteString(`- "asin": 10-character Amazon ASIN starting with B0` + "\n")
	b.WriteString(`- "price": current Amazon price in USD, between 5 and 200` + "\n")
	b.WriteString(`- "supplier_price": estimated wholesale unit cost in USD` + "\n")
	b.WriteString(`- "bsr": best seller rank, an integer below 500000` + "\n")
	b.WriteString(`- "rating": average rating between 3.0 and 5.0` + "\n")
	b.WriteString(`- "reviews": number of reviews` + "\n")
	b.WriteString(`- "monthly_sales": estimated units sold per month` + "\n")
	b.WriteString(`- "image_url", "amazon_url", "supplier_url": links, supplier_url must be an Alibaba product-detail page` + "\n")
	if len(q.Constraints) > 0 {
		b.WriteString("\nOnly include products that satisfy:\n")
		for _, c := range q.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	b.WriteString("\nRespond with the JSON array only. No prose, no markdown.")
	return b.String()
}
