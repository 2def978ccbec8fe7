package upstream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"bare array", `[{"title":"a"},{"title":"b"}]`, 2},
		{"fenced", "```json\n[{\"title\":\"a\"}]\n```", 1},
		{"fence without language", "```\n[{\"title\":\"a\"}]\n```", 1},
		{"prose around", "Here are the products:\n[{\"title\":\"a\"}]\nHope this helps [1].", 1},
		{"brackets inside strings", `[{"title":"Bands [5 pack]"},{"title":"Mat \"]\" edition"}]`, 2},
		{"nested arrays", `[{"tags":["a","b"]},{"tags":[]}]`, 2},
		{"citation before payload", "Here are products based on search [1]:\n```json\n[{\"title\":\"Real\"},{\"title\":\"Also real\"}]\n```", 2},
		{"several citations", "Sources [1][2] and [3, 4] agree.\n[{\"title\":\"a\"}]", 1},
		{"empty list before payload", "Previously: []\n[{\"title\":\"a\"}]", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, err := ExtractJSONArray(tc.input)
			require.NoError(t, err)
			assert.Len(t, items, tc.want)
			for _, it := range items {
				assert.IsType(t, map[string]any{}, it)
			}
		})
	}
}

func TestExtractJSONArray_Failures(t *testing.T) {
	inputs := map[string]string{
		"malformed object in fence": "```json\n{not valid}\n```",
		"no array":                  "Sorry, I could not find any products.",
		"unterminated":              `[{"title":"a"}`,
		"invalid element":           `[{title: a}]`,
		"empty array":               "[]",
		"citations only":            "No products found [1][2].",
		"array of scalars":          `[1, "two", null]`,
		"mixed elements":            `[{"title":"a"}, 5]`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractJSONArray(input)
			require.Error(t, err)
			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "expected ParseError, got %T", err)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Query{Category: "Fitness", Keyword: "resistance bands", Constraints: []string{"Price at most $40"}})

	assert.Contains(t, p, "exactly 8")
	assert.Contains(t, p, `"resistance bands"`)
	assert.Contains(t, p, `"Fitness" category`)
	assert.Contains(t, p, "Price at most $40")
	assert.Contains(t, p, "JSON array only")
}

func TestQueryTerm(t *testing.T) {
	assert.Equal(t, "yoga mat", Query{Category: "Fitness", Keyword: " yoga mat "}.Term())
	assert.Equal(t, "Fitness", Query{Category: "Fitness"}.Term())
	assert.Equal(t, "general", Query{}.Term())
}
