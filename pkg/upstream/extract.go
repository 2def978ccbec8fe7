package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("```[a-zA-Z]*\\n?")

var (
	errNoArray    = errors.New("no JSON array found")
	errUnbalanced = errors.New("unterminated JSON array")
	errEmpty      = errors.New("empty product array")
	errNotObjects = errors.New("array elements are not objects")
)

// StripCodeFences removes Markdown code-fence delimiters.
func StripCodeFences(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// ExtractJSONArray returns the elements of the first JSON array of objects in
// text, ignoring any prose or fences around it. Arrays of anything else, such
// as citation markers like [1], are skipped. No such array is an error.
func ExtractJSONArray(text string) ([]any, error) {
	cleaned := StripCodeFences(text)

	lastErr := errNoArray
	for off := 0; off < len(cleaned); {
		i := strings.IndexByte(cleaned[off:], '[')
		if i < 0 {
			break
		}
		start := off + i
		off = start + 1

		raw, err := balancedArray(cleaned, start)
		if err != nil {
			lastErr = err
			continue
		}
		var items []any
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			lastErr = fmt.Errorf("decode array: %w", err)
			continue
		}
		switch {
		case len(items) == 0:
			lastErr = errEmpty
		case !allObjects(items):
			lastErr = errNotObjects
		default:
			return items, nil
		}
	}
	return nil, &ParseError{Raw: truncate(cleaned, maxDiagnosticLen), Err: lastErr}
}

func allObjects(items []any) bool {
	for _, it := range items {
		if _, ok := it.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// balancedArray returns the array opening at s[start] up to its matching ']',
// skipping brackets that appear inside JSON strings.
func balancedArray(s string, start int) (string, error) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errUnbalanced
}
