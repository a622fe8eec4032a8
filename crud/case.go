package crud

import (
	"reflect"
	"strings"
	"unicode"
)

// entityName derives the cache namespace for T from its type name,
// e.g. *sales.LineItem becomes "line_item".
func entityName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return toSnake(t.Name())
}

// toSnake converts the provided string to snake_case using ASCII-aware rules.
// Punctuation from reflected names (generic suffixes, package dots) collapses
// into a single underscore so namespaces stay safe for prefix invalidation.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false
	sep := func() {
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sep()
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r):
			b.WriteRune(r)
			lastUnderscore = false

		case unicode.IsDigit(r):
			if i > 0 && unicode.IsLetter(runes[i-1]) {
				sep()
			}
			b.WriteRune(r)
			lastUnderscore = false

		default:
			sep()
		}
	}

	return strings.Trim(b.String(), "_")
}
