// Package slug turns category and product names into URL path segments.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into an ASCII base plus a combining mark.
var foldReplacer = strings.NewReplacer(
	"ı", "i",
	"ß", "ss",
	"æ", "ae",
	"ø", "o",
	"œ", "oe",
	"ł", "l",
	"đ", "d",
)

// Generate lowercases name, strips diacritics and joins the remaining
// alphanumeric runs with single hyphens.
//
//	Generate("Men's Clothing")  == "men-s-clothing"
//	Generate("Çocuk Ürünleri")  == "cocuk-urunleri"
func Generate(name string) string {
	folded := foldReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, folded); err == nil {
		folded = stripped
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Matches reports whether name and s name the same slug.
func Matches(name, s string) bool {
	return s != "" && Generate(name) == Generate(s)
}
