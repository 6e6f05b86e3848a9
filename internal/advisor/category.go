package advisor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	fallbackCategory  = "General"
	maxCategoryLength = 50
)

var titleCaser = cases.Title(language.English)

// labelPrefixes are lead-ins models sometimes put before the category word.
var labelPrefixes = []string{
	"category:",
	"the category is",
	"category -",
	"category",
}

// NormalizeCategory reduces a model's answer to a single title-cased word,
// falling back to "General" when nothing usable remains.
func NormalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, p := range labelPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}

	word := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	if len(word) == 0 {
		return fallbackCategory
	}

	category := strings.Trim(word[0], "-")
	if category == "" {
		return fallbackCategory
	}
	category = titleCaser.String(category)
	if utf8.RuneCountInString(category) > maxCategoryLength {
		category = string([]rune(category)[:maxCategoryLength])
	}
	return category
}
