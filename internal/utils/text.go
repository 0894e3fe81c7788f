package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanText drops NUL bytes and invalid UTF-8 sequences, neither of which a
// postgres text column accepts. The boolean reports whether anything changed.
func CleanText(input string) (string, bool) {
	if !strings.Contains(input, "\x00") && utf8.ValidString(input) {
		return input, false
	}

	cleaned := strings.ToValidUTF8(input, "")
	cleaned = strings.ReplaceAll(cleaned, "\x00", "")

	return cleaned, true
}

// CleanTextPtr applies CleanText to an optional value.
func CleanTextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned, _ := CleanText(*input)
	return &cleaned
}
