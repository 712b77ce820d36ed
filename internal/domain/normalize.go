package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// capitalize upper-cases the first letter and lower-cases the rest:
// "fEIJÃO" -> "Feijão".
func capitalize(s string) string {
	s = strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// titleCase upper-cases the first letter of every word:
// "são josé dos campos" -> "São José Dos Campos".
func titleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(s)
}
