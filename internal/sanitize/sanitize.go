// Package sanitize cleans user-supplied free text before it is stored or exported.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var strictPolicy = bluemonday.StrictPolicy()

// Text strips HTML and unprintable characters, normalises to NFC and trims surrounding space.
func Text(s string) string {
	if s == "" {
		return s
	}
	s = stripUnprintable(norm.NFC.String(s))
	// The policy entity-encodes what it keeps; names like "Shah & Sons" must survive.
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.TrimSpace(s)
}

// Name is Text with internal whitespace runs collapsed to a single space.
func Name(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}

// Code upper-cases and trims identifiers such as GST numbers, IFSC and HSN codes.
func Code(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(Text(s)), ""))
}

// Email lower-cases and trims an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ForSpreadsheet neutralises values a spreadsheet would evaluate as a formula.
func ForSpreadsheet(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func stripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
