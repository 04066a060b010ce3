// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug turns category names into ASCII URL slugs
// (e.g. "Ciencia Ficción" becomes "ciencia-ficcion").
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// separators matches every run of characters that cannot appear in a slug.
var separators = regexp.MustCompile(`[^a-z0-9]+`)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// Accents are removed after NFD decomposition; anything else that is not an
// ASCII letter or digit becomes a single hyphen. The result may be empty.
func From(s string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}

	return strings.Trim(separators.ReplaceAllString(strings.ToLower(folded), "-"), "-")
}
