// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides text normalization and number formatting helpers.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var printer = message.NewPrinter(language.English)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	return printer.Sprint(number.Decimal(n))
}

// FormatDecimal formats v with thousands separators and exactly digits fraction digits.
func FormatDecimal(v float64, digits int) string {
	return printer.Sprint(number.Decimal(v, number.Scale(digits)))
}
