package domain

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const regionalIndicatorOffset = 0x1F1E6 - 'A'

// FlagEmoji returns the regional indicator pair for a two-letter country code, or "" when code is not one.
func FlagEmoji(code string) string {
	if len(code) != 2 {
		return ""
	}

	code = strings.ToUpper(code)
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(r + regionalIndicatorOffset)
	}

	return b.String()
}

// CountryName returns the English name of the region, falling back to the upper-cased code.
func CountryName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return strings.ToUpper(code)
	}

	if name := display.English.Regions().Name(region); name != "" {
		return name
	}

	return strings.ToUpper(code)
}
