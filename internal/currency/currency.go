// Package currency holds the static catalog of supported display currencies.
//
// The catalog is ordered; the first entry is the fallback for unknown codes
// and the default preferred currency for a fresh installation.
package currency

import (
	"fmt"
	"strings"
)

// Currency maps a 3-letter ISO code to its display symbol.
type Currency struct {
	Code   string
	Symbol string
}

// Supported is the ordered currency catalog.
var Supported = []Currency{
	{Code: "INR", Symbol: "Rs "},
	{Code: "USD", Symbol: "$"},
	{Code: "EUR", Symbol: "€"},
	{Code: "GBP", Symbol: "£"},
	{Code: "JPY", Symbol: "¥"},
	{Code: "AUD", Symbol: "A$"},
	{Code: "CAD", Symbol: "C$"},
}

// Default returns the first catalog entry.
func Default() Currency {
	return Supported[0]
}

// Lookup resolves a code against the catalog. Unknown or empty codes fall
// back to the first entry.
func Lookup(code string) Currency {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Supported {
		if c.Code == normalized {
			return c
		}
	}
	return Supported[0]
}

// IsSupported reports whether a code resolves to a catalog entry without
// falling back.
func IsSupported(code string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Supported {
		if c.Code == normalized {
			return true
		}
	}
	return false
}

// Format renders an amount with the symbol of the given currency code,
// two decimal places and thousands grouping, e.g. "$1,234.50".
func Format(amount float64, code string) string {
	c := Lookup(code)
	return c.Symbol + groupThousands(fmt.Sprintf("%.2f", amount))
}

// groupThousands inserts comma separators into the integer part of a
// fixed-point decimal string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String()
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
