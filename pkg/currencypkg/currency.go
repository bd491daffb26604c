// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import "strings"

// Constants for all supported currencies.
const (
	USD = "USD"
	EUR = "EUR"
)

// SupportedCurrencies holds all the supported currencies.
var SupportedCurrencies = []string{
	USD,
	EUR,
}

// Normalize upper-cases a currency code. Codes are case-insensitive on input
// and stored upper-cased.
func Normalize(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// IsSupportedCurrency returns true if the currncy is supported.
func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == Normalize(currency) {
			return true
		}
	}

	return false
}
