package models

import (
	"fmt"
	"strings"
)

// Currency is an ISO code from the fixed set the ledger supports.
// Balances are never converted between currencies.
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
	CAD Currency = "CAD"
	SAR Currency = "SAR"
)

// DefaultCurrency is used when a request omits the currency.
const DefaultCurrency = INR

// Currencies lists every supported currency in display order.
var Currencies = []Currency{INR, USD, CAD, SAR}

var currencySymbols = map[Currency]string{
	INR: "₹",
	USD: "$",
	CAD: "C$",
	SAR: "﷼",
}

// ParseCurrency validates s against the supported set. Matching is case-insensitive.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := currencySymbols[c]; !ok {
		return "", fmt.Errorf("unsupported currency %q (allowed: %v)", s, Currencies)
	}
	return c, nil
}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	_, ok := currencySymbols[c]
	return ok
}

// Symbol returns the display symbol for c, or the code itself if unknown.
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return string(c)
}

// Index returns c's position in Currencies, or len(Currencies) if unknown.
func (c Currency) Index() int {
	for i, known := range Currencies {
		if known == c {
			return i
		}
	}
	return len(Currencies)
}
