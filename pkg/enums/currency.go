package enums

import "fmt"

// Currency is the denomination carried on order money fields. Splitting
// never converts between currencies; children inherit the parent's currency
// unchanged.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	parsed := Currency(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid currency %q", value)
	}
	return parsed, nil
}
