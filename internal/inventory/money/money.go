// Package money parses and formats the currency strings used across the
// inventory: prices and values travel as "$<number>" and all arithmetic
// happens on exact decimals.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Display formatting uses en-US grouping regardless of the host locale.
var printer = message.NewPrinter(language.English)

var cleaner = strings.NewReplacer("$", "", ",", "")

// ParseAmount strips a leading currency symbol and any thousands separators
// and parses the remainder as a decimal number. Returns zero if the input
// is not a number; it never fails.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(cleaner.Replace(strings.TrimSpace(s)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount formats an amount with thousands grouping and exactly two
// decimal places, without a currency symbol. Display formatting only.
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// ToCurrencyString formats an amount as "$<n>" fixed to two decimal places.
func ToCurrencyString(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// EnsureCurrencyPrefix returns s unchanged if it already starts with "$",
// otherwise prepends "$". Used to normalize user-entered price fields
// before they are stored.
func EnsureCurrencyPrefix(s string) string {
	if strings.HasPrefix(s, "$") {
		return s
	}
	return "$" + s
}

// Value derives a product's total value, price multiplied by quantity,
// as a currency string fixed to two decimal places.
func Value(price string, quantity int64) string {
	return ToCurrencyString(ParseAmount(price).Mul(decimal.NewFromInt(quantity)))
}
