// pkg/invoice/money.go

package invoice

import "github.com/shopspring/decimal"

// MinorUnits is the number of fractional digits amounts are shown with.
const MinorUnits = 2

// FormatMoney prefixes amount with the currency symbol, fixed to MinorUnits
// fractional digits.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(MinorUnits)
}
