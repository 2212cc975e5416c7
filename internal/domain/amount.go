package domain

import "github.com/shopspring/decimal"

// Amounts and balances are fixed-point decimals with 8 fractional digits and
// at most 18 significant digits, matching the decimal(18,8) columns.
const (
	AmountScale     = 8
	AmountMaxDigits = 18
)

// amountLimit is 10^10, the first value with more than 10 integer digits.
var amountLimit = decimal.New(1, AmountMaxDigits-AmountScale)

// ValidateAmount reports whether a fits the supported precision.
func ValidateAmount(a decimal.Decimal) error {
	if a.Exponent() < -AmountScale {
		return ErrInvalidAmount
	}
	if a.Abs().GreaterThanOrEqual(amountLimit) {
		return ErrInvalidAmount
	}
	return nil
}
