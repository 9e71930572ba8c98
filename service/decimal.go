package service

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// tokenDecimals is the fixed-point scale of every on-chain currency value.
const tokenDecimals = 18

// FormatUnits renders an on-chain fixed-point integer as a decimal string,
// e.g. 1500000000000000000 -> "1.5".
func FormatUnits(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -tokenDecimals).String()
}

// ParseUnits converts a decimal amount string to its on-chain fixed-point
// representation. Negative or malformed input is rejected.
func ParseUnits(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	shifted := d.Shift(tokenDecimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, tokenDecimals)
	}
	return shifted.BigInt(), nil
}
