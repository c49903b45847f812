// Package price converts operator-facing decimal prices into token base units.
package price

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a decimal string such as "1.50" into an integer amount
// of the token's smallest unit. Fractional digits beyond decimals are dropped,
// never rounded. An empty or non-numeric fraction counts as zero.
func ToBaseUnits(amount string, decimals int) *big.Int {
	if decimals < 0 {
		decimals = 0
	}

	whole, frac, _ := strings.Cut(strings.TrimSpace(amount), ".")
	if !allDigits(frac) {
		frac = ""
	}
	if len(frac) > decimals {
		frac = frac[:decimals]
	} else {
		frac += strings.Repeat("0", decimals-len(frac))
	}

	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return new(big.Int)
	}

	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

// FormatUnits renders a base-unit amount as a human readable decimal string.
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, int32(-decimals)).String()
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
