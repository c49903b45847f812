package price

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
	}{
		{"whole number", "1", 6, "1000000"},
		{"truncates extra digits", "1.23456", 2, "123"},
		{"truncation never rounds up", "0.999999", 2, "99"},
		{"pads short fraction", "0.5", 6, "500000"},
		{"eighteen decimals", "2.5", 18, "2500000000000000000"},
		{"leading zeros stripped", "0001.10", 2, "110"},
		{"trailing point", "1.", 6, "1000000"},
		{"leading point", ".25", 2, "25"},
		{"malformed fraction is zero", "3.x1", 2, "300"},
		{"zero decimals", "12.99", 0, "12"},
		{"zero", "0", 6, "0"},
		{"empty", "", 6, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBaseUnits(tt.amount, tt.decimals)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToBaseUnits_IdempotentOnIntegerOutput(t *testing.T) {
	inputs := []struct {
		amount   string
		decimals int
	}{
		{"1.23456", 2},
		{"42", 6},
		{"0.000001", 6},
		{"7.5", 18},
	}

	for _, in := range inputs {
		first := ToBaseUnits(in.amount, in.decimals)
		again := ToBaseUnits(first.String(), 0)
		assert.Equal(t, 0, first.Cmp(again), "re-parsing %s changed the value", first)
	}
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1500000), 6))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6))
	assert.Equal(t, "12", FormatUnits(big.NewInt(12), 0))
	assert.Equal(t, "0", FormatUnits(nil, 6))
}
