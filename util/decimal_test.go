package util

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewDecimal(t *testing.T) {
	tcs := []struct {
		name        string
		value       any
		expectValue decimal.Decimal
		expectErr   bool
	}{
		{name: "string", value: "1953000", expectValue: decimal.NewFromInt(1953000)},
		{name: "padded string", value: " 123 ", expectValue: decimal.NewFromInt(123)},
		{name: "empty string", value: "", expectValue: decimal.Zero},
		{name: "nil", value: nil, expectValue: decimal.Zero},
		{name: "json number", value: json.Number("1820000"), expectValue: decimal.NewFromInt(1820000)},
		{name: "int", value: 42, expectValue: decimal.NewFromInt(42)},
		{name: "int64", value: int64(123), expectValue: decimal.NewFromInt(123)},
		{name: "float64", value: float64(123.45), expectValue: decimal.NewFromFloat(123.45)},
		{name: "invalid string", value: "N/A", expectValue: decimal.Zero, expectErr: true},
		{name: "unsupported type", value: []int{1}, expectValue: decimal.Zero, expectErr: true},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			actualValue, actualErr := NewDecimal(tc.value)
			if tc.expectErr {
				assert.Error(t, actualErr)
			} else {
				assert.NoError(t, actualErr)
			}
			assert.True(t, tc.expectValue.Equal(actualValue), "want %s got %s", tc.expectValue, actualValue)
		})
	}
}
