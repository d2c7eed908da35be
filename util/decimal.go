package util

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/infigaming-com/gold-monitor/errors"
	"github.com/shopspring/decimal"
)

// NewDecimal converts the loosely typed numbers found in upstream JSON into a
// decimal. Strings are trimmed; an empty string is zero.
func NewDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, errors.NewError(ErrCodeInvalidDecimal, fmt.Sprintf("invalid decimal %q", v), err)
		}
		return d, nil
	case json.Number:
		return NewDecimal(string(v))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, errors.NewError(ErrCodeInvalidDecimal, fmt.Sprintf("unsupported decimal type %T", value), nil)
	}
}
