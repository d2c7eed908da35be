package util

import (
	"fmt"
	"strconv"
	"strings"
)

const thousandsSeparator = "."

// FormatThousands renders integers (or integer strings) with "." as the
// thousands separator, e.g. 1953000 -> "1.953.000". Anything that is not an
// integer is returned as its plain string form, so "N/A" stays "N/A".
func FormatThousands(value any) string {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return v
		}
		n = parsed
	default:
		return fmt.Sprint(value)
	}
	return groupDigits(n)
}

func groupDigits(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > len(sign) {
			b.WriteString(thousandsSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
