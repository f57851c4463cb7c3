package value

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatID renders f in the Indonesian locale without rounding, e.g.
// 516859837493.95 becomes "516.859.837.493,95". The output reads back to the
// same float through Normalize.
func FormatID(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	s := decimal.NewFromFloat(f).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatAmount is FormatID for a nullable amount; missing renders as "".
func FormatAmount(a Amount) string {
	if !a.Valid {
		return ""
	}
	return FormatID(a.Value)
}
