package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPeso formats an amount in Philippine pesos.
// Example: 1234.5 -> "₱1,234.50"
func FormatPeso(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	integer := parts[0]

	// pemisah ribuan
	var b strings.Builder
	for i, r := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "₱" + b.String() + "." + parts[1]
}
