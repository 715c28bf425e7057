package notify

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatRupiah renders an amount the Indonesian way: dot thousands, comma
// decimals and two fraction digits, e.g. "Rp 1.234.567,50".
func FormatRupiah(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return "Rp " + sign + b.String() + "," + frac
}
