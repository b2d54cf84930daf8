package totals

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ones = []string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

var crore = decimal.NewFromInt(10000000)

// Indian grouping below a crore, largest first.
var scales = []struct {
	value int64
	name  string
}{
	{100000, "Lakh"},
	{1000, "Thousand"},
	{100, "Hundred"},
}

// InWords spells an amount in Indian English after rounding to two decimals,
// e.g. 1234.5 -> "One Thousand Two Hundred Thirty Four Rupees and Fifty Paise".
func InWords(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	prefix := ""
	if rounded.IsNegative() {
		prefix = "Minus "
		rounded = rounded.Neg()
	}

	rupees := rounded.Floor()
	paise := rounded.Sub(rupees).Shift(2).IntPart()

	var b strings.Builder
	b.WriteString(prefix)
	if rupees.IsZero() {
		b.WriteString("Zero")
	} else {
		b.WriteString(spellWhole(rupees))
	}
	b.WriteString(" Rupees")
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(spell(paise))
		b.WriteString(" Paise")
	}
	return b.String()
}

// spellWhole names a whole n > 0 of any size. Crores recurse, so amounts past
// 99 crore read as "One Hundred Crore" and beyond that "One Lakh Crore Crore".
func spellWhole(n decimal.Decimal) string {
	if n.LessThan(crore) {
		return spell(n.IntPart())
	}
	head, rest := n.QuoRem(crore, 0)
	parts := []string{spellWhole(head), "Crore"}
	if r := rest.IntPart(); r > 0 {
		parts = append(parts, spell(r))
	}
	return strings.Join(parts, " ")
}

// spell names 0 < n < one crore.
func spell(n int64) string {
	var parts []string
	for _, s := range scales {
		if n < s.value {
			continue
		}
		parts = append(parts, belowHundred(n/s.value), s.name)
		n %= s.value
	}
	if n > 0 {
		parts = append(parts, belowHundred(n))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}
