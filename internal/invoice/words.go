package invoice

import (
	"math"
	"strings"
)

var onesWords = [...]string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = [...]string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

func twoDigitWords(n int) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + onesWords[n%10]
}

func threeDigitWords(n int) string {
	if n < 100 {
		return twoDigitWords(n)
	}
	out := onesWords[n/100] + " Hundred"
	if n%100 != 0 {
		out += " " + twoDigitWords(n%100)
	}
	return out
}

func integerWords(n int64) string {
	if n == 0 {
		return "Zero"
	}

	var parts []string
	if crore := n / 1e7; crore > 0 {
		parts = append(parts, integerWords(crore)+" Crore")
		n %= 1e7
	}
	if lakh := n / 1e5; lakh > 0 {
		parts = append(parts, twoDigitWords(int(lakh))+" Lakh")
		n %= 1e5
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, twoDigitWords(int(thousand))+" Thousand")
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, threeDigitWords(int(n)))
	}
	return strings.Join(parts, " ")
}

// AmountInWords renders a monetary amount with Indian-system groupings
// (thousand, lakh, crore): 12345678 -> "One Crore Twenty Three Lakh
// Forty Five Thousand Six Hundred Seventy Eight Only". The fractional
// part is rendered in hundredths.
func AmountInWords(amount float64) string {
	if amount < 0 {
		return "Minus " + AmountInWords(-amount)
	}

	cents := int64(math.Round(amount * 100))
	whole := cents / 100
	fraction := cents % 100

	words := integerWords(whole)
	if fraction > 0 {
		words += " and " + twoDigitWords(int(fraction)) + " Paise"
	}
	return words + " Only"
}
