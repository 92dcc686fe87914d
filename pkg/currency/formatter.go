package currency

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// RoundHours rounds to three decimal places.
func RoundHours(hours float64) float64 {
	return math.Round(hours*1000) / 1000
}

// FormatUSD renders an amount as "$12,345.67" or "-$1,000.00".
func FormatUSD(amount float64) string {
	rounded := RoundMoney(amount)
	if rounded < 0 {
		return printer.Sprintf("-$%.2f", -rounded)
	}
	return printer.Sprintf("$%.2f", rounded)
}

// Format renders amount in the given ISO currency. Non-USD codes are prefixed
// with the code.
func Format(amount float64, code string) string {
	if code == "" || code == "USD" {
		return FormatUSD(amount)
	}
	rounded := RoundMoney(amount)
	if rounded < 0 {
		return printer.Sprintf("-%s %.2f", code, -rounded)
	}
	return printer.Sprintf("%s %.2f", code, rounded)
}
