package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders d as Brazilian reais with two decimals, e.g. "R$ 12.345,50".
func FormatBRL(d decimal.Decimal) string {
	v := d.Round(2).InexactFloat64()
	return "R$ " + brl.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
