package util

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency - валюта отчётов, если у суммы нет своей
const DefaultCurrency = "MXN"

var reportLocale = language.MustParse("es-MX")

// FormatMoney форматирует сумму для отчётов в локали es-MX.
// Неизвестный ISO код заменяется на MXN.
func FormatMoney(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.MXN
	}

	value, _ := amount.Round(2).Float64()
	return message.NewPrinter(reportLocale).Sprint(currency.Symbol(unit.Amount(value)))
}
