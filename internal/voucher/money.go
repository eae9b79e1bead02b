package voucher

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money renders amounts in user-facing messages.
type Money struct {
	Symbol string
	Locale language.Tag
}

// NewMoney builds a formatter from a currency symbol and a BCP 47 locale.
// Unknown locales fall back to Indonesian.
func NewMoney(symbol, locale string) Money {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || tag == language.Und {
		tag = language.Indonesian
	}
	if strings.TrimSpace(symbol) == "" {
		symbol = "Rp"
	}
	return Money{Symbol: symbol, Locale: tag}
}

// Format groups digits according to the locale, e.g. "Rp 100.000" for id-ID.
func (m Money) Format(amount float64) string {
	tag := m.Locale
	if tag == language.Und {
		tag = language.Indonesian
	}
	symbol := m.Symbol
	if symbol == "" {
		symbol = "Rp"
	}
	p := message.NewPrinter(tag)
	return p.Sprintf("%s %v", symbol, number.Decimal(amount, number.MaxFractionDigits(2)))
}
