// Package money formats backend amounts for display.
package money

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// narrow symbols used instead of the ISO code prefix.
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// Formatter renders amounts for a display locale.
type Formatter struct {
	lang    string
	printer *message.Printer
}

// NewFormatter builds a formatter for the given locale (e.g. "en", "fr").
// Unknown or empty locales fall back to English.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || tag == language.Und {
		tag = language.English
	}
	base, _ := tag.Base()
	return Formatter{lang: base.String(), printer: message.NewPrinter(tag)}
}

// Lang returns the base language of the formatter.
func (f Formatter) Lang() string {
	if f.lang == "" {
		return "en"
	}
	return f.lang
}

// Format renders amount (major units) in currency code.
// Example: Format(35, "tnd") => "TND 35.000", Format(12.5, "usd") => "$12.50".
func (f Formatter) Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		if code == "" {
			return amount.StringFixed(2)
		}
		return code + " " + amount.StringFixed(2)
	}
	scale, _ := currency.Standard.Rounding(unit)

	p := f.printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	neg := amount.IsNegative()
	digits := p.Sprint(number.Decimal(amount.Abs().Round(int32(scale)).InexactFloat64(), number.Scale(scale)))

	prefix := code + " "
	if sym, ok := symbols[code]; ok {
		prefix = sym
	}
	if neg {
		return "-" + prefix + digits
	}
	return prefix + digits
}

// Date formats t in a locale-friendly short form.
func (f Formatter) Date(t time.Time) string {
	switch f.Lang() {
	case "fr":
		return t.Format("02/01/2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}
