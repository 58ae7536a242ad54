package table

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is rendered for values upstream did not report.
const Placeholder = "--"

var currencyPrefixes = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"jpy": "¥",
	"btc": "₿",
}

var one = decimal.NewFromInt(1)

// Formatter renders money in one quote currency.
type Formatter struct {
	prefix  string
	printer *message.Printer
}

func NewFormatter(vsCurrency string) Formatter {
	code := strings.ToLower(strings.TrimSpace(vsCurrency))
	prefix, ok := currencyPrefixes[code]
	if !ok {
		prefix = strings.ToUpper(code) + " "
	}
	return Formatter{prefix: prefix, printer: message.NewPrinter(language.English)}
}

// Money renders a non-negative amount with thousands separators. Amounts below
// one keep up to eight fraction digits so sub-cent prices stay readable.
func (f Formatter) Money(d decimal.Decimal) string {
	maxDigits := 2
	if d.Abs().LessThan(one) && !d.IsZero() {
		maxDigits = 8
	}
	return f.prefix + f.printer.Sprint(number.Decimal(
		d.InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(maxDigits),
	))
}

// NullMoney renders Placeholder when the amount is unreported.
func (f Formatter) NullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return f.Money(d.Decimal)
}

// Amount renders a unitless quantity such as circulating supply.
func (f Formatter) Amount(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return f.printer.Sprint(number.Decimal(d.Decimal.InexactFloat64(), number.MaxFractionDigits(0)))
}

// Percent renders a signed two-decimal percentage, or Placeholder when null.
func Percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	sign := "+"
	if d.Decimal.IsNegative() {
		sign = "-"
	}
	return sign + d.Decimal.Abs().StringFixed(2) + "%"
}

// Rank renders a market-cap rank, or Placeholder when unranked.
func Rank(r *int) string {
	if r == nil {
		return Placeholder
	}
	return strconv.Itoa(*r)
}
