package reporting

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Indian-notation magnitude thresholds.
var (
	thousand  = decimal.NewFromInt(1_000)
	lakh      = decimal.NewFromInt(100_000)
	crore     = decimal.NewFromInt(10_000_000)
	indianEng = language.MustParse("en-IN")
)

// FormatCurrency renders a rupee amount with Indian magnitude suffixes:
// ₹x.xx K at one thousand, ₹x.xx L at one lakh, ₹x.xx Cr at one crore.
// Below a thousand the full amount is printed with locale grouping. This is
// a display transform only; exported values stay unformatted.
func FormatCurrency(v decimal.Decimal) string {
	abs := v.Abs()
	switch {
	case abs.GreaterThanOrEqual(crore):
		return fmt.Sprintf("₹%s Cr", v.Div(crore).StringFixed(2))
	case abs.GreaterThanOrEqual(lakh):
		return fmt.Sprintf("₹%s L", v.Div(lakh).StringFixed(2))
	case abs.GreaterThanOrEqual(thousand):
		return fmt.Sprintf("₹%s K", v.Div(thousand).StringFixed(2))
	default:
		p := message.NewPrinter(indianEng)
		f, _ := v.Float64()
		return p.Sprintf("₹%.2f", f)
	}
}

// FormatTons renders a tonnage with the metric-ton suffix.
func FormatTons(v decimal.Decimal) string {
	return v.StringFixed(2) + " MT"
}

// FormatCount renders a distinct count with locale grouping.
func FormatCount(n int) string {
	p := message.NewPrinter(indianEng)
	return p.Sprintf("%d", n)
}
