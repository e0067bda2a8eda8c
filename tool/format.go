package tool

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var grouped = message.NewPrinter(language.English)

// groupDigits rounds v and prints it with thousands separators.
func groupDigits(v float64) string {
	return grouped.Sprintf("%d", int64(math.Round(v)))
}

// FormatUSMarketCap formats a dollar market cap as $T, $B or $M.
func FormatUSMarketCap(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return "$" + groupDigits(v)
	}
}

// FormatNSEMarketCap formats a market cap given in crores of rupees.
// 1 lakh crore is 100,000 crore.
func FormatNSEMarketCap(crore float64) string {
	switch {
	case crore >= 1e5:
		return fmt.Sprintf("₹%.2f Lakh Cr", crore/1e5)
	case crore >= 1e3:
		return fmt.Sprintf("₹%.2f Thousand Cr", crore/1e3)
	default:
		return fmt.Sprintf("₹%.2f Cr", crore)
	}
}

// FormatUSD formats a statement line item in dollars.
func FormatUSD(v float64) string {
	switch {
	case math.Abs(v) >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return "$" + groupDigits(v)
	}
}

// FormatINR formats a statement line item in rupees, using crores
// (10 million) for large values.
func FormatINR(v float64) string {
	if math.Abs(v) >= 1e7 {
		return fmt.Sprintf("₹%.2f Cr", v/1e7)
	}
	return "₹" + groupDigits(v)
}
