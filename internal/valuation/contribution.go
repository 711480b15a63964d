package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/models"
)

var daysPerYear = decimal.RequireFromString("365.25")

// EstimateAnnualContribution averages purchase magnitudes over the span
// between the earliest and latest purchase. The span is floored at one year,
// so a ledger of same-day purchases returns their total. Purchases with an
// unparsable date count towards the total but not the span.
func EstimateAnnualContribution(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	var earliest, latest time.Time
	purchases := 0

	for _, tx := range txs {
		if tx.Type != models.TxPurchase || !tx.Magnitude.IsPositive() {
			continue
		}
		purchases++
		total = total.Add(tx.Magnitude)

		d, err := time.Parse(models.DateLayout, dateKey(tx.Date))
		if err != nil {
			continue
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
		if latest.IsZero() || d.After(latest) {
			latest = d
		}
	}
	if purchases == 0 {
		return decimal.Zero
	}

	// total / (days/365.25) as a single division, rounded only at the end.
	days := decimal.NewFromInt(int64(latest.Sub(earliest).Hours() / 24))
	if days.GreaterThan(daysPerYear) {
		return total.Mul(daysPerYear).Div(days).Round(2)
	}
	return total.Round(2)
}
