// Package valuation turns a transaction ledger into a cumulative value
// series and forward projections. Every function is pure: inputs are never
// mutated and results are recomputed on each call.
package valuation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/models"
)

// DailyAggregate is the net signed amount of all transactions on one date.
type DailyAggregate struct {
	Date string
	Net  decimal.Decimal
}

// Aggregate groups txs by calendar date and sums their signed amounts.
// Output is chronological with one entry per distinct date.
func Aggregate(txs []models.Transaction) []DailyAggregate {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dateKey(sorted[i].Date) < dateKey(sorted[j].Date)
	})

	aggs := make([]DailyAggregate, 0, len(sorted))
	index := make(map[string]int, len(sorted))
	for _, tx := range sorted {
		key := dateKey(tx.Date)
		if i, ok := index[key]; ok {
			aggs[i].Net = aggs[i].Net.Add(tx.Amount())
			continue
		}
		index[key] = len(aggs)
		aggs = append(aggs, DailyAggregate{Date: key, Net: tx.Amount()})
	}
	return aggs
}

// dateKey drops any time component from an ISO date-time.
func dateKey(date string) string {
	date = strings.TrimSpace(date)
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		return date[:i]
	}
	return date
}
