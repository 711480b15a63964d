package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/models"
)

// Series is a running-total time series as parallel label/value arrays.
type Series struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

// Cumulative folds daily aggregates into running totals.
func Cumulative(aggs []DailyAggregate) Series {
	s := Series{
		Labels: make([]string, 0, len(aggs)),
		Values: make([]decimal.Decimal, 0, len(aggs)),
	}
	running := decimal.Zero
	for _, a := range aggs {
		running = running.Add(a.Net)
		s.Labels = append(s.Labels, a.Date)
		s.Values = append(s.Values, running)
	}
	return s
}

// Points returns the series as ValuationPoints.
func (s Series) Points() []models.ValuationPoint {
	points := make([]models.ValuationPoint, len(s.Labels))
	for i := range s.Labels {
		points[i] = models.ValuationPoint{Date: s.Labels[i], Value: s.Values[i]}
	}
	return points
}

// Last returns the final value, or zero for an empty series.
func (s Series) Last() decimal.Decimal {
	if len(s.Values) == 0 {
		return decimal.Zero
	}
	return s.Values[len(s.Values)-1]
}

// ValuationSeries is Cumulative(Aggregate(txs)) as points.
func ValuationSeries(txs []models.Transaction) []models.ValuationPoint {
	return Cumulative(Aggregate(txs)).Points()
}
