package valuation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/models"
)

// ProjectionInput is a validated set of projection parameters. Rates are
// percentages.
type ProjectionInput struct {
	Seed               decimal.Decimal
	Years              int
	AnnualContribution decimal.Decimal
	TaxRate            decimal.Decimal
	Scenarios          []models.ProjectionScenario
	BaseYear           int // calendar year of the last historical point
}

// Projection is the per-scenario trajectories plus the year-by-year table.
type Projection struct {
	Scenarios []models.ScenarioProjection
	Summary   []models.ProjectionYearSummary
}

// Project runs the yearly recurrence independently for each active
// scenario, starting every scenario from the same seed:
//
//	preGrowth = current + contribution
//	gain      = preGrowth × rate/100
//	tax       = max(gain, 0) × taxRate/100
//	current   = preGrowth + gain − tax
//
// The pre-tax trajectory compounds the same way without the tax term.
// No rounding is applied.
func Project(in ProjectionInput) Projection {
	years := in.Years
	if years < 0 {
		years = 0
	}

	var out Projection
	for _, sc := range in.Scenarios {
		if !sc.Active {
			continue
		}
		out.Scenarios = append(out.Scenarios, projectScenario(in, sc, years))
	}

	out.Summary = make([]models.ProjectionYearSummary, years)
	for i := 0; i < years; i++ {
		row := models.ProjectionYearSummary{
			YearIndex: i + 1,
			YearLabel: strconv.Itoa(in.BaseYear + i + 1),
			Values:    make([]decimal.Decimal, len(out.Scenarios)),
		}
		for s, sp := range out.Scenarios {
			row.Values[s] = sp.Values[i]
		}
		out.Summary[i] = row
	}
	return out
}

func projectScenario(in ProjectionInput, sc models.ProjectionScenario, years int) models.ScenarioProjection {
	rate := decimal.NewFromFloat(sc.GrowthRate)
	sp := models.ScenarioProjection{
		Scenario:     sc,
		Values:       make([]decimal.Decimal, years),
		PreTaxValues: make([]decimal.Decimal, years),
	}

	// Shift(-2) divides by 100 without rounding.
	current := in.Seed
	preTax := in.Seed
	for y := 0; y < years; y++ {
		preGrowth := current.Add(in.AnnualContribution)
		gain := preGrowth.Mul(rate).Shift(-2)
		tax := decimal.Zero
		if gain.IsPositive() {
			tax = gain.Mul(in.TaxRate).Shift(-2)
		}
		current = preGrowth.Add(gain).Sub(tax)
		sp.Values[y] = current

		preTaxStart := preTax.Add(in.AnnualContribution)
		preTax = preTaxStart.Add(preTaxStart.Mul(rate).Shift(-2))
		sp.PreTaxValues[y] = preTax
	}
	return sp
}

// Analyze runs the full pipeline: cumulative series, contribution default,
// projection and chart-ready output. An empty ledger with no positive
// contribution yields an Analysis with Empty set. With an empty ledger and a
// positive contribution, a zero-valued point dated now seeds the projection.
func Analyze(txs []models.Transaction, cfg models.ProjectionConfig, now time.Time) models.Analysis {
	cfg = cfg.Normalize()

	contribution := EstimateAnnualContribution(txs)
	if cfg.AnnualContribution != nil {
		contribution = decimal.NewFromFloat(*cfg.AnnualContribution)
	}

	series := Cumulative(Aggregate(txs))
	if len(series.Labels) == 0 {
		if !contribution.IsPositive() {
			return emptyAnalysis(cfg, contribution)
		}
		series = Series{
			Labels: []string{now.Format(models.DateLayout)},
			Values: []decimal.Decimal{decimal.Zero},
		}
	}

	lastLabel := series.Labels[len(series.Labels)-1]
	lastDate, err := time.Parse(models.DateLayout, lastLabel)
	if err != nil {
		lastDate = now
	}

	proj := Project(ProjectionInput{
		Seed:               series.Last(),
		Years:              cfg.Years,
		AnnualContribution: contribution,
		TaxRate:            decimal.NewFromFloat(cfg.TaxRate),
		Scenarios:          cfg.Scenarios(),
		BaseYear:           lastDate.Year(),
	})

	return models.Analysis{
		Config:             cfg,
		Seed:               series.Last(),
		AnnualContribution: contribution,
		Historical:         series.Points(),
		Projections:        proj.Scenarios,
		Summary:            proj.Summary,
		Chart:              BuildChart(series, proj, lastDate, cfg.Years),
	}
}

func emptyAnalysis(cfg models.ProjectionConfig, contribution decimal.Decimal) models.Analysis {
	return models.Analysis{
		Empty:              true,
		Config:             cfg,
		Seed:               decimal.Zero,
		AnnualContribution: contribution,
		Historical:         []models.ValuationPoint{},
		Projections:        []models.ScenarioProjection{},
		Summary:            []models.ProjectionYearSummary{},
		Chart:              models.ChartData{Labels: []string{}, Series: []models.ChartSeries{}},
	}
}

// BuildChart lays the historical series and every projected trajectory on
// one label axis. Projected labels are lastDate plus whole years. Each
// series is nil-padded over the range it does not cover. The primary
// scenario also gets its pre-tax line.
func BuildChart(hist Series, proj Projection, lastDate time.Time, years int) models.ChartData {
	n := len(hist.Labels)
	labels := make([]string, 0, n+years)
	labels = append(labels, hist.Labels...)
	for i := 1; i <= years; i++ {
		labels = append(labels, lastDate.AddDate(i, 0, 0).Format(models.DateLayout))
	}

	historical := make([]*float64, n+years)
	for i, v := range hist.Values {
		historical[i] = presentationValue(v)
	}
	chart := models.ChartData{
		Labels: labels,
		Series: []models.ChartSeries{{Name: "Historical", Values: historical}},
	}

	for i, sp := range proj.Scenarios {
		rate := strconv.FormatFloat(sp.Scenario.GrowthRate, 'f', -1, 64)
		if i == 0 {
			chart.Series = append(chart.Series, models.ChartSeries{
				Name:   fmt.Sprintf("%s pre-tax (%s%%)", sp.Scenario.Name, rate),
				Values: padProjected(n, sp.PreTaxValues),
			})
		}
		chart.Series = append(chart.Series, models.ChartSeries{
			Name:   fmt.Sprintf("%s post-tax (%s%%)", sp.Scenario.Name, rate),
			Values: padProjected(n, sp.Values),
		})
	}
	return chart
}

func padProjected(histLen int, values []decimal.Decimal) []*float64 {
	out := make([]*float64, histLen+len(values))
	for i, v := range values {
		out[histLen+i] = presentationValue(v)
	}
	return out
}

// presentationValue rounds to cents for display.
func presentationValue(d decimal.Decimal) *float64 {
	f := d.Round(2).InexactFloat64()
	return &f
}
