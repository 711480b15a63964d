package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// Projection parameter domains.
const (
	MinProjectionYears = 1
	MaxProjectionYears = 50
	MaxRatePercent     = 100
)

// ValuationPoint is the cumulative portfolio value at the close of a date.
type ValuationPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// ProjectionConfig holds caller-supplied projection parameters. Optional
// scenario rates and the contribution are nil when not supplied; a nil
// contribution means "use the estimated historical average".
type ProjectionConfig struct {
	Years               int      `json:"years"`
	GrowthRatePrimary   float64  `json:"growthRatePrimary"`
	GrowthRateScenario2 *float64 `json:"growthRateScenario2,omitempty"`
	GrowthRateScenario3 *float64 `json:"growthRateScenario3,omitempty"`
	TaxRate             float64  `json:"taxRate"`
	AnnualContribution  *float64 `json:"annualContribution,omitempty"`
}

// DefaultProjectionConfig returns the out-of-the-box projection settings.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{Years: 10, GrowthRatePrimary: 10, TaxRate: 15}
}

// Normalize returns a copy with every value clamped into its domain.
// NaN and infinities become 0 before clamping.
func (c ProjectionConfig) Normalize() ProjectionConfig {
	out := ProjectionConfig{
		Years:             clampInt(c.Years, MinProjectionYears, MaxProjectionYears),
		GrowthRatePrimary: clampFloat(c.GrowthRatePrimary, 0, MaxRatePercent),
		TaxRate:           clampFloat(c.TaxRate, 0, MaxRatePercent),
	}
	if c.GrowthRateScenario2 != nil {
		v := clampFloat(*c.GrowthRateScenario2, 0, MaxRatePercent)
		out.GrowthRateScenario2 = &v
	}
	if c.GrowthRateScenario3 != nil {
		v := clampFloat(*c.GrowthRateScenario3, 0, MaxRatePercent)
		out.GrowthRateScenario3 = &v
	}
	if c.AnnualContribution != nil {
		v := clampFloat(*c.AnnualContribution, 0, math.MaxFloat64)
		out.AnnualContribution = &v
	}
	return out
}

// Scenarios returns the active scenarios in order: primary first, then
// scenario 2 and 3 when their rates are set.
func (c ProjectionConfig) Scenarios() []ProjectionScenario {
	scenarios := []ProjectionScenario{{Name: "Primary", GrowthRate: c.GrowthRatePrimary, Active: true}}
	if c.GrowthRateScenario2 != nil {
		scenarios = append(scenarios, ProjectionScenario{Name: "Scenario 2", GrowthRate: *c.GrowthRateScenario2, Active: true})
	}
	if c.GrowthRateScenario3 != nil {
		scenarios = append(scenarios, ProjectionScenario{Name: "Scenario 3", GrowthRate: *c.GrowthRateScenario3, Active: true})
	}
	return scenarios
}

// ProjectionYears converts a parsed year count to an int inside
// [MinProjectionYears, MaxProjectionYears]. The float is clamped first so
// huge values do not overflow the conversion.
func ProjectionYears(v float64) int {
	return int(clampFloat(v, MinProjectionYears, MaxProjectionYears))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return math.Min(math.Max(v, lo), hi)
}

// ProjectionScenario is one growth-rate trajectory.
type ProjectionScenario struct {
	Name       string  `json:"name"`
	GrowthRate float64 `json:"growthRate"`
	Active     bool    `json:"active"`
}

// ScenarioProjection holds one scenario's projected year-end values, after
// tax and before tax.
type ScenarioProjection struct {
	Scenario     ProjectionScenario `json:"scenario"`
	Values       []decimal.Decimal  `json:"values"`
	PreTaxValues []decimal.Decimal  `json:"preTaxValues"`
}

// ProjectionYearSummary is one row of the projection table.
type ProjectionYearSummary struct {
	YearIndex int               `json:"yearIndex"`
	YearLabel string            `json:"yearLabel"`
	Values    []decimal.Decimal `json:"values"`
}

// ChartSeries is one named line. Nil entries pad the ranges the series
// does not cover.
type ChartSeries struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// ChartData is a set of series sharing one label axis.
type ChartData struct {
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// Analysis is the full valuation and projection result for one ledger.
// Empty is set when there is nothing to project.
type Analysis struct {
	Empty              bool                    `json:"empty"`
	Config             ProjectionConfig        `json:"config"`
	Seed               decimal.Decimal         `json:"seed"`
	AnnualContribution decimal.Decimal         `json:"annualContribution"`
	Historical         []ValuationPoint        `json:"historical"`
	Projections        []ScenarioProjection    `json:"projections"`
	Summary            []ProjectionYearSummary `json:"summary"`
	Chart              ChartData               `json:"chart"`
}

// LedgerStats summarises a user's ledger.
type LedgerStats struct {
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AverageAmount decimal.Decimal `json:"averageAmount"`
	TotalCount    int             `json:"totalCount"`
	LatestDate    string          `json:"latestDate,omitempty"`
}

// ImportResult reports the outcome of a batch import.
type ImportResult struct {
	ImportedCount int      `json:"importedCount"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors,omitempty"`
}
