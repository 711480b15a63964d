package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bobmcallan/investtrack/internal/ledger"
	"github.com/bobmcallan/investtrack/internal/models"
)

// loadLedger decodes a CSV ledger file. Skipped rows are reported on warn.
func loadLedger(filename string, warn io.Writer) ([]models.Transaction, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result, err := ledger.DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	for _, rowErr := range result.Skipped {
		fmt.Fprintf(warn, "%s: skipped %v\n", filename, rowErr)
	}
	return result.Transactions, nil
}

// projectionFlags holds projection flags as text so an unparsable value
// can fall back to 0 instead of aborting.
type projectionFlags struct {
	years        string
	growth       string
	growth2      string
	growth3      string
	tax          string
	contribution string
}

func (p *projectionFlags) register(set *flag.FlagSet) {
	set.StringVar(&p.years, "years", "10", "Number of years to project (1-50).")
	set.StringVar(&p.growth, "growth", "10", "Primary annual growth rate in percent.")
	set.StringVar(&p.growth2, "growth2", "", "Growth rate of scenario 2 in percent. Empty disables it.")
	set.StringVar(&p.growth3, "growth3", "", "Growth rate of scenario 3 in percent. Empty disables it.")
	set.StringVar(&p.tax, "tax", "15", "Tax rate on positive yearly gains in percent.")
	set.StringVar(&p.contribution, "contribution", "", "Annual contribution. Empty uses the historical average.")
}

func (p *projectionFlags) config() models.ProjectionConfig {
	return models.ProjectionConfig{
		Years:               models.ProjectionYears(number(p.years)),
		GrowthRatePrimary:   number(p.growth),
		GrowthRateScenario2: optional(p.growth2),
		GrowthRateScenario3: optional(p.growth3),
		TaxRate:             number(p.tax),
		AnnualContribution:  optional(p.contribution),
	}
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func optional(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v := number(s)
	return &v
}
