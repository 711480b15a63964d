package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/bobmcallan/investtrack/internal/ledger"
	"github.com/bobmcallan/investtrack/internal/models"
	"github.com/bobmcallan/investtrack/internal/services/analysis"
	"github.com/bobmcallan/investtrack/internal/valuation"
)

var commands = []subcommands.Command{
	&seriesCmd{},
	&contributionCmd{},
	&projectCmd{},
	&chartCmd{},
	&viewCmd{},
	&fmtCmd{},
}

// fileArg returns the single CSV argument or reports usage.
func fileArg(f *flag.FlagSet) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one ledger CSV file")
		return "", false
	}
	return f.Arg(0), true
}

type seriesCmd struct{}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "print the cumulative valuation series" }
func (*seriesCmd) Usage() string {
	return `invest-cli series <ledger.csv>

  Prints one line per distinct date with the running total of signed amounts.
`
}
func (*seriesCmd) SetFlags(*flag.FlagSet) {}

func (*seriesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	file, ok := fileArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	txs, err := loadLedger(file, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	writeSeries(os.Stdout, valuation.Cumulative(valuation.Aggregate(txs)))
	return subcommands.ExitSuccess
}

func writeSeries(w io.Writer, s valuation.Series) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tValue\t")
	for i := range s.Labels {
		fmt.Fprintf(tw, "%s\t%s\t\n", s.Labels[i], s.Values[i].StringFixed(2))
	}
	tw.Flush()
}

type contributionCmd struct{}

func (*contributionCmd) Name() string     { return "contribution" }
func (*contributionCmd) Synopsis() string { return "estimate the average annual contribution" }
func (*contributionCmd) Usage() string {
	return `invest-cli contribution <ledger.csv>

  Averages purchases over the span between the first and last purchase,
  floored at one year.
`
}
func (*contributionCmd) SetFlags(*flag.FlagSet) {}

func (*contributionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	file, ok := fileArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	txs, err := loadLedger(file, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(valuation.EstimateAnnualContribution(txs).StringFixed(2))
	return subcommands.ExitSuccess
}

type projectCmd struct {
	flags projectionFlags
	json  bool
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "project the portfolio value forward" }
func (*projectCmd) Usage() string {
	return `invest-cli project [-years n] [-growth r] [-growth2 r] [-growth3 r] [-tax r] [-contribution c] [-json] <ledger.csv>

  Projects the current value forward year by year for up to three growth
  scenarios and prints the year-by-year table.
`
}

func (p *projectCmd) SetFlags(f *flag.FlagSet) {
	p.flags.register(f)
	f.BoolVar(&p.json, "json", false, "Print the full analysis as JSON.")
}

func (p *projectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	file, ok := fileArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	txs, err := loadLedger(file, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	result := valuation.Analyze(txs, p.flags.config(), time.Now().UTC())
	if p.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if result.Empty {
		fmt.Println("nothing to project")
		return subcommands.ExitSuccess
	}
	writeProjection(os.Stdout, result)
	return subcommands.ExitSuccess
}

func writeProjection(w io.Writer, a models.Analysis) {
	fmt.Fprintf(w, "Current value:        %s\n", a.Seed.StringFixed(2))
	fmt.Fprintf(w, "Annual contribution:  %s\n", a.AnnualContribution.StringFixed(2))
	fmt.Fprintf(w, "Tax on gains:         %g%%\n\n", a.Config.TaxRate)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	header := []string{"Year"}
	for _, sp := range a.Projections {
		header = append(header, fmt.Sprintf("%s (%g%%)", sp.Scenario.Name, sp.Scenario.GrowthRate))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, row := range a.Summary {
		cells := []string{row.YearLabel}
		for _, v := range row.Values {
			cells = append(cells, v.StringFixed(2))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	tw.Flush()
}

type chartCmd struct {
	flags  projectionFlags
	output string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render the valuation and projection as a PNG" }
func (*chartCmd) Usage() string {
	return `invest-cli chart [-o out.png] [projection flags] <ledger.csv>

  Renders the historical series and every projected scenario as a PNG chart.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	c.flags.register(f)
	f.StringVar(&c.output, "o", "projection.png", "Output PNG file.")
}

func (c *chartCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	file, ok := fileArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	txs, err := loadLedger(file, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	result := valuation.Analyze(txs, c.flags.config(), time.Now().UTC())
	if result.Empty {
		fmt.Println("nothing to project")
		return subcommands.ExitSuccess
	}
	png, err := analysis.RenderProjectionChart(result.Chart)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.output, png, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %s\n", c.output)
	return subcommands.ExitSuccess
}

type viewCmd struct {
	search    string
	sort      string
	direction string
	toggle    string
}

func (v *viewCmd) query() ledger.Query {
	return ledger.Query{
		Search: v.search,
		Sort:   ledger.ResolveSort(v.sort, v.direction, v.toggle),
	}
}

func (*viewCmd) Name() string     { return "view" }
func (*viewCmd) Synopsis() string { return "filter and sort the ledger" }
func (*viewCmd) Usage() string {
	return fmt.Sprintf(`invest-cli view [-search text] [-sort key] [-direction asc|desc] [-toggle key] <ledger.csv>

  Prints the transactions whose name or date contains the search text.
  -toggle sorts by key, flipping the direction when it matches -sort.
  Sort keys: %s
`, strings.Join(ledger.SortKeys(), ", "))
}

func (v *viewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&v.search, "search", "", "Case-insensitive text matched against name and date.")
	f.StringVar(&v.sort, "sort", "date", "Field to sort by.")
	f.StringVar(&v.direction, "direction", "desc", "Sort direction, asc or desc.")
	f.StringVar(&v.toggle, "toggle", "", "Key to sort by next; repeats of -sort flip the direction.")
}

func (v *viewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	file, ok := fileArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	txs, err := loadLedger(file, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	view, err := ledger.View(txs, v.query())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	writeTransactions(os.Stdout, view)
	return subcommands.ExitSuccess
}

func writeTransactions(w io.Writer, txs []models.Transaction) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tName\tCategory\tType\tAmount")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tx.Date, tx.Name, tx.Category, tx.Type, tx.Amount().StringFixed(2))
	}
	tw.Flush()
}

type fmtCmd struct{}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "decode a ledger CSV and re-encode it to stdout" }
func (*fmtCmd) Usage() string {
	return `invest-cli fmt <ledger.csv>

  Rewrites the ledger in canonical column order. Malformed rows are
  reported on stderr and dropped.
`
}
func (*fmtCmd) SetFlags(*flag.FlagSet) {}

func (*fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	file, ok := fileArg(f)
	if !ok {
		return subcommands.ExitUsageError
	}
	txs, err := loadLedger(file, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := ledger.EncodeCSV(os.Stdout, txs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
