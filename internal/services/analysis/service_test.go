package analysis

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/investtrack/internal/common"
	"github.com/bobmcallan/investtrack/internal/models"
	"github.com/bobmcallan/investtrack/internal/storage/memory"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func newTestService(t *testing.T) (*Service, *memory.Manager) {
	t.Helper()
	store := memory.NewManager()
	svc := NewService(store, common.NewSilentLogger(), common.NewDefaultConfig().Analysis)
	svc.SetClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	return svc, store
}

func seed(t *testing.T, store *memory.Manager, userID string, txs ...models.Transaction) {
	t.Helper()
	_, err := store.LedgerStore().SaveBatch(context.Background(), userID, txs)
	require.NoError(t, err)
}

func buy(date, amount string) models.Transaction {
	return models.Transaction{
		Date:      date,
		Type:      models.TxPurchase,
		Magnitude: decimal.RequireFromString(amount),
		Name:      "Fund",
		Category:  models.CategoryMutualFunds,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestProject_ConcreteScenario(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "alice", buy("2024-01-01", "1000"))

	result, err := svc.Project(context.Background(), "alice", models.ProjectionConfig{
		Years:              1,
		GrowthRatePrimary:  10,
		TaxRate:            15,
		AnnualContribution: floatPtr(500),
	})
	require.NoError(t, err)
	require.False(t, result.Empty)
	require.Len(t, result.Projections, 1)
	assert.True(t, result.Projections[0].Values[0].Equal(decimal.RequireFromString("1627.5")))
	assert.Equal(t, "2025", result.Summary[0].YearLabel)
}

func TestValuationAndContribution(t *testing.T) {
	svc, store := newTestService(t)
	sale := buy("2024-02-01", "200")
	sale.Type = models.TxSale
	seed(t, store, "alice", buy("2024-01-01", "1000"), sale, buy("2024-01-01", "50"))

	series, err := svc.Valuation(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01"}, series.Labels)
	assert.True(t, series.Last().Equal(decimal.NewFromInt(850)))

	c, err := svc.Contribution(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, c.Equal(decimal.NewFromInt(1050)), "short spans floor to one year")
}

func TestChart_RendersPNG(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "alice", buy("2023-01-01", "1000"), buy("2024-01-01", "500"))

	png, err := svc.Chart(context.Background(), "alice", models.ProjectionConfig{
		Years:               5,
		GrowthRatePrimary:   7,
		GrowthRateScenario2: floatPtr(3),
		TaxRate:             15,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestChart_SinglePointFlatLedger(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "alice", buy("2024-01-01", "1000"))

	png, err := svc.Chart(context.Background(), "alice", models.ProjectionConfig{
		Years:              2,
		AnnualContribution: floatPtr(0),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestChart_EmptyLedger(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Chart(context.Background(), "nobody", models.DefaultProjectionConfig())
	assert.True(t, errors.Is(err, ErrNothingToProject))

	result, err := svc.Project(context.Background(), "nobody", models.DefaultProjectionConfig())
	require.NoError(t, err)
	assert.True(t, result.Empty)

	result, err = svc.Project(context.Background(), "nobody", models.ProjectionConfig{Years: 1, AnnualContribution: floatPtr(100)})
	require.NoError(t, err)
	require.False(t, result.Empty)
	assert.Equal(t, "2025-06-01", result.Historical[0].Date)
}

func TestSettings_DefaultsAndRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cfg, err := svc.Settings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProjectionConfig(), cfg)

	saved, err := svc.SaveSettings(ctx, "alice", models.ProjectionConfig{
		Years:               80,
		GrowthRatePrimary:   6,
		GrowthRateScenario2: floatPtr(-4),
		TaxRate:             20,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaxProjectionYears, saved.Years)
	require.NotNil(t, saved.GrowthRateScenario2)
	assert.Zero(t, *saved.GrowthRateScenario2)

	loaded, err := svc.Settings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	other, err := svc.Settings(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProjectionConfig(), other)

	reset, err := svc.ResetSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProjectionConfig(), reset)
	loaded, err = svc.Settings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProjectionConfig(), loaded)

	_, err = svc.ResetSettings(ctx, "alice")
	assert.NoError(t, err, "resetting twice is not an error")
}

func TestRenderProjectionChart_RejectsBadInput(t *testing.T) {
	_, err := RenderProjectionChart(models.ChartData{})
	assert.Error(t, err)

	v := 1.0
	_, err = RenderProjectionChart(models.ChartData{
		Labels: []string{"soon", "later"},
		Series: []models.ChartSeries{
			{Name: "Historical", Values: []*float64{&v, nil}},
			{Name: "Primary post-tax (10%)", Values: []*float64{nil, &v}},
		},
	})
	assert.Error(t, err)
}
