package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-01-01", "2024-01-01", false},
		{"2024-01-01T15:04:05Z", "2024-01-01", false},
		{"2024-01-01 09:30", "2024-01-01", false},
		{" 2024-3-7 ", "2024-03-07", false},
		{"01/02/2024", "", true},
		{"", "", true},
		{"2024-13-01", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryMutualFunds, NormalizeCategory("mutual funds"))
	assert.Equal(t, CategoryRealEstate, NormalizeCategory(" Real Estate "))
	assert.Equal(t, CategoryOther, NormalizeCategory("Art"))
	assert.Equal(t, CategoryOther, NormalizeCategory(""))
}

func TestTransaction_Amount(t *testing.T) {
	buy := Transaction{Type: TxPurchase, Magnitude: decimal.NewFromInt(100)}
	sell := Transaction{Type: TxSale, Magnitude: decimal.NewFromInt(40)}

	assert.True(t, buy.Amount().Equal(decimal.NewFromInt(100)))
	assert.True(t, sell.Amount().Equal(decimal.NewFromInt(-40)))
}

func TestResolveMagnitude(t *testing.T) {
	q := decimal.NewNullDecimal(decimal.NewFromInt(4))
	p := decimal.NewNullDecimal(decimal.RequireFromString("12.5"))

	got := ResolveMagnitude(decimal.NewFromInt(-1), q, p)
	assert.True(t, got.Equal(decimal.NewFromInt(50)), "quantity × price wins, got %s", got)

	got = ResolveMagnitude(decimal.NewFromInt(-30), q, decimal.NullDecimal{})
	assert.True(t, got.Equal(decimal.NewFromInt(30)))

	zero := decimal.NewNullDecimal(decimal.Zero)
	got = ResolveMagnitude(decimal.NewFromInt(7), zero, p)
	assert.True(t, got.Equal(decimal.NewFromInt(7)))
}

func TestTransaction_JSONSignedAmount(t *testing.T) {
	tx := Transaction{
		ID:        "abc",
		Date:      "2024-02-03",
		Type:      TxSale,
		Magnitude: decimal.RequireFromString("250.75"),
		Name:      "ACME",
		Category:  CategoryStocks,
	}
	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, -250.75, raw["amount"])
	assert.Equal(t, "Sale", raw["type"])
	assert.NotContains(t, raw, "quantity")

	var back Transaction
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, TxSale, back.Type)
	assert.True(t, back.Magnitude.Equal(tx.Magnitude))
}

func TestTransaction_UnmarshalInfersType(t *testing.T) {
	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","date":"2024-01-01","amount":-12}`), &tx))
	assert.Equal(t, TxSale, tx.Type)
	assert.True(t, tx.Magnitude.Equal(decimal.NewFromInt(12)))

	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","date":"2024-01-01","type":"buy","quantity":3,"purchasePrice":"2.5"}`), &tx))
	assert.Equal(t, TxPurchase, tx.Type)
	assert.True(t, tx.Magnitude.Equal(decimal.RequireFromString("7.5")))

	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","date":"2024-01-01","type":"gift","amount":5}`), &tx))
	assert.Equal(t, TransactionType("gift"), tx.Type)
}

func TestProjectionConfig_Normalize(t *testing.T) {
	neg := -5.0
	big := 250.0
	nan := math.NaN()

	cfg := ProjectionConfig{
		Years:               0,
		GrowthRatePrimary:   math.Inf(1),
		GrowthRateScenario2: &big,
		GrowthRateScenario3: &nan,
		TaxRate:             -1,
		AnnualContribution:  &neg,
	}
	got := cfg.Normalize()

	assert.Equal(t, 1, got.Years)
	assert.Equal(t, 0.0, got.GrowthRatePrimary)
	require.NotNil(t, got.GrowthRateScenario2)
	assert.Equal(t, 100.0, *got.GrowthRateScenario2)
	require.NotNil(t, got.GrowthRateScenario3)
	assert.Equal(t, 0.0, *got.GrowthRateScenario3)
	assert.Equal(t, 0.0, got.TaxRate)
	require.NotNil(t, got.AnnualContribution)
	assert.Equal(t, 0.0, *got.AnnualContribution)

	assert.Equal(t, 250.0, big, "input must not be mutated")
	assert.Equal(t, 50, ProjectionConfig{Years: 99}.Normalize().Years)
}

func TestProjectionYears(t *testing.T) {
	assert.Equal(t, 50, ProjectionYears(1e19))
	assert.Equal(t, 1, ProjectionYears(math.Inf(1)), "infinity is treated as 0")
	assert.Equal(t, 1, ProjectionYears(math.NaN()))
	assert.Equal(t, 1, ProjectionYears(-1e300))
	assert.Equal(t, 25, ProjectionYears(25.7))
}

func TestProjectionConfig_Scenarios(t *testing.T) {
	cfg := DefaultProjectionConfig()
	require.Len(t, cfg.Scenarios(), 1)

	r3 := 4.0
	cfg.GrowthRateScenario3 = &r3
	s := cfg.Scenarios()
	require.Len(t, s, 2)
	assert.Equal(t, "Scenario 3", s[1].Name)
	assert.Equal(t, 4.0, s[1].GrowthRate)
	assert.True(t, s[1].Active)
}
