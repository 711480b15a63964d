package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/investtrack/internal/models"
)

func validTx() models.Transaction {
	return models.Transaction{
		Date:      "2024-01-05T12:00:00Z",
		Type:      models.TxPurchase,
		Magnitude: decimal.NewFromInt(10),
		Name:      "Index fund",
		Category:  "bonds",
	}
}

func TestValidate_Normalizes(t *testing.T) {
	tx := validTx()
	require.NoError(t, Validate(&tx))
	assert.Equal(t, "2024-01-05", tx.Date)
	assert.Equal(t, models.CategoryBonds, tx.Category)

	tx = validTx()
	tx.Category = ""
	tx.Magnitude = decimal.Zero
	tx.Quantity = nd("3")
	tx.PurchasePrice = nd("1.5")
	require.NoError(t, Validate(&tx))
	assert.Equal(t, models.CategoryOther, tx.Category)
	assert.True(t, tx.Magnitude.Equal(decimal.RequireFromString("4.5")))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tx *models.Transaction)
		want   string
	}{
		{"missing name", func(tx *models.Transaction) { tx.Name = "  " }, "name is required"},
		{"missing date", func(tx *models.Transaction) { tx.Date = "" }, "date is required"},
		{"bad date", func(tx *models.Transaction) { tx.Date = "yesterday" }, "invalid date"},
		{"zero amount", func(tx *models.Transaction) { tx.Magnitude = decimal.Zero }, "greater than zero"},
		{"bad type", func(tx *models.Transaction) { tx.Type = "gift" }, "type must be"},
		{"bad category", func(tx *models.Transaction) { tx.Category = "Art" }, "unknown category"},
		{"negative quantity", func(tx *models.Transaction) { tx.Quantity = nd("-1") }, "quantity cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx()
			tt.mutate(&tx)
			err := Validate(&tx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransaction))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
