package ledger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/investtrack/internal/models"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func roundTripLedger() []models.Transaction {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)
	return []models.Transaction{
		{
			Date:      "2024-01-01",
			Type:      models.TxPurchase,
			Magnitude: decimal.RequireFromString("1000"),
			Name:      `Fund, "Growth"`,
			Category:  models.CategoryMutualFunds,
		},
		{
			ID:            "a1b2",
			Date:          "2024-02-15",
			Type:          models.TxSale,
			Magnitude:     decimal.RequireFromString("262.5"),
			Name:          "ACME Corp",
			Category:      models.CategoryStocks,
			Symbol:        "AC,ME",
			Quantity:      nd("10.5"),
			PurchasePrice: nd("25"),
			Notes:         "line one\nline \"two\", with comma",
			Timestamp:     &ts,
		},
		{
			Date:      "2023-12-31",
			Type:      models.TxPurchase,
			Magnitude: decimal.RequireFromString("0.01"),
			Name:      "  spaced  ",
			Category:  models.CategoryOther,
			Notes:     "",
		},
	}
}

func assertTransactionsEqual(t *testing.T, want, got []models.Transaction) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID, "row %d id", i)
		assert.Equal(t, w.Date, g.Date, "row %d date", i)
		assert.Equal(t, w.Type, g.Type, "row %d type", i)
		assert.True(t, w.Magnitude.Equal(g.Magnitude), "row %d magnitude: want %s got %s", i, w.Magnitude, g.Magnitude)
		assert.True(t, w.Amount().Equal(g.Amount()), "row %d amount", i)
		assert.Equal(t, w.Name, g.Name, "row %d name", i)
		assert.Equal(t, w.Category, g.Category, "row %d category", i)
		assert.Equal(t, w.Symbol, g.Symbol, "row %d symbol", i)
		assert.Equal(t, w.Notes, g.Notes, "row %d notes", i)
		assert.Equal(t, w.Quantity.Valid, g.Quantity.Valid, "row %d quantity presence", i)
		assert.True(t, w.Quantity.Decimal.Equal(g.Quantity.Decimal), "row %d quantity", i)
		assert.Equal(t, w.PurchasePrice.Valid, g.PurchasePrice.Valid, "row %d price presence", i)
		assert.True(t, w.PurchasePrice.Decimal.Equal(g.PurchasePrice.Decimal), "row %d price", i)
		if w.Timestamp == nil {
			assert.Nil(t, g.Timestamp, "row %d timestamp", i)
		} else {
			require.NotNil(t, g.Timestamp, "row %d timestamp", i)
			assert.True(t, w.Timestamp.Equal(*g.Timestamp), "row %d timestamp", i)
		}
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	ledger := roundTripLedger()

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, ledger))

	result, err := DecodeCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)
	assertTransactionsEqual(t, ledger, result.Transactions)
}

func TestEncodeCSV_QuotingRules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, roundTripLedger()[:1]))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,date,category,type,symbol,quantity,purchasePrice,amount,notes,timestamp", lines[0])
	assert.Equal(t, `,"Fund, ""Growth""",2024-01-01,Mutual Funds,Purchase,,,,1000,"",`, lines[1])
}

func TestEncodeCSV_SaleIsNegative(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, []models.Transaction{{
		Date: "2024-01-01", Type: models.TxSale, Magnitude: decimal.NewFromInt(40), Name: "x", Category: models.CategoryCrypto,
	}}))
	assert.Contains(t, buf.String(), ",Sale,,,,-40,")
}

func TestDecodeCSV_HeaderCaseAndAliases(t *testing.T) {
	input := "NAME,Date,Purchase_Price,QUANTITY,extra\r\n" +
		"Gold,2024-03-04T10:00:00Z,12.5,4,ignored\r\n"

	result, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, "Gold", tx.Name)
	assert.Equal(t, "2024-03-04", tx.Date)
	assert.Equal(t, models.TxPurchase, tx.Type)
	assert.True(t, tx.Magnitude.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, models.CategoryOther, tx.Category)
	assert.Empty(t, tx.ID)
	assert.Nil(t, tx.Timestamp)
}

func TestDecodeCSV_TypeInferredFromSign(t *testing.T) {
	input := "date,name,amount,category\n2024-01-01,Sold,-75.25,crypto\n2024-01-02,Bought,10,Stocks\n"

	result, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)

	assert.Equal(t, models.TxSale, result.Transactions[0].Type)
	assert.True(t, result.Transactions[0].Magnitude.Equal(decimal.RequireFromString("75.25")))
	assert.Equal(t, models.CategoryCrypto, result.Transactions[0].Category)
	assert.Equal(t, models.TxPurchase, result.Transactions[1].Type)
}

func TestDecodeCSV_ExplicitTypeWins(t *testing.T) {
	input := "date,name,amount,type\n2024-01-01,Refund,25,Sale\n"

	result, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, models.TxSale, result.Transactions[0].Type)
	assert.True(t, result.Transactions[0].Amount().Equal(decimal.NewFromInt(-25)))
}

func TestDecodeCSV_SkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"name,date,amount,type",
		"Good,2024-01-01,100,",
		"Short,2024-01-01",
		"BadDate,not-a-date,5,",
		"BadAmount,2024-01-01,abc,",
		",2024-01-01,5,",
		"",
		`"Multi`,
		`line",2024-01-02,7,`,
		"BadType,2024-01-01,5,gift",
		"Last,2024-01-03,1,",
	}, "\n")

	result, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)

	names := make([]string, 0, len(result.Transactions))
	for _, tx := range result.Transactions {
		names = append(names, tx.Name)
	}
	assert.Equal(t, []string{"Good", "Multi\nline", "Last"}, names)

	require.Len(t, result.Skipped, 5)
	lines := make([]int, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		lines = append(lines, s.Line)
		assert.NotEmpty(t, s.Reason)
	}
	assert.Equal(t, []int{3, 4, 5, 6, 10}, lines)
	assert.Contains(t, result.Skipped[0].Reason, "expected at least 3 fields")
	assert.Equal(t, "line 6: missing name", result.Skipped[3].Error())
}

func TestDecodeCSV_MissingColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no date", "name,amount\nA,1\n"},
		{"no name", "date,amount\n2024-01-01,1\n"},
		{"no amount source", "date,name,quantity\n2024-01-01,A,3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumns))
		})
	}
}

func TestScanRows_Automaton(t *testing.T) {
	rows := scanRows("a,\"b,\"\"c\"\"\",d\r\n\r\n\"x\ny\",z")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", `b,"c"`, "d"}, rows[0].fields)
	assert.Equal(t, 1, rows[0].line)
	assert.Equal(t, []string{"x\ny", "z"}, rows[1].fields)
	assert.Equal(t, 3, rows[1].line)
}
