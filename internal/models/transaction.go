// Package models defines data structures for investtrack
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DateLayout is the normalized calendar date format used across the ledger.
const DateLayout = "2006-01-02"

// Category classifies a transaction's asset class.
type Category string

const (
	CategoryStocks      Category = "Stocks"
	CategoryCrypto      Category = "Crypto"
	CategoryMutualFunds Category = "Mutual Funds"
	CategoryBonds       Category = "Bonds"
	CategoryRealEstate  Category = "Real Estate"
	CategoryOther       Category = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryStocks,
	CategoryCrypto,
	CategoryMutualFunds,
	CategoryBonds,
	CategoryRealEstate,
	CategoryOther,
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// NormalizeCategory returns the matching category, or CategoryOther when s
// is empty or unknown.
func NormalizeCategory(s string) Category {
	if c, ok := ParseCategory(s); ok {
		return c
	}
	return CategoryOther
}

// TransactionType tags a transaction as capital added or removed.
type TransactionType string

const (
	TxPurchase TransactionType = "Purchase"
	TxSale     TransactionType = "Sale"
)

// ParseTransactionType matches s case-insensitively. "buy" and "sell" are
// accepted as aliases.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "purchase", "buy":
		return TxPurchase, true
	case "sale", "sell":
		return TxSale, true
	default:
		return "", false
	}
}

// TypeFromSign infers the transaction type from a signed amount. Only used
// where external input carries no explicit type.
func TypeFromSign(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TxSale
	}
	return TxPurchase
}

// ResolveMagnitude returns quantity × price when both are present and
// positive, otherwise the absolute value of amount.
func ResolveMagnitude(amount decimal.Decimal, quantity, price decimal.NullDecimal) decimal.Decimal {
	if quantity.Valid && price.Valid && quantity.Decimal.IsPositive() && price.Decimal.IsPositive() {
		return quantity.Decimal.Mul(price.Decimal)
	}
	return amount.Abs()
}

// NormalizeDate truncates an ISO 8601 date or date-time to its date part and
// returns it in fixed-width YYYY-MM-DD form.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	for _, layout := range []string{DateLayout, "2006-1-2"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// Transaction is a single ledger entry. Magnitude is never negative; the
// signed amount is derived from Type.
type Transaction struct {
	ID            string
	Date          string // YYYY-MM-DD
	Type          TransactionType
	Magnitude     decimal.Decimal
	Name          string
	Category      Category
	Symbol        string
	Quantity      decimal.NullDecimal
	PurchasePrice decimal.NullDecimal
	Notes         string
	Timestamp     *time.Time
}

// Amount returns the signed amount: positive for purchases, negative for sales.
func (t Transaction) Amount() decimal.Decimal {
	if t.Type == TxSale {
		return t.Magnitude.Neg()
	}
	return t.Magnitude
}

// transactionJSON is the wire form. It carries the signed amount alongside
// the explicit type.
type transactionJSON struct {
	ID            string           `json:"id,omitempty"`
	Name          string           `json:"name"`
	Date          string           `json:"date"`
	Category      Category         `json:"category"`
	Type          TransactionType  `json:"type"`
	Symbol        string           `json:"symbol,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	Notes         string           `json:"notes,omitempty"`
	Timestamp     *time.Time       `json:"timestamp,omitempty"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	w := transactionJSON{
		ID:        t.ID,
		Name:      t.Name,
		Date:      t.Date,
		Category:  t.Category,
		Type:      t.Type,
		Symbol:    t.Symbol,
		Amount:    t.Amount(),
		Notes:     t.Notes,
		Timestamp: t.Timestamp,
	}
	if t.Quantity.Valid {
		q := t.Quantity.Decimal
		w.Quantity = &q
	}
	if t.PurchasePrice.Valid {
		p := t.PurchasePrice.Decimal
		w.PurchasePrice = &p
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the wire form. When type is absent it is inferred
// from the sign of amount; an unknown type is kept verbatim so validation
// can reject it.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w transactionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*t = Transaction{
		ID:        w.ID,
		Name:      w.Name,
		Date:      w.Date,
		Category:  w.Category,
		Symbol:    w.Symbol,
		Notes:     w.Notes,
		Timestamp: w.Timestamp,
	}
	if w.Quantity != nil {
		t.Quantity = decimal.NewNullDecimal(*w.Quantity)
	}
	if w.PurchasePrice != nil {
		t.PurchasePrice = decimal.NewNullDecimal(*w.PurchasePrice)
	}

	switch {
	case w.Type == "":
		t.Type = TypeFromSign(w.Amount)
	default:
		if typ, ok := ParseTransactionType(string(w.Type)); ok {
			t.Type = typ
		} else {
			t.Type = w.Type
		}
	}
	t.Magnitude = ResolveMagnitude(w.Amount, t.Quantity, t.PurchasePrice)
	return nil
}
