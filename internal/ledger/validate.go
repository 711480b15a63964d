// Package ledger provides the CSV codec, validation and the sort/filter
// view over a transaction ledger.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/investtrack/internal/models"
)

// ErrInvalidTransaction is wrapped by every validation failure.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Validate normalizes tx in place and rejects it when a required field is
// missing or out of domain. An empty category becomes Other; an unknown one
// is rejected. When quantity and price are both positive the magnitude is
// recomputed from them.
func Validate(tx *models.Transaction) error {
	if strings.TrimSpace(tx.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTransaction)
	}

	if strings.TrimSpace(tx.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}
	date, err := models.NormalizeDate(tx.Date)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	tx.Date = date

	switch tx.Type {
	case models.TxPurchase, models.TxSale:
	default:
		return fmt.Errorf("%w: type must be %q or %q, got %q", ErrInvalidTransaction, models.TxPurchase, models.TxSale, tx.Type)
	}

	if strings.TrimSpace(string(tx.Category)) == "" {
		tx.Category = models.CategoryOther
	} else if c, ok := models.ParseCategory(string(tx.Category)); ok {
		tx.Category = c
	} else {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTransaction, tx.Category)
	}

	if tx.Quantity.Valid && tx.Quantity.Decimal.IsNegative() {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidTransaction)
	}
	if tx.PurchasePrice.Valid && tx.PurchasePrice.Decimal.IsNegative() {
		return fmt.Errorf("%w: purchase price cannot be negative", ErrInvalidTransaction)
	}
	tx.Magnitude = models.ResolveMagnitude(tx.Magnitude, tx.Quantity, tx.PurchasePrice)
	if !tx.Magnitude.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTransaction)
	}
	return nil
}
