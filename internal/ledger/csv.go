package ledger

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/models"
)

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

// Columns is the fixed header written by EncodeCSV.
var Columns = []string{
	"id", "name", "date", "category", "type", "symbol",
	"quantity", "purchasePrice", "amount", "notes", "timestamp",
}

// EncodeCSV writes a header row and one row per transaction. Name and notes
// are always quoted; id and symbol only when they contain a delimiter.
// Rows end with a bare newline.
func EncodeCSV(w io.Writer, txs []models.Transaction) error {
	if _, err := io.WriteString(w, strings.Join(Columns, ",")+"\n"); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	var b strings.Builder
	for _, tx := range txs {
		b.Reset()
		fields := []string{
			quoteIfNeeded(tx.ID),
			quote(tx.Name),
			tx.Date,
			string(tx.Category),
			string(tx.Type),
			quoteIfNeeded(tx.Symbol),
			nullDecimalText(tx.Quantity),
			nullDecimalText(tx.PurchasePrice),
			tx.Amount().String(),
			quote(tx.Notes),
			timestampText(tx.Timestamp),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

func nullDecimalText(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func timestampText(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339Nano)
}

// RowError describes a skipped row.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// DecodeResult holds the records decoded from a CSV document and the rows
// that were skipped.
type DecodeResult struct {
	Transactions []models.Transaction
	Skipped      []RowError
}

// DecodeCSV parses a CSV document. The header is matched case-insensitively
// and unknown columns are ignored. Malformed rows are skipped and reported in
// the result; only a missing header column is fatal.
func DecodeCSV(r io.Reader) (*DecodeResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	rows := scanRows(text)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMissingColumns)
	}

	cols, err := mapHeader(rows[0].fields)
	if err != nil {
		return nil, err
	}

	result := &DecodeResult{Transactions: []models.Transaction{}}
	for _, row := range rows[1:] {
		tx, reason := cols.decodeRow(row.fields)
		if reason != "" {
			result.Skipped = append(result.Skipped, RowError{Line: row.line, Reason: reason})
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}

// columnIndex maps each known column to its position, -1 when absent.
type columnIndex struct {
	id, name, date, category, typ, symbol    int
	quantity, price, amount, notes, timestamp int
	minFields                                int
}

func mapHeader(header []string) (*columnIndex, error) {
	cols := &columnIndex{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, 0}
	targets := map[string]*int{
		"id":             &cols.id,
		"name":           &cols.name,
		"date":           &cols.date,
		"category":       &cols.category,
		"type":           &cols.typ,
		"symbol":         &cols.symbol,
		"quantity":       &cols.quantity,
		"purchaseprice":  &cols.price,
		"purchase_price": &cols.price,
		"amount":         &cols.amount,
		"notes":          &cols.notes,
		"timestamp":      &cols.timestamp,
	}
	for i, h := range header {
		if p, ok := targets[strings.ToLower(strings.TrimSpace(h))]; ok && *p < 0 {
			*p = i
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "date")
	}
	if cols.name < 0 {
		missing = append(missing, "name")
	}
	if cols.amount < 0 && (cols.quantity < 0 || cols.price < 0) {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	required := []int{cols.date, cols.name, cols.amount}
	if cols.amount < 0 {
		required = append(required, cols.quantity, cols.price)
	}
	for _, i := range required {
		if i+1 > cols.minFields {
			cols.minFields = i + 1
		}
	}
	return cols, nil
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// decodeRow converts one row, returning a non-empty reason when the row
// must be skipped.
func (c *columnIndex) decodeRow(fields []string) (models.Transaction, string) {
	var tx models.Transaction
	if len(fields) < c.minFields {
		return tx, fmt.Sprintf("expected at least %d fields, got %d", c.minFields, len(fields))
	}

	date, err := models.NormalizeDate(field(fields, c.date))
	if err != nil {
		return tx, err.Error()
	}

	name := field(fields, c.name)
	if strings.TrimSpace(name) == "" {
		return tx, "missing name"
	}

	quantity, err := parseNullDecimal(field(fields, c.quantity))
	if err != nil {
		return tx, fmt.Sprintf("invalid quantity %q", field(fields, c.quantity))
	}
	price, err := parseNullDecimal(field(fields, c.price))
	if err != nil {
		return tx, fmt.Sprintf("invalid purchase price %q", field(fields, c.price))
	}

	amount := decimal.Zero
	rawAmount := strings.TrimSpace(field(fields, c.amount))
	switch {
	case rawAmount != "":
		amount, err = decimal.NewFromString(rawAmount)
		if err != nil {
			return tx, fmt.Sprintf("invalid amount %q", rawAmount)
		}
	case quantity.Valid && price.Valid:
		amount = quantity.Decimal.Mul(price.Decimal)
	default:
		return tx, "missing amount"
	}

	typ := models.TypeFromSign(amount)
	if raw := strings.TrimSpace(field(fields, c.typ)); raw != "" {
		var ok bool
		if typ, ok = models.ParseTransactionType(raw); !ok {
			return tx, fmt.Sprintf("invalid type %q", raw)
		}
	}

	var ts *time.Time
	if raw := strings.TrimSpace(field(fields, c.timestamp)); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return tx, fmt.Sprintf("invalid timestamp %q", raw)
		}
		ts = &t
	}

	tx = models.Transaction{
		ID:            strings.TrimSpace(field(fields, c.id)),
		Date:          date,
		Type:          typ,
		Magnitude:     models.ResolveMagnitude(amount, quantity, price),
		Name:          name,
		Category:      models.NormalizeCategory(field(fields, c.category)),
		Symbol:        field(fields, c.symbol),
		Quantity:      quantity,
		PurchasePrice: price,
		Notes:         field(fields, c.notes),
		Timestamp:     ts,
	}
	return tx, ""
}

func parseNullDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// scanState is the CSV scanner's quoting state.
type scanState int

const (
	stateUnquoted scanState = iota
	stateQuoted
)

type csvRow struct {
	line   int
	fields []string
}

// scanRows splits text into rows of fields with a two-state automaton.
// Unquoted: ',' ends a field, '\n' ends a row ("\r\n" counts as '\n'), '"'
// enters Quoted. Quoted: everything is literal except '"', where "" is a
// literal quote and a lone '"' returns to Unquoted. Blank rows are dropped.
// Each row records the line it starts on.
func scanRows(text string) []csvRow {
	var (
		rows     []csvRow
		fields   []string
		cur      strings.Builder
		state    = stateUnquoted
		line     = 1
		rowStart = 1
		quoted   bool
	)

	endField := func() {
		fields = append(fields, cur.String())
		cur.Reset()
	}
	endRow := func() {
		endField()
		if len(fields) > 1 || fields[0] != "" || quoted {
			rows = append(rows, csvRow{line: rowStart, fields: fields})
		}
		fields = nil
		quoted = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case stateUnquoted:
			switch c {
			case ',':
				endField()
			case '\r':
				if i+1 < len(text) && text[i+1] == '\n' {
					continue
				}
				cur.WriteByte(c)
			case '\n':
				endRow()
				line++
				rowStart = line
			case '"':
				state = stateQuoted
				quoted = true
			default:
				cur.WriteByte(c)
			}
		case stateQuoted:
			switch c {
			case '"':
				if i+1 < len(text) && text[i+1] == '"' {
					cur.WriteByte('"')
					i++
				} else {
					state = stateUnquoted
				}
			case '\n':
				cur.WriteByte(c)
				line++
			default:
				cur.WriteByte(c)
			}
		}
	}
	if cur.Len() > 0 || len(fields) > 0 || quoted {
		endRow()
	}
	return rows
}
