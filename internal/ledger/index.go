package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/investtrack/internal/models"
)

// ErrUnknownSortKey is returned when a query names a field with no comparator.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortDirection orders a view.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortDirection accepts asc/ascending and desc/descending in any case.
// Anything else is ascending.
func ParseSortDirection(s string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending":
		return Descending
	default:
		return Ascending
	}
}

// SortSpec names the field to sort by and the direction.
type SortSpec struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort lists newest dates first.
func DefaultSort() SortSpec {
	return SortSpec{Key: "date", Direction: Descending}
}

// Request returns the sort after a user asks to sort by key: the current
// key flips direction, a new key starts ascending.
func (s SortSpec) Request(key string) SortSpec {
	if strings.EqualFold(s.Key, key) {
		if s.Direction == Ascending {
			return SortSpec{Key: s.Key, Direction: Descending}
		}
		return SortSpec{Key: s.Key, Direction: Ascending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

// ResolveSort builds the sort for a list request from the current key and
// direction plus an optional toggle. An empty key means DefaultSort. A
// non-empty toggle is applied with Request, so repeating the current key
// flips its direction.
func ResolveSort(key, direction, toggle string) SortSpec {
	current := DefaultSort()
	if k := strings.TrimSpace(key); k != "" {
		current = SortSpec{Key: k, Direction: ParseSortDirection(direction)}
	}
	if t := strings.TrimSpace(toggle); t != "" {
		current = current.Request(t)
	}
	return current
}

// Query filters and orders a ledger snapshot.
type Query struct {
	Search string
	Sort   SortSpec
}

type comparator func(a, b models.Transaction) int

var comparators = map[string]comparator{
	"date":          func(a, b models.Transaction) int { return strings.Compare(a.Date, b.Date) },
	"amount":        func(a, b models.Transaction) int { return a.Amount().Cmp(b.Amount()) },
	"quantity":      func(a, b models.Transaction) int { return compareNullDecimal(a.Quantity, b.Quantity) },
	"purchaseprice": func(a, b models.Transaction) int { return compareNullDecimal(a.PurchasePrice, b.PurchasePrice) },
	"name":          func(a, b models.Transaction) int { return compareFold(a.Name, b.Name) },
	"category":      func(a, b models.Transaction) int { return compareFold(string(a.Category), string(b.Category)) },
	"symbol":        func(a, b models.Transaction) int { return compareFold(a.Symbol, b.Symbol) },
	"notes":         func(a, b models.Transaction) int { return compareFold(a.Notes, b.Notes) },
	"type":          func(a, b models.Transaction) int { return compareFold(string(a.Type), string(b.Type)) },
	"id":            func(a, b models.Transaction) int { return compareFold(a.ID, b.ID) },
	"timestamp": func(a, b models.Transaction) int {
		switch {
		case a.Timestamp == nil && b.Timestamp == nil:
			return 0
		case a.Timestamp == nil:
			return -1
		case b.Timestamp == nil:
			return 1
		}
		return a.Timestamp.Compare(*b.Timestamp)
	},
}

// compareNullDecimal orders absent values before present ones.
func compareNullDecimal(a, b decimal.NullDecimal) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	}
	return a.Decimal.Cmp(b.Decimal)
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// View returns the transactions whose name or date contains q.Search
// (case-insensitive), stably sorted by q.Sort. An empty sort key uses
// DefaultSort. The input slice is not modified.
func View(txs []models.Transaction, q Query) ([]models.Transaction, error) {
	spec := q.Sort
	if strings.TrimSpace(spec.Key) == "" {
		spec = DefaultSort()
	}
	cmp, ok := comparators[strings.ToLower(strings.TrimSpace(spec.Key))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortKey, spec.Key)
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if term == "" ||
			strings.Contains(strings.ToLower(tx.Name), term) ||
			strings.Contains(strings.ToLower(tx.Date), term) {
			out = append(out, tx)
		}
	}

	desc := spec.Direction == Descending
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

// SortKeys lists the accepted sort keys.
func SortKeys() []string {
	keys := make([]string, 0, len(comparators))
	for k := range comparators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
