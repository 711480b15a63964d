package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
}

func TestInvestmentCRUD(t *testing.T) {
	srv := newTestServer(t)
	alice := login(t, srv, "alice")
	bob := login(t, srv, "bob")

	rec := do(t, srv, http.MethodPost, "/api/investments", alice, map[string]interface{}{
		"name": "Index Fund", "date": "2024-01-01", "amount": 1000, "category": "Mutual Funds",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created txView
	decode(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Purchase", created.Type)
	assert.Equal(t, 1000.0, created.Amount)

	rec = do(t, srv, http.MethodGet, "/api/investments/"+created.ID, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/investments/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPut, "/api/investments/"+created.ID, alice, map[string]interface{}{
		"name": "Index Fund", "date": "2024-01-01", "amount": -250, "category": "Mutual Funds",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated txView
	decode(t, rec, &updated)
	assert.Equal(t, "Sale", updated.Type)
	assert.Equal(t, -250.0, updated.Amount)

	rec = do(t, srv, http.MethodPost, "/api/investments", alice, map[string]interface{}{
		"name": "", "date": "2024-01-01", "amount": 10,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/investments", alice, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/investments/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/investments/"+created.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/investments/"+created.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvestmentImportAndList(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "alice")

	rec := do(t, srv, http.MethodPost, "/api/investments/import", token, []map[string]interface{}{
		{"name": "Apple", "date": "2024-01-01", "amount": 100, "category": "Stocks"},
		{"name": "Bitcoin", "date": "2024-02-01", "quantity": 2, "purchasePrice": 50, "category": "Crypto"},
		{"name": "Broken", "date": "2024-02-01", "amount": 0},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		ImportedCount int `json:"importedCount"`
		Skipped       int `json:"skipped"`
	}
	decode(t, rec, &result)
	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 1, result.Skipped)

	rec = do(t, srv, http.MethodPost, "/api/investments/import", token, []interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/investments", token, nil)
	var list []txView
	decode(t, rec, &list)
	require.Len(t, list, 2)

	rec = do(t, srv, http.MethodGet, "/api/investments/stats", token, nil)
	var stats struct {
		TotalAmount float64 `json:"totalAmount"`
		TotalCount  int     `json:"totalCount"`
	}
	decode(t, rec, &stats)
	assert.Equal(t, 200.0, stats.TotalAmount)
	assert.Equal(t, 2, stats.TotalCount)

	rec = do(t, srv, http.MethodGet, "/api/investments/search?name=bit", token, nil)
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Bitcoin", list[0].Name)

	rec = do(t, srv, http.MethodGet, "/api/investments/date-range?startDate=2024-01-15&endDate=2024-12-31", token, nil)
	decode(t, rec, &list)
	require.Len(t, list, 1)

	rec = do(t, srv, http.MethodGet, "/api/investments/date-range?startDate=2024-01-15", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/investments/view?sort=name&direction=desc", token, nil)
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Bitcoin", list[0].Name)

	rec = do(t, srv, http.MethodGet, "/api/investments/view?sort=name&direction=desc&toggle=name", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "name", rec.Header().Get("X-Sort-Key"))
	assert.Equal(t, "asc", rec.Header().Get("X-Sort-Direction"))
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Apple", list[0].Name)

	rec = do(t, srv, http.MethodGet, "/api/investments/view?toggle=amount", token, nil)
	assert.Equal(t, "amount", rec.Header().Get("X-Sort-Key"))
	assert.Equal(t, "asc", rec.Header().Get("X-Sort-Direction"))

	rec = do(t, srv, http.MethodGet, "/api/investments/view?sort=shoe", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/investments", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/investments", token, nil)
	decode(t, rec, &list)
	assert.Empty(t, list)
}

func TestInvestmentCSVImportExport(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "alice")

	doc := "name,date,amount,category\n\"Fund, \"\"Growth\"\"\",2024-01-01,500,Mutual Funds\nBad,someday,1,Other\n"
	rec := do(t, srv, http.MethodPost, "/api/investments/import/csv", token, doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		ImportedCount int      `json:"importedCount"`
		Skipped       int      `json:"skipped"`
		Errors        []string `json:"errors"`
	}
	decode(t, rec, &result)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "line 3")

	rec = do(t, srv, http.MethodPost, "/api/investments/import/csv", token, "foo,bar\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/investments/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	wantName := "investments_export_" + time.Now().Format("2006-01-02") + ".csv"
	assert.Contains(t, rec.Header().Get("Content-Disposition"), wantName)
	assert.Contains(t, rec.Body.String(), `"Fund, ""Growth"""`)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,name,date"))
}
