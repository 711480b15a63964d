package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/investtrack/internal/ledger"
	"github.com/bobmcallan/investtrack/internal/models"
)

const maxImportBytes = 10 << 20

// handleInvestments handles GET, POST and DELETE on /api/investments.
func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodDelete) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	svc := s.app.LedgerService

	switch r.Method {
	case http.MethodGet:
		txs, err := svc.List(ctx, userID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteData(w, http.StatusOK, txs)

	case http.MethodPost:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		created, err := svc.Create(ctx, userID, tx)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteData(w, http.StatusCreated, created)

	case http.MethodDelete:
		if _, err := svc.DeleteAll(ctx, userID); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleInvestmentByID handles GET, PUT and DELETE on /api/investments/{id}.
func (s *Server) handleInvestmentByID(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	svc := s.app.LedgerService

	switch r.Method {
	case http.MethodGet:
		tx, err := svc.Get(ctx, userID, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteData(w, http.StatusOK, tx)

	case http.MethodPut:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		updated, err := svc.Update(ctx, userID, id, tx)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteData(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := svc.Delete(ctx, userID, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleInvestmentImport handles POST /api/investments/import with a JSON array.
func (s *Server) handleInvestmentImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var txs []models.Transaction
	if !DecodeJSON(w, r, &txs) {
		return
	}
	result, err := s.app.LedgerService.Import(r.Context(), userID, txs)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, result)
}

// handleInvestmentImportCSV handles POST /api/investments/import/csv with a CSV body.
func (s *Server) handleInvestmentImportCSV(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if r.Body == nil {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := s.app.LedgerService.ImportCSV(r.Context(), userID, body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	WriteData(w, http.StatusOK, result)
}

// handleInvestmentExport handles GET /api/investments/export.
func (s *Server) handleInvestmentExport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.app.LedgerService.ExportCSV(r.Context(), userID, &buf); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("investments_export_%s.csv", time.Now().Format(models.DateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleInvestmentStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := s.app.LedgerService.Stats(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, stats)
}

func (s *Server) handleInvestmentSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	txs, err := s.app.LedgerService.Search(r.Context(), userID, r.URL.Query().Get("name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, txs)
}

func (s *Server) handleInvestmentDateRange(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	start, end := q.Get("startDate"), q.Get("endDate")
	if start == "" || end == "" {
		WriteError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}
	txs, err := s.app.LedgerService.DateRange(r.Context(), userID, start, end)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, txs)
}

// handleInvestmentView handles GET /api/investments/view?search=&sort=&direction=&toggle=.
// sort and direction describe the current order; toggle asks to sort by a
// key, flipping the direction when it is the current key. The resulting
// order is returned in X-Sort-Key and X-Sort-Direction.
func (s *Server) handleInvestmentView(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	query := ledger.Query{
		Search: q.Get("search"),
		Sort:   ledger.ResolveSort(q.Get("sort"), q.Get("direction"), q.Get("toggle")),
	}
	txs, err := s.app.LedgerService.View(r.Context(), userID, query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("X-Sort-Key", query.Sort.Key)
	w.Header().Set("X-Sort-Direction", string(query.Sort.Direction))
	WriteData(w, http.StatusOK, txs)
}
