package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/investtrack/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/validate", s.handleAuthValidate)
	mux.HandleFunc("/api/auth/account", s.handleAuthAccount)

	// Investments
	mux.HandleFunc("/api/investments/import/csv", s.handleInvestmentImportCSV)
	mux.HandleFunc("/api/investments/import", s.handleInvestmentImport)
	mux.HandleFunc("/api/investments/export", s.handleInvestmentExport)
	mux.HandleFunc("/api/investments/stats", s.handleInvestmentStats)
	mux.HandleFunc("/api/investments/search", s.handleInvestmentSearch)
	mux.HandleFunc("/api/investments/date-range", s.handleInvestmentDateRange)
	mux.HandleFunc("/api/investments/view", s.handleInvestmentView)
	mux.HandleFunc("/api/investments/", s.routeInvestment)
	mux.HandleFunc("/api/investments", s.handleInvestments)

	// Analysis
	mux.HandleFunc("/api/analysis/valuation", s.handleAnalysisValuation)
	mux.HandleFunc("/api/analysis/contribution", s.handleAnalysisContribution)
	mux.HandleFunc("/api/analysis/projection", s.handleAnalysisProjection)
	mux.HandleFunc("/api/analysis/chart", s.handleAnalysisChart)
	mux.HandleFunc("/api/analysis/settings", s.handleAnalysisSettings)
}

// routeInvestment dispatches /api/investments/{id}.
func (s *Server) routeInvestment(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/investments/")
	if id == "" {
		s.handleInvestments(w, r)
		return
	}
	if strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleInvestmentByID(w, r, id)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
