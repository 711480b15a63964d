package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/investtrack/internal/models"
)

// projectionParams maps query parameters to ProjectionConfig fields.
// Absent parameters keep the user's stored settings; unparsable ones become
// 0 and are clamped later. An empty optional parameter clears it.
func projectionParams(q url.Values, base models.ProjectionConfig) models.ProjectionConfig {
	cfg := base
	if q.Has("years") {
		cfg.Years = models.ProjectionYears(parseNumber(q.Get("years")))
	}
	if q.Has("growthRate") {
		cfg.GrowthRatePrimary = parseNumber(q.Get("growthRate"))
	}
	if q.Has("taxRate") {
		cfg.TaxRate = parseNumber(q.Get("taxRate"))
	}
	cfg.GrowthRateScenario2 = optionalParam(q, "growthRate2", cfg.GrowthRateScenario2)
	cfg.GrowthRateScenario3 = optionalParam(q, "growthRate3", cfg.GrowthRateScenario3)
	cfg.AnnualContribution = optionalParam(q, "contribution", cfg.AnnualContribution)
	return cfg
}

func optionalParam(q url.Values, key string, current *float64) *float64 {
	if !q.Has(key) {
		return current
	}
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	v := parseNumber(raw)
	return &v
}

// parseNumber returns 0 for anything that is not a number.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// projectionConfig merges query parameters over the caller's stored settings.
func (s *Server) projectionConfig(r *http.Request, userID string) (models.ProjectionConfig, error) {
	settings, err := s.app.AnalysisService.Settings(r.Context(), userID)
	if err != nil {
		return models.ProjectionConfig{}, err
	}
	return projectionParams(r.URL.Query(), settings), nil
}

func (s *Server) handleAnalysisValuation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	series, err := s.app.AnalysisService.Valuation(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, series)
}

func (s *Server) handleAnalysisContribution(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	c, err := s.app.AnalysisService.Contribution(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{"annualContribution": c})
}

func (s *Server) handleAnalysisProjection(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	cfg, err := s.projectionConfig(r, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	result, err := s.app.AnalysisService.Project(r.Context(), userID, cfg)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, result)
}

// handleAnalysisChart handles GET /api/analysis/chart and returns a PNG.
func (s *Server) handleAnalysisChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	cfg, err := s.projectionConfig(r, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	png, err := s.app.AnalysisService.Chart(r.Context(), userID, cfg)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleAnalysisSettings handles GET, PUT and DELETE /api/analysis/settings.
// DELETE resets the caller to the server defaults.
func (s *Server) handleAnalysisSettings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		cfg, err := s.app.AnalysisService.Settings(r.Context(), userID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteData(w, http.StatusOK, cfg)
		return
	}

	if r.Method == http.MethodDelete {
		cfg, err := s.app.AnalysisService.ResetSettings(r.Context(), userID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		WriteData(w, http.StatusOK, cfg)
		return
	}

	var cfg models.ProjectionConfig
	if !DecodeJSON(w, r, &cfg) {
		return
	}
	saved, err := s.app.AnalysisService.SaveSettings(r.Context(), userID, cfg)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, saved)
}
