package adapthttp

import (
	"fmt"
	"net/http"

	"bmitrend/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	items, err := s.measurements.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleUpsertMeasurement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight float64           `json:"weight"`
		Date   string            `json:"date"`
		Unit   domain.WeightUnit `json:"unit"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", err)
		return
	}
	kg, ok := domain.ToKilograms(req.Weight, req.Unit)
	if !ok {
		writeError(w, http.StatusBadRequest, "validation", fmt.Errorf("unit must be %q or %q", domain.UnitKg, domain.UnitLb))
		return
	}

	m, err := s.measurements.Upsert(r.Context(), chi.URLParam(r, "id"), kg, req.Date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bmi":         m.BMI,
		"category":    m.Category,
		"measurement": m,
	})
}

func (s *Server) handleLatestMeasurement(w http.ResponseWriter, r *http.Request) {
	m, err := s.measurements.Latest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"measurement": m})
}

func (s *Server) handleDeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", err)
		return
	}
	if err := s.measurements.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
