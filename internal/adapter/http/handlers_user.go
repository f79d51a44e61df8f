package adapthttp

import (
	"net/http"

	"bmitrend/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Height        float64               `json:"height"`
		Age           *int                  `json:"age"`
		Gender        *domain.Gender        `json:"gender"`
		ActivityLevel *domain.ActivityLevel `json:"activityLevel"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), chi.URLParam(r, "id"), domain.ProfileUpdate{
		Height:        req.Height,
		Age:           req.Age,
		Gender:        req.Gender,
		ActivityLevel: req.ActivityLevel,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
