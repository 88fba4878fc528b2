package web

import (
	"errors"
	"net/http"

	"f1league-app/internal/league"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, league.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, league.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, league.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, league.ErrRosterFull), errors.Is(err, league.ErrCompetitorTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes a plain error response. Internal errors are logged and hidden.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, view any) {
	if err := s.templates.RenderStatus(w, status, name, view); err != nil {
		s.logger.Error("Template render failed", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// validationMessages flattens validation errors into a field → reason map.
func validationMessages(err error) map[string]string {
	var problems league.ValidationErrors
	if !errors.As(err, &problems) {
		return nil
	}
	out := make(map[string]string, len(problems))
	for _, p := range problems {
		if _, seen := out[p.Field]; !seen {
			out[p.Field] = p.Reason
		}
	}
	return out
}
