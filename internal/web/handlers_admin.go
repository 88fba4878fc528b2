package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"f1league-app/internal/league"

	"github.com/go-chi/chi/v5"
)

// afterCommand redirects back to page with a notice on success or an error
// code the page knows how to show.
func (s *Server) afterCommand(w http.ResponseWriter, r *http.Request, err error, page, notice string) {
	sep := "?"
	if strings.Contains(page, "?") {
		sep = "&"
	}
	switch {
	case err == nil:
		redirect(w, r, page+sep+"notice="+notice)
	case errors.Is(err, league.ErrRosterFull):
		redirect(w, r, page+sep+"error=roster_full")
	case errors.Is(err, league.ErrCompetitorTaken):
		redirect(w, r, page+sep+"error=competitor_taken")
	case errors.Is(err, league.ErrValidation):
		redirect(w, r, page+sep+"error=invalid")
	case errors.Is(err, league.ErrNotFound):
		redirect(w, r, page+sep+"error=not_found")
	default:
		s.fail(w, r, err)
	}
}

func (s *Server) handleResultSave(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	submitted := parseResultForm(r, id)
	err := s.league.SaveResult(r.Context(), submitted)
	switch {
	case errors.Is(err, league.ErrValidation):
		view, ok := s.eventView(r, id, submitted, true, validationMessages(err))
		if !ok {
			http.NotFound(w, r)
			return
		}
		view.FlashError = flashError("invalid")
		s.render(w, r, http.StatusUnprocessableEntity, "event.html", view)
	case errors.Is(err, league.ErrNotFound):
		http.NotFound(w, r)
	default:
		s.afterCommand(w, r, err, "/events/"+strconv.Itoa(id), "result_saved")
	}
}

func (s *Server) handleResultReset(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	err := s.league.ClearResult(r.Context(), id)
	if errors.Is(err, league.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	s.afterCommand(w, r, err, "/events/"+strconv.Itoa(id), "result_cleared")
}

func (s *Server) handleRosterAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.FormValue("player_name"))
	competitorID := strings.TrimSpace(r.FormValue("competitor_id"))
	_, err := s.league.AddPlayer(r.Context(), name, competitorID)
	if errors.Is(err, league.ErrValidation) {
		view, verr := s.rosterView(r, name, validationMessages(err))
		if verr != nil {
			s.fail(w, r, verr)
			return
		}
		view.FlashError = flashError("invalid")
		s.render(w, r, http.StatusUnprocessableEntity, "roster.html", view)
		return
	}
	s.afterCommand(w, r, err, "/roster", "player_added")
}

func (s *Server) handleRosterRemove(w http.ResponseWriter, r *http.Request) {
	err := s.league.RemovePlayer(r.Context(), chi.URLParam(r, "entryID"))
	s.afterCommand(w, r, err, "/roster", "player_removed")
}

func (s *Server) handleRosterReassign(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	competitorID := strings.TrimSpace(r.FormValue("competitor_id"))
	err := s.league.ReassignPlayer(r.Context(), chi.URLParam(r, "entryID"), competitorID)
	s.afterCommand(w, r, err, "/roster", "player_reassigned")
}

func (s *Server) handleGroupAssign(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	err := s.league.AssignGroup(r.Context(), chi.URLParam(r, "competitorID"), r.FormValue("group"))
	if errors.Is(err, league.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	s.afterCommand(w, r, err, "/grid", "group_assigned")
}

func (s *Server) handleGroupReset(w http.ResponseWriter, r *http.Request) {
	err := s.league.ClearGroup(r.Context(), chi.URLParam(r, "competitorID"))
	if errors.Is(err, league.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	s.afterCommand(w, r, err, "/grid", "group_cleared")
}

func (s *Server) handleLeagueReset(w http.ResponseWriter, r *http.Request) {
	err := s.league.ResetLeague(r.Context())
	s.afterCommand(w, r, err, "/", "league_reset")
}
