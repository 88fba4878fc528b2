package web

import (
	"net/http"
	"strconv"

	"f1league-app/internal/auth"
	"f1league-app/internal/league"
	"f1league-app/internal/model"
	"f1league-app/internal/standings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) baseView(r *http.Request, title, active string) BaseView {
	q := r.URL.Query()
	return BaseView{
		Title:        title,
		Active:       active,
		IsAdmin:      auth.IsAdmin(r.Context()),
		AdminEnabled: s.adminEnabled(),
		DevMode:      s.opts.DevMode,
		FlashSuccess: flashMessage(q.Get("notice")),
		FlashError:   flashError(q.Get("error")),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	table, err := s.league.Standings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	calendar, err := s.league.Calendar(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	view := HomeView{
		BaseView:        s.baseView(r, "Dashboard", "home"),
		Leaders:         leaderViews(table),
		TopDrivers:      driverRows(table.Drivers, 5),
		TopConstructors: constructorRows(table.Constructors, 3),
		TotalEvents:     len(calendar),
	}
	for _, e := range calendar {
		if e.Completed {
			view.CompletedEvents++
		} else if view.NextEvent == nil {
			next := e.Event
			view.NextEvent = &next
		}
	}
	s.render(w, r, http.StatusOK, "home.html", view)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	table, err := s.league.Standings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view := StandingsView{
		BaseView:     s.baseView(r, "Standings", "standings"),
		Drivers:      driverRows(table.Drivers, 0),
		Constructors: constructorRows(table.Constructors, 0),
	}
	if isHTMX(r) {
		if err := s.templates.RenderPartial(w, "standings_table.html", view); err != nil {
			s.fail(w, r, err)
		}
		return
	}
	s.render(w, r, http.StatusOK, "standings.html", view)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	calendar, err := s.league.Calendar(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view := EventsView{BaseView: s.baseView(r, "Calendar", "events")}
	for _, e := range calendar {
		row := EventRow{EventStatus: e}
		if e.Result != nil {
			row.Filled = e.Result.Filled()
		}
		if e.Completed {
			view.Completed++
		}
		view.Events = append(view.Events, row)
	}
	s.render(w, r, http.StatusOK, "events.html", view)
}

func eventIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	return id, err == nil
}

func (s *Server) handleEventShow(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	result, found, err := s.league.Result(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, ok := s.eventView(r, id, result, found, nil)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "event.html", view)
}

// eventView builds the result page. result may be a rejected submission, in
// which case errors holds the per-field reasons.
func (s *Server) eventView(r *http.Request, id int, result model.EventResult, found bool, errors map[string]string) (EventView, bool) {
	ref := s.league.Reference()
	event, ok := ref.Event(id)
	if !ok {
		return EventView{}, false
	}

	view := EventView{
		BaseView:    s.baseView(r, event.Name, "events"),
		Event:       event,
		Found:       found,
		Completed:   found && result.Complete(),
		Competitors: ref.Competitors(),
		Errors:      errors,
	}
	for i := range model.ResultSize {
		row := PositionRow{Pos: i + 1, Points: standings.PointsFor(i)}
		if i < len(result.Ranked) {
			row.CompetitorID = result.Ranked[i]
			if c, ok := ref.Competitor(row.CompetitorID); ok {
				row.Name = c.Name
				row.Group = c.Group
			}
		}
		view.Positions = append(view.Positions, row)
	}
	for _, key := range model.AwardKeys {
		row := AwardRow{Key: key, Label: key.Label(), CompetitorID: result.Award(key)}
		if c, ok := ref.Competitor(row.CompetitorID); ok {
			row.Name = c.Name
		}
		view.Awards = append(view.Awards, row)
	}

	events := ref.Events()
	for i, e := range events {
		if e.ID != id {
			continue
		}
		if i > 0 {
			view.PrevID = events[i-1].ID
		}
		if i+1 < len(events) {
			view.NextID = events[i+1].ID
		}
	}
	return view, true
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	view, err := s.rosterView(r, "", nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "roster.html", view)
}

func (s *Server) rosterView(r *http.Request, playerName string, errors map[string]string) (RosterView, error) {
	entries, err := s.league.Roster(r.Context())
	if err != nil {
		return RosterView{}, err
	}
	available, err := s.league.AvailableCompetitors(r.Context())
	if err != nil {
		return RosterView{}, err
	}
	return RosterView{
		BaseView:    s.baseView(r, "Roster", "roster"),
		Entries:     entries,
		Available:   available,
		Competitors: s.league.Reference().Competitors(),
		Full:        len(entries) >= league.MaxRosterSize,
		MaxSize:     league.MaxRosterSize,
		PlayerName:  playerName,
		Errors:      errors,
	}, nil
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	entries, err := s.league.Grid(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view := GridView{
		BaseView: s.baseView(r, "Grid", "grid"),
		Entries:  entries,
		Groups:   s.league.Groups(),
	}
	s.render(w, r, http.StatusOK, "grid.html", view)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	placements, err := s.league.Placements(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view := StatsView{
		BaseView:   s.baseView(r, "Statistics", "stats"),
		Placements: placementRows(placements),
	}
	for p := 1; p <= model.ResultSize; p++ {
		view.Positions = append(view.Positions, p)
	}
	s.render(w, r, http.StatusOK, "stats.html", view)
}
