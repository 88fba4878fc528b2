package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"f1league-app/internal/model"
	"f1league-app/internal/report"
)

type apiAwards struct {
	DriverOfTheDay int `json:"driver_of_the_day"`
	FastestLap     int `json:"fastest_lap"`
	MostOvertakes  int `json:"most_overtakes"`
	CleanestDriver int `json:"cleanest_driver"`
}

type apiDriver struct {
	Position     int       `json:"position"`
	CompetitorID string    `json:"competitor_id"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	Player       string    `json:"player,omitempty"`
	Group        string    `json:"group"`
	GroupColor   string    `json:"group_color"`
	Points       int       `json:"points"`
	Awards       apiAwards `json:"awards"`
}

type apiConstructor struct {
	Position   int    `json:"position"`
	Group      string `json:"group"`
	GroupColor string `json:"group_color"`
	Points     int    `json:"points"`
}

type apiAwardLeader struct {
	Award        model.AwardKey `json:"award"`
	Label        string         `json:"label"`
	CompetitorID string         `json:"competitor_id,omitempty"`
	DisplayName  string         `json:"display_name,omitempty"`
	Count        int            `json:"count"`
}

type apiPlacement struct {
	Rank            int                   `json:"rank"`
	CompetitorID    string                `json:"competitor_id"`
	Name            string                `json:"name"`
	Group           string                `json:"group"`
	Positions       [model.ResultSize]int `json:"positions"`
	Top10           int                   `json:"top10"`
	AveragePosition *float64              `json:"average_position"`
	Points          int                   `json:"points"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleAPIStandings(w http.ResponseWriter, r *http.Request) {
	table, err := s.league.Standings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]apiDriver, len(table.Drivers))
	for i, d := range table.Drivers {
		out[i] = apiDriver{
			Position:     i + 1,
			CompetitorID: d.CompetitorID,
			Name:         d.CompetitorName,
			DisplayName:  d.DisplayName(),
			Player:       d.PlayerName,
			Group:        d.Group,
			GroupColor:   d.GroupColor,
			Points:       d.Points,
			Awards: apiAwards{
				DriverOfTheDay: d.Awards.DriverOfTheDay,
				FastestLap:     d.Awards.FastestLap,
				MostOvertakes:  d.Awards.MostOvertakes,
				CleanestDriver: d.Awards.CleanestDriver,
			},
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIConstructors(w http.ResponseWriter, r *http.Request) {
	table, err := s.league.Standings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]apiConstructor, len(table.Constructors))
	for i, c := range table.Constructors {
		out[i] = apiConstructor{Position: i + 1, Group: c.Group, GroupColor: c.GroupColor, Points: c.Points}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIAwards(w http.ResponseWriter, r *http.Request) {
	table, err := s.league.Standings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]apiAwardLeader, 0, len(model.AwardKeys))
	for _, key := range model.AwardKeys {
		row := apiAwardLeader{Award: key, Label: key.Label()}
		if leader, ok := table.Leaders[key]; ok {
			row.CompetitorID = leader.Standing.CompetitorID
			row.DisplayName = leader.Standing.DisplayName()
			row.Count = leader.Count
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIPlacements(w http.ResponseWriter, r *http.Request) {
	stats, err := s.league.Placements(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]apiPlacement, len(stats))
	for i, p := range stats {
		row := apiPlacement{
			Rank:         i + 1,
			CompetitorID: p.CompetitorID,
			Name:         p.CompetitorName,
			Group:        p.Group,
			Positions:    p.Positions,
			Top10:        p.Top10,
			Points:       p.Points,
		}
		if avg, ok := p.AveragePosition(); ok {
			row.AveragePosition = &avg
		}
		out[i] = row
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStandingsExport(w http.ResponseWriter, r *http.Request) {
	table, err := s.league.Standings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	placements, err := s.league.Placements(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteStandingsXLSX(&buf, table, placements); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="standings.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

const defaultChartTop = 5

func (s *Server) handleProgressionChart(w http.ResponseWriter, r *http.Request) {
	top := defaultChartTop
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 20 {
			http.Error(w, "top must be between 1 and 20", http.StatusBadRequest)
			return
		}
		top = n
	}
	series, err := s.league.Progression(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	png, err := report.ProgressionChart(series, s.league.Reference().Events(), top)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(png)
}
