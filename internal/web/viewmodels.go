package web

import (
	"f1league-app/internal/league"
	"f1league-app/internal/model"
)

type BaseView struct {
	Title        string
	Active       string
	IsAdmin      bool
	AdminEnabled bool
	DevMode      bool
	FlashSuccess string
	FlashError   string
}

type DriverRow struct {
	Pos int
	model.DriverStanding
}

type ConstructorRow struct {
	Pos int
	model.ConstructorStanding
}

type LeaderView struct {
	Award     model.AwardKey
	Label     string
	Leader    model.AwardLeader
	HasLeader bool
}

type HomeView struct {
	BaseView
	Leaders         []LeaderView
	TopDrivers      []DriverRow
	TopConstructors []ConstructorRow
	CompletedEvents int
	TotalEvents     int
	NextEvent       *model.Event
}

type StandingsView struct {
	BaseView
	Drivers      []DriverRow
	Constructors []ConstructorRow
}

type EventRow struct {
	league.EventStatus
	Filled int
}

type EventsView struct {
	BaseView
	Events    []EventRow
	Completed int
}

type PositionRow struct {
	Pos          int
	Points       int
	CompetitorID string
	Name         string
	Group        string
}

type AwardRow struct {
	Key          model.AwardKey
	Label        string
	CompetitorID string
	Name         string
}

type EventView struct {
	BaseView
	Event       model.Event
	Found       bool
	Completed   bool
	Positions   []PositionRow
	Awards      []AwardRow
	Competitors []model.Competitor
	Errors      map[string]string
	PrevID      int
	NextID      int
}

type RosterView struct {
	BaseView
	Entries     []league.RosterEntry
	Available   []model.Competitor
	Competitors []model.Competitor
	Full        bool
	MaxSize     int
	PlayerName  string
	Errors      map[string]string
}

type GridView struct {
	BaseView
	Entries []league.GridEntry
	Groups  []league.GroupOption
}

type PlacementRow struct {
	Rank int
	model.PlacementStats
	Average string
}

type StatsView struct {
	BaseView
	Placements []PlacementRow
	Positions  []int
}

type LoginView struct {
	BaseView
	Error string
	Next  string
}
