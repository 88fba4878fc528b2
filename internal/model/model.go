package model

import (
	"strings"
	"time"
)

type AwardKey string
type Role string

const (
	AwardDriverOfTheDay AwardKey = "driver_of_the_day"
	AwardFastestLap     AwardKey = "fastest_lap"
	AwardMostOvertakes  AwardKey = "most_overtakes"
	AwardCleanestDriver AwardKey = "cleanest_driver"

	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"

	// ResultSize is the number of scored positions recorded per event.
	ResultSize = 10
)

// AwardKeys lists the four special awards in display order.
var AwardKeys = []AwardKey{
	AwardDriverOfTheDay,
	AwardFastestLap,
	AwardMostOvertakes,
	AwardCleanestDriver,
}

func (k AwardKey) Valid() bool {
	switch k {
	case AwardDriverOfTheDay, AwardFastestLap, AwardMostOvertakes, AwardCleanestDriver:
		return true
	}
	return false
}

func (k AwardKey) Label() string {
	switch k {
	case AwardDriverOfTheDay:
		return "Driver of the Day"
	case AwardFastestLap:
		return "Fastest Lap"
	case AwardMostOvertakes:
		return "Most Overtakes"
	case AwardCleanestDriver:
		return "Cleanest Driver"
	}
	return string(k)
}

type Competitor struct {
	ID         string
	Name       string
	Number     int
	Group      string
	GroupColor string
	Country    string
}

type Event struct {
	ID      int
	Name    string
	Country string
	Circuit string
	Date    time.Time
}

type GroupOverride struct {
	CompetitorID string
	Group        string
	GroupColor   string
	UpdatedAt    time.Time
}

type EventResult struct {
	EventID        int
	Ranked         []string
	DriverOfTheDay string
	FastestLap     string
	MostOvertakes  string
	CleanestDriver string
	UpdatedAt      time.Time
}

// Award returns the competitor id that won the given award, or "".
func (r EventResult) Award(key AwardKey) string {
	switch key {
	case AwardDriverOfTheDay:
		return r.DriverOfTheDay
	case AwardFastestLap:
		return r.FastestLap
	case AwardMostOvertakes:
		return r.MostOvertakes
	case AwardCleanestDriver:
		return r.CleanestDriver
	}
	return ""
}

// SetAward records the winner of the given award. Unknown keys are ignored.
func (r *EventResult) SetAward(key AwardKey, competitorID string) {
	switch key {
	case AwardDriverOfTheDay:
		r.DriverOfTheDay = competitorID
	case AwardFastestLap:
		r.FastestLap = competitorID
	case AwardMostOvertakes:
		r.MostOvertakes = competitorID
	case AwardCleanestDriver:
		r.CleanestDriver = competitorID
	}
}

// Filled counts the non-empty ranked positions.
func (r EventResult) Filled() int {
	n := 0
	for _, id := range r.Ranked {
		if strings.TrimSpace(id) != "" {
			n++
		}
	}
	return n
}

// Complete reports whether every scored position is filled with no duplicates.
func (r EventResult) Complete() bool {
	if len(r.Ranked) < ResultSize {
		return false
	}
	seen := make(map[string]struct{}, ResultSize)
	for _, id := range r.Ranked[:ResultSize] {
		id = strings.TrimSpace(id)
		if id == "" {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

type RosterAssignment struct {
	ID           string
	PlayerName   string
	CompetitorID string
	CreatedAt    time.Time
}

type AwardCounts struct {
	DriverOfTheDay int
	FastestLap     int
	MostOvertakes  int
	CleanestDriver int
}

func (a AwardCounts) Get(key AwardKey) int {
	switch key {
	case AwardDriverOfTheDay:
		return a.DriverOfTheDay
	case AwardFastestLap:
		return a.FastestLap
	case AwardMostOvertakes:
		return a.MostOvertakes
	case AwardCleanestDriver:
		return a.CleanestDriver
	}
	return 0
}

func (a *AwardCounts) Inc(key AwardKey) {
	switch key {
	case AwardDriverOfTheDay:
		a.DriverOfTheDay++
	case AwardFastestLap:
		a.FastestLap++
	case AwardMostOvertakes:
		a.MostOvertakes++
	case AwardCleanestDriver:
		a.CleanestDriver++
	}
}

type DriverStanding struct {
	CompetitorID   string
	CompetitorName string
	Group          string
	GroupColor     string
	PlayerName     string
	Points         int
	Awards         AwardCounts
}

func (s DriverStanding) DisplayName() string {
	player := strings.TrimSpace(s.PlayerName)
	if player == "" {
		return s.CompetitorName
	}
	return player + " (" + s.CompetitorName + ")"
}

type ConstructorStanding struct {
	Group      string
	GroupColor string
	Points     int
}

type AwardLeader struct {
	Standing DriverStanding
	Count    int
}

type PlacementStats struct {
	CompetitorID   string
	CompetitorName string
	Group          string
	Positions      [ResultSize]int
	Top10          int
	PositionSum    int
	Points         int
}

// AveragePosition is the mean finishing position over top-10 finishes.
// ok is false when the competitor never finished in the top 10.
func (p PlacementStats) AveragePosition() (avg float64, ok bool) {
	if p.Top10 == 0 {
		return 0, false
	}
	return float64(p.PositionSum) / float64(p.Top10), true
}
