package web

import (
	"strconv"

	"f1league-app/internal/model"
	"f1league-app/internal/standings"
)

func driverRows(drivers []model.DriverStanding, limit int) []DriverRow {
	if limit > 0 && limit < len(drivers) {
		drivers = drivers[:limit]
	}
	rows := make([]DriverRow, len(drivers))
	for i, d := range drivers {
		rows[i] = DriverRow{Pos: i + 1, DriverStanding: d}
	}
	return rows
}

func constructorRows(constructors []model.ConstructorStanding, limit int) []ConstructorRow {
	if limit > 0 && limit < len(constructors) {
		constructors = constructors[:limit]
	}
	rows := make([]ConstructorRow, len(constructors))
	for i, c := range constructors {
		rows[i] = ConstructorRow{Pos: i + 1, ConstructorStanding: c}
	}
	return rows
}

func leaderViews(table standings.Table) []LeaderView {
	views := make([]LeaderView, len(model.AwardKeys))
	for i, key := range model.AwardKeys {
		leader, ok := table.Leaders[key]
		views[i] = LeaderView{Award: key, Label: key.Label(), Leader: leader, HasLeader: ok}
	}
	return views
}

func placementRows(stats []model.PlacementStats) []PlacementRow {
	rows := make([]PlacementRow, len(stats))
	for i, s := range stats {
		avg := "-"
		if v, ok := s.AveragePosition(); ok {
			avg = strconv.FormatFloat(v, 'f', 2, 64)
		}
		rows[i] = PlacementRow{Rank: i + 1, PlacementStats: s, Average: avg}
	}
	return rows
}
