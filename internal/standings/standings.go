// Package standings derives driver and constructor standings, award leaders
// and placement statistics from a snapshot of league data.
//
// Every function here is pure: the same inputs always produce the same output,
// nothing is mutated and no I/O is performed, so callers may invoke them
// concurrently or memoize the results. Malformed input never fails a
// computation. Unknown competitor ids, blank positions and positions beyond
// the scoring table are skipped.
package standings

import (
	"cmp"
	"slices"
	"strings"

	"f1league-app/internal/model"
)

// ScoringTable maps a 0-indexed finishing position to points.
var ScoringTable = [model.ResultSize]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// PointsFor returns the points for a 0-indexed position; 0 outside the table.
func PointsFor(position int) int {
	if position < 0 || position >= len(ScoringTable) {
		return 0
	}
	return ScoringTable[position]
}

// Input is a snapshot of everything the engine consumes.
type Input struct {
	Competitors []model.Competitor
	Results     []model.EventResult
	Overrides   map[string]model.GroupOverride
	Roster      []model.RosterAssignment
}

// Table is the full derived view of one snapshot.
type Table struct {
	Drivers      []model.DriverStanding
	Constructors []model.ConstructorStanding
	Leaders      map[model.AwardKey]model.AwardLeader
}

// Compute derives drivers, constructors and award leaders in one pass.
func Compute(in Input) Table {
	drivers := DriverStandings(in.Competitors, in.Results, in.Overrides, in.Roster)
	return Table{
		Drivers:      drivers,
		Constructors: ConstructorStandings(drivers),
		Leaders:      AwardLeaders(drivers),
	}
}

// DriverStandings returns one standing per competitor sorted by points
// descending. Ties keep reference order.
func DriverStandings(
	competitors []model.Competitor,
	results []model.EventResult,
	overrides map[string]model.GroupOverride,
	roster []model.RosterAssignment,
) []model.DriverStanding {
	players := make(map[string]string, len(roster))
	for _, a := range roster {
		if a.CompetitorID == "" {
			continue
		}
		if _, taken := players[a.CompetitorID]; !taken {
			players[a.CompetitorID] = a.PlayerName
		}
	}

	standings := make([]model.DriverStanding, len(competitors))
	index := make(map[string]*model.DriverStanding, len(competitors))
	for i, c := range competitors {
		group, color := EffectiveGroup(c, overrides)
		standings[i] = model.DriverStanding{
			CompetitorID:   c.ID,
			CompetitorName: c.Name,
			Group:          group,
			GroupColor:     color,
			PlayerName:     players[c.ID],
		}
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = &standings[i]
		}
	}

	for _, result := range results {
		for pos, id := range scoredPositions(result) {
			if s := index[id]; s != nil {
				s.Points += PointsFor(pos)
			}
		}
		for _, key := range model.AwardKeys {
			winner := strings.TrimSpace(result.Award(key))
			if winner == "" {
				continue
			}
			if s := index[winner]; s != nil {
				s.Awards.Inc(key)
			}
		}
	}

	slices.SortStableFunc(standings, func(a, b model.DriverStanding) int {
		return cmp.Compare(b.Points, a.Points)
	})
	return standings
}

// ConstructorStandings sums driver points by effective group, sorted by
// points descending. Ties keep first-seen group order.
func ConstructorStandings(drivers []model.DriverStanding) []model.ConstructorStanding {
	groups := []model.ConstructorStanding{}
	index := map[string]int{}
	for _, d := range drivers {
		i, ok := index[d.Group]
		if !ok {
			i = len(groups)
			index[d.Group] = i
			groups = append(groups, model.ConstructorStanding{Group: d.Group, GroupColor: d.GroupColor})
		}
		groups[i].Points += d.Points
	}
	slices.SortStableFunc(groups, func(a, b model.ConstructorStanding) int {
		return cmp.Compare(b.Points, a.Points)
	})
	return groups
}

// TopAwardHolder returns the standing with the most wins of an award. Among
// tied leaders the one listed first wins. ok is false when nobody has won it.
func TopAwardHolder(standings []model.DriverStanding, key model.AwardKey) (leader model.AwardLeader, ok bool) {
	for _, s := range standings {
		if n := s.Awards.Get(key); n > leader.Count {
			leader = model.AwardLeader{Standing: s, Count: n}
		}
	}
	return leader, leader.Count > 0
}

// AwardLeaders runs TopAwardHolder for every award; awards nobody has won are omitted.
func AwardLeaders(standings []model.DriverStanding) map[model.AwardKey]model.AwardLeader {
	leaders := make(map[model.AwardKey]model.AwardLeader, len(model.AwardKeys))
	for _, key := range model.AwardKeys {
		if leader, ok := TopAwardHolder(standings, key); ok {
			leaders[key] = leader
		}
	}
	return leaders
}

// EffectiveGroup resolves the group a competitor is credited to.
func EffectiveGroup(c model.Competitor, overrides map[string]model.GroupOverride) (group, color string) {
	if o, ok := overrides[c.ID]; ok && strings.TrimSpace(o.Group) != "" {
		color = o.GroupColor
		if color == "" {
			color = c.GroupColor
		}
		return o.Group, color
	}
	return c.Group, c.GroupColor
}

// scoredPositions maps each position inside the scoring table to the
// competitor in it. Blank entries and repeat appearances of a competitor
// within the same result are dropped; the first occurrence wins.
func scoredPositions(result model.EventResult) map[int]string {
	limit := min(len(result.Ranked), len(ScoringTable))
	positions := make(map[int]string, limit)
	seen := make(map[string]struct{}, limit)
	for pos := 0; pos < limit; pos++ {
		id := strings.TrimSpace(result.Ranked[pos])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		positions[pos] = id
	}
	return positions
}
