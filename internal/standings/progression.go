package standings

import (
	"cmp"
	"slices"

	"f1league-app/internal/model"
)

// Series is a competitor's cumulative points after each event.
type Series struct {
	CompetitorID string
	Name         string
	Color        string
	Points       []int
}

// Total is the points after the last event.
func (s Series) Total() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1]
}

// Progression returns the cumulative points of every competitor across the
// calendar in event id order. Events without a result carry the previous
// total forward. Series are sorted by final total, ties in reference order.
func Progression(
	competitors []model.Competitor,
	events []model.Event,
	results []model.EventResult,
	overrides map[string]model.GroupOverride,
) []Series {
	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(a, b model.Event) int { return cmp.Compare(a.ID, b.ID) })

	byEvent := make(map[int][]model.EventResult, len(results))
	for _, r := range results {
		byEvent[r.EventID] = append(byEvent[r.EventID], r)
	}

	series := make([]Series, len(competitors))
	index := make(map[string]*Series, len(competitors))
	for i, c := range competitors {
		_, color := EffectiveGroup(c, overrides)
		series[i] = Series{
			CompetitorID: c.ID,
			Name:         c.Name,
			Color:        color,
			Points:       make([]int, len(ordered)),
		}
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = &series[i]
		}
	}

	running := make(map[string]int, len(competitors))
	for step, e := range ordered {
		for _, r := range byEvent[e.ID] {
			for pos, id := range scoredPositions(r) {
				if index[id] != nil {
					running[id] += PointsFor(pos)
				}
			}
		}
		for id, s := range index {
			s.Points[step] = running[id]
		}
	}

	slices.SortStableFunc(series, func(a, b Series) int { return cmp.Compare(b.Total(), a.Total()) })
	return series
}
