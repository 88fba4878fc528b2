package standings

import (
	"cmp"
	"slices"

	"f1league-app/internal/model"
)

// PlacementBreakdown builds a finishing-position histogram per competitor.
//
// The result is ranked by the position counts from P1 downward (more wins
// first, then more seconds, and so on), then by lower average position, then
// by more top-10 finishes, then by points. Remaining ties keep reference order.
// Group is the competitor's effective group after overrides.
func PlacementBreakdown(competitors []model.Competitor, results []model.EventResult, overrides map[string]model.GroupOverride) []model.PlacementStats {
	stats := make([]model.PlacementStats, len(competitors))
	index := make(map[string]*model.PlacementStats, len(competitors))
	for i, c := range competitors {
		group, _ := EffectiveGroup(c, overrides)
		stats[i] = model.PlacementStats{
			CompetitorID:   c.ID,
			CompetitorName: c.Name,
			Group:          group,
		}
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = &stats[i]
		}
	}

	for _, result := range results {
		for pos, id := range scoredPositions(result) {
			s := index[id]
			if s == nil {
				continue
			}
			s.Positions[pos]++
			s.Top10++
			s.PositionSum += pos + 1
			s.Points += PointsFor(pos)
		}
	}

	slices.SortStableFunc(stats, ComparePlacements)
	return stats
}

// ComparePlacements orders a before b when a ranks higher. It is the
// comparator used by PlacementBreakdown.
func ComparePlacements(a, b model.PlacementStats) int {
	for pos := range a.Positions {
		if c := cmp.Compare(b.Positions[pos], a.Positions[pos]); c != 0 {
			return c
		}
	}
	avgA, okA := a.AveragePosition()
	avgB, okB := b.AveragePosition()
	switch {
	case okA && okB:
		if c := cmp.Compare(avgA, avgB); c != 0 {
			return c
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	if c := cmp.Compare(b.Top10, a.Top10); c != 0 {
		return c
	}
	return cmp.Compare(b.Points, a.Points)
}
