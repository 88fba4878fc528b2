package standings

import (
	"testing"

	"f1league-app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placementIDs(stats []model.PlacementStats) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.CompetitorID
	}
	return out
}

func TestPlacementBreakdownHistogram(t *testing.T) {
	results := []model.EventResult{
		{EventID: 1, Ranked: []string{"A", "B", "C"}},
		{EventID: 2, Ranked: []string{"B", "A", "", "C"}},
		{EventID: 3, Ranked: []string{"A", "GHOST", "C", "", "", "", "", "", "", "", "D"}},
	}

	stats := PlacementBreakdown(fourCompetitors(), results, nil)
	require.Len(t, stats, 4)

	byID := map[string]model.PlacementStats{}
	for _, s := range stats {
		byID[s.CompetitorID] = s
	}

	a := byID["A"]
	assert.Equal(t, 2, a.Positions[0])
	assert.Equal(t, 1, a.Positions[1])
	assert.Equal(t, 3, a.Top10)
	assert.Equal(t, 25+18+25, a.Points)
	avg, ok := a.AveragePosition()
	require.True(t, ok)
	assert.InDelta(t, 4.0/3.0, avg, 1e-9)

	c := byID["C"]
	assert.Equal(t, [model.ResultSize]int{0, 0, 2, 1}, c.Positions)

	d := byID["D"]
	assert.Zero(t, d.Top10, "position 11 is not a top-10 finish")
	_, ok = d.AveragePosition()
	assert.False(t, ok)

	assert.Equal(t, []string{"A", "B", "C", "D"}, placementIDs(stats))
}

func TestPlacementBreakdownWinsBeatPoints(t *testing.T) {
	// A: P1 + P10 = 26. B: P2 + P6 = 26. Equal points, A has more wins.
	results := []model.EventResult{
		{EventID: 1, Ranked: []string{"A", "B"}},
		{EventID: 2, Ranked: []string{"", "", "", "", "", "B", "", "", "", "A"}},
	}
	stats := PlacementBreakdown(fourCompetitors(), results, nil)

	require.Equal(t, stats[0].Points, stats[1].Points)
	assert.Equal(t, []string{"A", "B"}, placementIDs(stats)[:2])

	points := pointsByID(DriverStandings(fourCompetitors(), results, nil, nil))
	assert.Equal(t, points["A"], points["B"])
}

func TestPlacementBreakdownUsesOverriddenGroup(t *testing.T) {
	overrides := map[string]model.GroupOverride{
		"B": {CompetitorID: "B", Group: "Moved"},
		"C": {CompetitorID: "C", Group: "  "},
	}
	stats := PlacementBreakdown(fourCompetitors(), nil, overrides)

	groups := map[string]string{}
	for _, s := range stats {
		groups[s.CompetitorID] = s.Group
	}
	competitors := fourCompetitors()
	assert.Equal(t, competitors[0].Group, groups["A"])
	assert.Equal(t, "Moved", groups["B"])
	assert.Equal(t, competitors[2].Group, groups["C"], "blank override keeps the reference group")
}

func TestComparePlacements(t *testing.T) {
	tests := []struct {
		name string
		a, b model.PlacementStats
		want int
	}{
		{
			name: "more second places wins when firsts tie",
			a:    model.PlacementStats{Positions: [10]int{1, 2}, Top10: 3, PositionSum: 5},
			b:    model.PlacementStats{Positions: [10]int{1, 1, 5}, Top10: 7, PositionSum: 18},
			want: -1,
		},
		{
			name: "lower average wins when histograms tie",
			a:    model.PlacementStats{Positions: [10]int{0, 0, 1}, Top10: 1, PositionSum: 3},
			b:    model.PlacementStats{Positions: [10]int{0, 0, 1}, Top10: 1, PositionSum: 4},
			want: -1,
		},
		{
			name: "any top-10 beats none",
			a:    model.PlacementStats{},
			b:    model.PlacementStats{Top10: 1, PositionSum: 10},
			want: 1,
		},
		{
			name: "points break remaining ties",
			a:    model.PlacementStats{Points: 1},
			b:    model.PlacementStats{Points: 2},
			want: 1,
		},
		{
			name: "identical",
			a:    model.PlacementStats{Positions: [10]int{1}, Top10: 1, PositionSum: 1, Points: 25},
			b:    model.PlacementStats{Positions: [10]int{1}, Top10: 1, PositionSum: 1, Points: 25},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComparePlacements(tt.a, tt.b))
		})
	}
}
