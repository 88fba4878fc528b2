package standings

import (
	"testing"

	"f1league-app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgression(t *testing.T) {
	events := []model.Event{{ID: 3}, {ID: 1}, {ID: 2}}
	results := []model.EventResult{
		{EventID: 3, Ranked: []string{"C", "A"}},
		{EventID: 1, Ranked: []string{"A", "B"}},
		{EventID: 99, Ranked: []string{"D"}},
	}
	overrides := map[string]model.GroupOverride{"C": {CompetitorID: "C", Group: "Z", GroupColor: "#999999"}}

	series := Progression(fourCompetitors(), events, results, overrides)
	require.Len(t, series, 4)

	byID := map[string]Series{}
	for _, s := range series {
		byID[s.CompetitorID] = s
	}

	assert.Equal(t, []int{25, 25, 43}, byID["A"].Points)
	assert.Equal(t, []int{18, 18, 18}, byID["B"].Points)
	assert.Equal(t, []int{0, 0, 25}, byID["C"].Points)
	assert.Equal(t, []int{0, 0, 0}, byID["D"].Points, "results for unknown events are ignored")
	assert.Equal(t, "#999999", byID["C"].Color)

	assert.Equal(t, "A", series[0].CompetitorID)
	assert.Equal(t, 43, series[0].Total())
	assert.Equal(t, []string{"A", "C", "B", "D"}, []string{
		series[0].CompetitorID, series[1].CompetitorID, series[2].CompetitorID, series[3].CompetitorID,
	})
}

func TestProgressionNoEvents(t *testing.T) {
	series := Progression(fourCompetitors(), nil, nil, nil)
	require.Len(t, series, 4)
	for _, s := range series {
		assert.Empty(t, s.Points)
		assert.Zero(t, s.Total())
	}
}
