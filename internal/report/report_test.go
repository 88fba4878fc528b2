package report

import (
	"bytes"
	"image/png"
	"testing"

	"f1league-app/internal/model"
	"f1league-app/internal/standings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() (standings.Table, []model.PlacementStats) {
	competitors := []model.Competitor{
		{ID: "A", Name: "Alpha", Group: "Red", GroupColor: "#FF0000"},
		{ID: "B", Name: "Bravo", Group: "Blue", GroupColor: "#0000FF"},
	}
	results := []model.EventResult{
		{EventID: 1, Ranked: []string{"A", "B"}, DriverOfTheDay: "B"},
		{EventID: 2, Ranked: []string{"B", "A"}, FastestLap: "B"},
	}
	roster := []model.RosterAssignment{{ID: "r1", PlayerName: "Kim", CompetitorID: "B"}}
	table := standings.Compute(standings.Input{Competitors: competitors, Results: results, Roster: roster})
	return table, standings.PlacementBreakdown(competitors, results, nil)
}

func TestWriteStandingsXLSX(t *testing.T) {
	table, placements := sampleTable()

	var buf bytes.Buffer
	require.NoError(t, WriteStandingsXLSX(&buf, table, placements))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDrivers, SheetConstructors, SheetPlacements}, f.GetSheetList())

	drivers, err := f.GetRows(SheetDrivers)
	require.NoError(t, err)
	require.Len(t, drivers, 3)
	assert.Equal(t, []string{"Pos", "Driver", "Player", "Group", "Points", "Driver of the Day", "Fastest Lap", "Most Overtakes", "Cleanest Driver"}, drivers[0])
	assert.Equal(t, []string{"1", "Alpha", "", "Red", "43", "0", "0", "0", "0"}, drivers[1], "ties keep reference order")
	assert.Equal(t, []string{"2", "Bravo", "Kim", "Blue", "43", "1", "1", "0", "0"}, drivers[2])

	constructors, err := f.GetRows(SheetConstructors)
	require.NoError(t, err)
	require.Len(t, constructors, 3)
	assert.Equal(t, []string{"1", "Red", "43"}, constructors[1])

	rows, err := f.GetRows(SheetPlacements)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "P1", rows[0][2])
	assert.Equal(t, "Avg", rows[0][13])
	assert.Equal(t, "1.50", rows[1][13])
}

func TestWriteStandingsXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStandingsXLSX(&buf, standings.Table{}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetDrivers)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestProgressionChart(t *testing.T) {
	events := []model.Event{{ID: 1, Country: "Australia"}, {ID: 2, Country: "China"}, {ID: 3, Country: "Japan"}}
	series := []standings.Series{
		{CompetitorID: "A", Name: "Alpha", Color: "#FF8000", Points: []int{25, 43, 68}},
		{CompetitorID: "B", Name: "Bravo", Color: "bogus", Points: []int{18, 43, 61}},
		{CompetitorID: "C", Name: "Charlie", Color: "#00FF00", Points: []int{0, 0, 1}},
	}

	out, err := ProgressionChart(series, events, 2)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, chartWidth, cfg.Width)
	assert.Equal(t, chartHeight, cfg.Height)
}

func TestProgressionChartPlaceholder(t *testing.T) {
	tests := []struct {
		name   string
		series []standings.Series
		events []model.Event
	}{
		{name: "no events"},
		{name: "no points", series: []standings.Series{{Name: "Alpha", Points: []int{0}}}, events: []model.Event{{ID: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ProgressionChart(tt.series, tt.events, 5)
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, chartWidth/2, cfg.Width)
		})
	}
}

func TestEventTicksFollowEventID(t *testing.T) {
	events := []model.Event{{ID: 3, Country: "Japan"}, {ID: 1, Country: "Australia"}, {ID: 2, Country: "China"}}

	ticks := eventTicks(events)

	labels := make([]string, len(ticks))
	for i, tick := range ticks {
		labels[i] = tick.Label
		assert.Equal(t, float64(i), tick.Value)
	}
	assert.Equal(t, []string{"", "AUS", "CHI", "JAP"}, labels)
	assert.Equal(t, 3, events[0].ID, "input order is left alone")
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "AUS", shortName(model.Event{Country: "Australia"}))
	assert.Equal(t, "MÉX", shortName(model.Event{Country: "México"}))
	assert.Equal(t, "GP", shortName(model.Event{Name: "gp"}))
}
