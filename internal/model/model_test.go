package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventResultComplete(t *testing.T) {
	full := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

	tests := []struct {
		name   string
		ranked []string
		want   bool
		filled int
	}{
		{name: "all filled", ranked: full, want: true, filled: 10},
		{name: "empty", ranked: nil, want: false, filled: 0},
		{name: "blank slot", ranked: []string{"A", "B", "C", "D", "", "F", "G", "H", "I", "J"}, want: false, filled: 9},
		{name: "duplicate", ranked: []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "A"}, want: false, filled: 10},
		{name: "short", ranked: full[:9], want: false, filled: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := EventResult{Ranked: tt.ranked}
			assert.Equal(t, tt.want, r.Complete())
			assert.Equal(t, tt.filled, r.Filled())
		})
	}
}

func TestEventResultAwards(t *testing.T) {
	var r EventResult
	for i, key := range AwardKeys {
		r.SetAward(key, string(rune('A'+i)))
	}
	r.SetAward(AwardKey("bogus"), "Z")

	assert.Equal(t, "A", r.Award(AwardDriverOfTheDay))
	assert.Equal(t, "B", r.Award(AwardFastestLap))
	assert.Equal(t, "C", r.Award(AwardMostOvertakes))
	assert.Equal(t, "D", r.Award(AwardCleanestDriver))
	assert.Empty(t, r.Award(AwardKey("bogus")))
	assert.False(t, AwardKey("bogus").Valid())
}

func TestAwardCounts(t *testing.T) {
	var counts AwardCounts
	counts.Inc(AwardFastestLap)
	counts.Inc(AwardFastestLap)
	counts.Inc(AwardKey("bogus"))

	assert.Equal(t, 2, counts.Get(AwardFastestLap))
	assert.Zero(t, counts.Get(AwardDriverOfTheDay))
	assert.Zero(t, counts.Get(AwardKey("bogus")))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Max Verstappen", DriverStanding{CompetitorName: "Max Verstappen"}.DisplayName())
	assert.Equal(t, "Kim (Max Verstappen)", DriverStanding{CompetitorName: "Max Verstappen", PlayerName: " Kim "}.DisplayName())
}
