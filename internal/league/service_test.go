package league

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"f1league-app/internal/auth"
	"f1league-app/internal/model"
	"f1league-app/internal/refdata"
	"f1league-app/internal/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var errBoom = errors.New("boom")

type fixture struct {
	svc     *Service
	store   store.Store
	ref     *refdata.Data
	metrics *Metrics
	ids     []string
	admin   context.Context
	viewer  context.Context
}

func newFixture(t *testing.T, st store.Store, opts Options) *fixture {
	t.Helper()
	ref := refdata.Default()
	if st == nil {
		st = store.NewMemoryStore()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	opts.Logger = slog.New(slog.DiscardHandler)
	opts.Tracer = noop.NewTracerProvider().Tracer("test")

	svc, err := NewService(st, ref, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	ids := make([]string, 0, len(ref.Competitors()))
	for _, c := range ref.Competitors() {
		ids = append(ids, c.ID)
	}
	return &fixture{
		svc:     svc,
		store:   st,
		ref:     ref,
		metrics: opts.Metrics,
		ids:     ids,
		admin:   auth.WithRole(context.Background(), model.RoleAdmin),
		viewer:  context.Background(),
	}
}

// fullResult ranks the first ten reference competitors in order.
func (f *fixture) fullResult(eventID int) model.EventResult {
	r := model.EventResult{EventID: eventID, Ranked: append([]string(nil), f.ids[:model.ResultSize]...)}
	for i, key := range model.AwardKeys {
		r.SetAward(key, f.ids[i])
	}
	return r
}

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var problems ValidationErrors
	require.True(t, errors.As(err, &problems), "expected validation errors, got %v", err)
	fields := make([]string, len(problems))
	for i, p := range problems {
		fields[i] = p.Field
	}
	return fields
}

func TestCommandsRequireAdmin(t *testing.T) {
	f := newFixture(t, nil, Options{})

	commands := map[string]func(ctx context.Context) error{
		"save_result":     func(ctx context.Context) error { return f.svc.SaveResult(ctx, f.fullResult(1)) },
		"clear_result":    func(ctx context.Context) error { return f.svc.ClearResult(ctx, 1) },
		"assign_group":    func(ctx context.Context) error { return f.svc.AssignGroup(ctx, f.ids[0], "Ferrari") },
		"clear_group":     func(ctx context.Context) error { return f.svc.ClearGroup(ctx, f.ids[0]) },
		"remove_player":   func(ctx context.Context) error { return f.svc.RemovePlayer(ctx, "x") },
		"reassign_player": func(ctx context.Context) error { return f.svc.ReassignPlayer(ctx, "x", f.ids[0]) },
		"reset_league":    func(ctx context.Context) error { return f.svc.ResetLeague(ctx) },
		"add_player": func(ctx context.Context) error {
			_, err := f.svc.AddPlayer(ctx, "Kim", f.ids[0])
			return err
		},
	}

	for name, cmd := range commands {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, cmd(f.viewer), ErrForbidden)
			assert.ErrorIs(t, cmd(auth.WithRole(context.Background(), model.RoleViewer)), ErrForbidden)
			assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.commands.WithLabelValues(name, "forbidden")))
		})
	}

	results, err := f.store.ListResults(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results, "forbidden commands leave state untouched")
}

func TestSaveResultValidation(t *testing.T) {
	f := newFixture(t, nil, Options{})

	tests := []struct {
		name   string
		mutate func(r *model.EventResult)
		fields []string
	}{
		{
			name:   "blank position",
			mutate: func(r *model.EventResult) { r.Ranked[3] = " " },
			fields: []string{"position_4"},
		},
		{
			name:   "short list",
			mutate: func(r *model.EventResult) { r.Ranked = r.Ranked[:8] },
			fields: []string{"position_9", "position_10"},
		},
		{
			name:   "unknown competitor",
			mutate: func(r *model.EventResult) { r.Ranked[0] = "NOPE" },
			fields: []string{"position_1"},
		},
		{
			name:   "duplicate",
			mutate: func(r *model.EventResult) { r.Ranked[9] = r.Ranked[2] },
			fields: []string{"position_10"},
		},
		{
			name:   "eleventh position",
			mutate: func(r *model.EventResult) { r.Ranked = append(r.Ranked, f.ids[15]) },
			fields: []string{"position_11"},
		},
		{
			name: "missing awards",
			mutate: func(r *model.EventResult) {
				r.FastestLap = ""
				r.CleanestDriver = "NOPE"
			},
			fields: []string{"fastest_lap", "cleanest_driver"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := f.fullResult(1)
			tt.mutate(&r)
			err := f.svc.SaveResult(f.admin, r)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.fields, validationFields(t, err))
		})
	}

	t.Run("unknown event", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.SaveResult(f.admin, f.fullResult(999)), ErrNotFound)
	})

	_, found, err := f.svc.Result(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 6.0, testutil.ToFloat64(f.metrics.commands.WithLabelValues("save_result", "invalid")))
}

func TestSaveResultTrimsInput(t *testing.T) {
	f := newFixture(t, nil, Options{})
	r := f.fullResult(2)
	r.Ranked[0] = "  " + r.Ranked[0] + " "
	r.DriverOfTheDay = " " + r.DriverOfTheDay
	require.NoError(t, f.svc.SaveResult(f.admin, r))

	got, found, err := f.svc.Result(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, f.ids[:10], got.Ranked)
	assert.Equal(t, f.ids[0], got.DriverOfTheDay)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestStandingsFollowCommands(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	table, err := f.svc.Standings(ctx)
	require.NoError(t, err)
	require.Len(t, table.Drivers, len(f.ids))
	for _, d := range table.Drivers {
		assert.Zero(t, d.Points)
	}
	assert.Empty(t, table.Leaders)

	require.NoError(t, f.svc.SaveResult(f.admin, f.fullResult(1)))
	table, err = f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.ids[0], table.Drivers[0].CompetitorID)
	assert.Equal(t, 25, table.Drivers[0].Points)
	assert.Equal(t, f.ids[0], table.Leaders[model.AwardDriverOfTheDay].Standing.CompetitorID)

	second := f.fullResult(2)
	second.Ranked[0], second.Ranked[1] = second.Ranked[1], second.Ranked[0]
	require.NoError(t, f.svc.SaveResult(f.admin, second))
	table, err = f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 43, table.Drivers[0].Points)
	assert.Equal(t, 43, table.Drivers[1].Points)

	require.NoError(t, f.svc.ClearResult(f.admin, 2))
	table, err = f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, table.Drivers[0].Points)
}

func TestStandingsCache(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	_, err := f.svc.Standings(ctx)
	require.NoError(t, err)
	_, err = f.svc.Placements(ctx)
	require.NoError(t, err)
	_, err = f.svc.Grid(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.computations))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.cacheHits))

	require.NoError(t, f.svc.SaveResult(f.admin, f.fullResult(1)))
	_, err = f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.computations), "change event drops the cache")
}

func TestStandingsCacheTTL(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, nil, Options{CacheTTL: time.Minute, Now: func() time.Time { return now }})
	ctx := context.Background()

	_, err := f.svc.Standings(ctx)
	require.NoError(t, err)
	_, err = f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.computations))

	now = now.Add(2 * time.Minute)
	_, err = f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.computations))
}

func TestQueriesReturnCopies(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	table, err := f.svc.Standings(ctx)
	require.NoError(t, err)
	table.Drivers[0].Points = 999

	again, err := f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Drivers[0].Points)
}

func TestCalendar(t *testing.T) {
	f := newFixture(t, nil, Options{})
	require.NoError(t, f.svc.SaveResult(f.admin, f.fullResult(1)))
	require.NoError(t, f.store.UpsertResult(context.Background(), model.EventResult{EventID: 2, Ranked: f.ids[:4]}))

	calendar, err := f.svc.Calendar(context.Background())
	require.NoError(t, err)
	require.Len(t, calendar, len(f.ref.Events()))

	assert.True(t, calendar[0].Completed)
	require.NotNil(t, calendar[1].Result)
	assert.False(t, calendar[1].Completed, "partial results are not complete")
	assert.Equal(t, 4, calendar[1].Result.Filled())
	assert.Nil(t, calendar[2].Result)
}

func TestResultUnknownEvent(t *testing.T) {
	f := newFixture(t, nil, Options{})
	_, _, err := f.svc.Result(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.ClearResult(f.admin, 999), ErrNotFound)
}

func TestRoster(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()

	players := []string{"Kim", "Alex", "Sam", "Robin", "Jules"}
	ids := make([]string, len(players))
	for i, name := range players {
		id, err := f.svc.AddPlayer(f.admin, name, f.ids[i])
		require.NoError(t, err)
		ids[i] = id
	}

	_, err := f.svc.AddPlayer(f.admin, "Max", f.ids[10])
	assert.ErrorIs(t, err, ErrRosterFull)

	available, err := f.svc.AvailableCompetitors(ctx)
	require.NoError(t, err)
	assert.Len(t, available, len(f.ids)-len(players))
	for _, c := range available {
		assert.NotContains(t, f.ids[:len(players)], c.ID)
	}

	require.NoError(t, f.svc.RemovePlayer(f.admin, ids[4]))
	assert.ErrorIs(t, f.svc.RemovePlayer(f.admin, ids[4]), ErrNotFound)

	_, err = f.svc.AddPlayer(f.admin, "Max", f.ids[0])
	assert.ErrorIs(t, err, ErrCompetitorTaken)
	_, err = f.svc.AddPlayer(f.admin, "  ", "NOPE")
	assert.Equal(t, []string{"player_name", "competitor"}, validationFields(t, err))

	assert.ErrorIs(t, f.svc.ReassignPlayer(f.admin, ids[0], f.ids[1]), ErrCompetitorTaken)
	assert.ErrorIs(t, f.svc.ReassignPlayer(f.admin, ids[0], "NOPE"), ErrValidation)
	assert.ErrorIs(t, f.svc.ReassignPlayer(f.admin, "missing", f.ids[12]), ErrNotFound)
	require.NoError(t, f.svc.ReassignPlayer(f.admin, ids[0], f.ids[12]))

	require.NoError(t, f.svc.SaveResult(f.admin, f.fullResult(1)))
	roster, err := f.svc.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 4)
	assert.Equal(t, f.ids[12], roster[0].Competitor.ID)
	assert.Zero(t, roster[0].Points)
	assert.Equal(t, "Alex", roster[1].Assignment.PlayerName)
	assert.Equal(t, 18, roster[1].Points)

	c, _ := f.ref.Competitor(f.ids[1])
	assert.Equal(t, "Alex ("+c.Name+")", roster[1].DisplayName())

	table, err := f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alex", table.Drivers[1].PlayerName)
}

func TestAssignGroup(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()
	ver := f.ids[0]

	assert.ErrorIs(t, f.svc.AssignGroup(f.admin, ver, "Minardi"), ErrValidation)
	assert.ErrorIs(t, f.svc.AssignGroup(f.admin, ver, " "), ErrValidation)
	assert.ErrorIs(t, f.svc.AssignGroup(f.admin, "NOPE", "Ferrari"), ErrNotFound)

	require.NoError(t, f.svc.AssignGroup(f.admin, ver, " Ferrari "))
	grid, err := f.svc.Grid(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ferrari", grid[0].Group)
	assert.Equal(t, "#E8002D", grid[0].GroupColor)
	assert.True(t, grid[0].Overridden)
	assert.False(t, grid[1].Overridden)

	require.NoError(t, f.svc.SaveResult(f.admin, f.fullResult(1)))
	table, err := f.svc.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ferrari", table.Drivers[0].Group)
	assert.Equal(t, "Ferrari", table.Constructors[0].Group)

	placements, err := f.svc.Placements(ctx)
	require.NoError(t, err)
	require.Equal(t, ver, placements[0].CompetitorID)
	assert.Equal(t, "Ferrari", placements[0].Group)

	require.NoError(t, f.svc.ClearGroup(f.admin, ver))
	grid, err = f.svc.Grid(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Red Bull Racing", grid[0].Group)
	assert.False(t, grid[0].Overridden)
}

func TestGroups(t *testing.T) {
	f := newFixture(t, nil, Options{})
	groups := f.svc.Groups()
	require.Len(t, groups, len(f.ref.Groups()))
	assert.Equal(t, GroupOption{Name: "Red Bull Racing", Color: "#3671C6"}, groups[0])
}

func TestResetLeague(t *testing.T) {
	f := newFixture(t, nil, Options{})
	ctx := context.Background()
	require.NoError(t, f.svc.SaveResult(f.admin, f.fullResult(1)))
	require.NoError(t, f.svc.AssignGroup(f.admin, f.ids[0], "Ferrari"))
	_, err := f.svc.AddPlayer(f.admin, "Kim", f.ids[0])
	require.NoError(t, err)

	require.NoError(t, f.svc.ResetLeague(f.admin))

	table, err := f.svc.Standings(ctx)
	require.NoError(t, err)
	for _, d := range table.Drivers {
		assert.Zero(t, d.Points)
		assert.Empty(t, d.PlayerName)
	}
	roster, err := f.svc.Roster(ctx)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestChangeEventsPublished(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubsub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := pubsub.Subscribe(ctx, ChangedTopic)
	require.NoError(t, err)

	f := newFixture(t, nil, Options{PubSub: pubsub})
	require.NoError(t, f.svc.AssignGroup(f.admin, f.ids[0], "Ferrari"))

	select {
	case msg := <-messages:
		ev, err := DecodeChangeEvent(msg)
		require.NoError(t, err)
		msg.Ack()
		assert.Equal(t, KindOverride, ev.Kind)
		assert.Equal(t, f.ids[0], ev.Key)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event published")
	}
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) ListResults(context.Context) ([]model.EventResult, error) { return nil, errBoom }
func (failingStore) UpsertResult(context.Context, model.EventResult) error    { return errBoom }

func TestStoreFailures(t *testing.T) {
	f := newFixture(t, failingStore{store.NewMemoryStore()}, Options{})

	_, err := f.svc.Standings(context.Background())
	assert.ErrorIs(t, err, errBoom)

	err = f.svc.SaveResult(f.admin, f.fullResult(1))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.commands.WithLabelValues("save_result", "error")))
}
