package league

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"f1league-app/internal/model"
	"f1league-app/internal/refdata"
	"f1league-app/internal/standings"
	"f1league-app/internal/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// MaxRosterSize caps the number of fantasy players.
const MaxRosterSize = 5

// PubSub carries league change events.
type PubSub interface {
	message.Publisher
	message.Subscriber
}

type Options struct {
	Logger  *slog.Logger
	Metrics *Metrics
	Tracer  trace.Tracer
	// PubSub defaults to an in-process channel owned by the service.
	PubSub PubSub
	// CacheTTL bounds how long computed standings are reused. Zero keeps
	// them until the next change event.
	CacheTTL time.Duration
	Now      func() time.Time
}

// Service combines reference data with the stored league state and guards
// every mutation behind the admin role.
type Service struct {
	store   store.Store
	ref     *refdata.Data
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time

	publisher message.Publisher
	ownPubSub PubSub
	cancel    context.CancelFunc
	watchDone chan struct{}

	cacheTTL time.Duration
	mu       sync.Mutex
	snap     *snapshot
	gen      uint64
}

type snapshot struct {
	table       standings.Table
	placements  []model.PlacementStats
	progression []standings.Series
	results     []model.EventResult
	overrides   map[string]model.GroupOverride
	roster      []model.RosterAssignment
	at          time.Time
}

func NewService(st store.Store, ref *refdata.Data, opts Options) (*Service, error) {
	s := &Service{
		store:     st,
		ref:       ref,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		now:       opts.Now,
		cacheTTL:  opts.CacheTTL,
		watchDone: make(chan struct{}),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "league")
	if s.metrics == nil {
		s.metrics = NewMetrics(prometheus.NewRegistry())
	}
	if s.tracer == nil {
		// Spans are dropped unless the process registers a TracerProvider.
		s.tracer = otel.Tracer("f1league-app/league")
	}
	if s.now == nil {
		s.now = time.Now
	}

	pubsub := opts.PubSub
	if pubsub == nil {
		pubsub = gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            16,
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NewSlogLogger(s.logger))
		s.ownPubSub = pubsub
	}
	s.publisher = pubsub

	ctx, cancel := context.WithCancel(context.Background())
	messages, err := pubsub.Subscribe(ctx, ChangedTopic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", ChangedTopic, err)
	}
	s.cancel = cancel
	go s.watchChanges(messages)
	return s, nil
}

// Close stops the change subscriber and releases an owned pubsub.
func (s *Service) Close() error {
	s.cancel()
	var err error
	if s.ownPubSub != nil {
		err = s.ownPubSub.Close()
	}
	<-s.watchDone
	return err
}

func (s *Service) Reference() *refdata.Data { return s.ref }

func (s *Service) invalidate() {
	s.mu.Lock()
	s.gen++
	s.snap = nil
	s.mu.Unlock()
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	s.mu.Lock()
	if s.snap != nil && (s.cacheTTL <= 0 || s.now().Sub(s.snap.at) < s.cacheTTL) {
		snap := s.snap
		s.mu.Unlock()
		s.metrics.cacheHits.Inc()
		return snap, nil
	}
	gen := s.gen
	s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "league.computeStandings")
	defer span.End()
	started := time.Now()

	overrideList, err := s.store.ListOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	results, err := s.store.ListResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	roster, err := s.store.ListRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	competitors := s.ref.Competitors()
	overrides := store.OverrideMap(overrideList)
	snap := &snapshot{
		table: standings.Compute(standings.Input{
			Competitors: competitors,
			Results:     results,
			Overrides:   overrides,
			Roster:      roster,
		}),
		placements:  standings.PlacementBreakdown(competitors, results, overrides),
		progression: standings.Progression(competitors, s.ref.Events(), results, overrides),
		results:     results,
		overrides:   overrides,
		roster:      roster,
		at:          s.now(),
	}
	s.metrics.computations.Inc()
	s.metrics.computeSeconds.Observe(time.Since(started).Seconds())

	s.mu.Lock()
	if s.gen == gen {
		s.snap = snap
	}
	s.mu.Unlock()
	return snap, nil
}

func (s *Service) Standings(ctx context.Context) (standings.Table, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return standings.Table{}, err
	}
	return standings.Table{
		Drivers:      slices.Clone(snap.table.Drivers),
		Constructors: slices.Clone(snap.table.Constructors),
		Leaders:      maps.Clone(snap.table.Leaders),
	}, nil
}

func (s *Service) Placements(ctx context.Context) ([]model.PlacementStats, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.placements), nil
}

func (s *Service) Progression(ctx context.Context) ([]standings.Series, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(snap.progression)
	for i := range out {
		out[i].Points = slices.Clone(out[i].Points)
	}
	return out, nil
}

type EventStatus struct {
	Event     model.Event
	Result    *model.EventResult
	Completed bool
}

// Calendar lists every event with its recorded result, if any.
func (s *Service) Calendar(ctx context.Context) ([]EventStatus, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	byEvent := make(map[int]model.EventResult, len(snap.results))
	for _, r := range snap.results {
		byEvent[r.EventID] = r
	}
	events := s.ref.Events()
	out := make([]EventStatus, len(events))
	for i, e := range events {
		out[i] = EventStatus{Event: e}
		if r, ok := byEvent[e.ID]; ok {
			r.Ranked = slices.Clone(r.Ranked)
			out[i].Result = &r
			out[i].Completed = r.Complete()
		}
	}
	return out, nil
}

// Result returns the stored result for an event. found is false when the
// event exists but nothing has been recorded yet.
func (s *Service) Result(ctx context.Context, eventID int) (result model.EventResult, found bool, err error) {
	if _, ok := s.ref.Event(eventID); !ok {
		return model.EventResult{}, false, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	r, err := s.store.GetResult(ctx, eventID)
	switch {
	case err == nil:
		return r, true, nil
	case store.IsNotFound(err):
		return model.EventResult{EventID: eventID}, false, nil
	default:
		return model.EventResult{}, false, err
	}
}

type RosterEntry struct {
	Assignment model.RosterAssignment
	Competitor model.Competitor
	Group      string
	GroupColor string
	Points     int
}

// DisplayName renders the entry as "Player (Driver)".
func (e RosterEntry) DisplayName() string {
	return model.DriverStanding{CompetitorName: e.Competitor.Name, PlayerName: e.Assignment.PlayerName}.DisplayName()
}

func (s *Service) Roster(ctx context.Context) ([]RosterEntry, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	points := make(map[string]int, len(snap.table.Drivers))
	for _, d := range snap.table.Drivers {
		points[d.CompetitorID] = d.Points
	}
	out := make([]RosterEntry, 0, len(snap.roster))
	for _, a := range snap.roster {
		entry := RosterEntry{Assignment: a, Points: points[a.CompetitorID]}
		if c, ok := s.ref.Competitor(a.CompetitorID); ok {
			entry.Competitor = c
			entry.Group, entry.GroupColor = standings.EffectiveGroup(c, snap.overrides)
		} else {
			entry.Competitor = model.Competitor{ID: a.CompetitorID, Name: a.CompetitorID}
		}
		out = append(out, entry)
	}
	return out, nil
}

// AvailableCompetitors lists competitors nobody has claimed yet.
func (s *Service) AvailableCompetitors(ctx context.Context) ([]model.Competitor, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(snap.roster))
	for _, a := range snap.roster {
		taken[a.CompetitorID] = true
	}
	return slices.DeleteFunc(s.ref.Competitors(), func(c model.Competitor) bool { return taken[c.ID] }), nil
}

type GridEntry struct {
	Competitor model.Competitor
	Group      string
	GroupColor string
	Overridden bool
}

// Grid lists every competitor with its effective group.
func (s *Service) Grid(ctx context.Context) ([]GridEntry, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	competitors := s.ref.Competitors()
	out := make([]GridEntry, len(competitors))
	for i, c := range competitors {
		group, color := standings.EffectiveGroup(c, snap.overrides)
		_, overridden := snap.overrides[c.ID]
		out[i] = GridEntry{Competitor: c, Group: group, GroupColor: color, Overridden: overridden}
	}
	return out, nil
}

type GroupOption struct {
	Name  string
	Color string
}

// Groups lists the group palette in reference order.
func (s *Service) Groups() []GroupOption {
	names := s.ref.Groups()
	out := make([]GroupOption, len(names))
	for i, name := range names {
		color, _ := s.ref.GroupColor(name)
		out[i] = GroupOption{Name: name, Color: color}
	}
	return out
}
