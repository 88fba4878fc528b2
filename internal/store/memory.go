package store

import (
	"cmp"
	"context"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"f1league-app/internal/model"
	"f1league-app/internal/refdata"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu        sync.RWMutex
	overrides map[string]model.GroupOverride
	results   map[int]model.EventResult
	roster    []model.RosterAssignment
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		overrides: map[string]model.GroupOverride{},
		results:   map[int]model.EventResult{},
		now:       time.Now,
	}
}

// NewSeededMemoryStore returns a memory store preloaded with a few results
// and a full roster so the UI has something to show in development.
func NewSeededMemoryStore(ref *refdata.Data) *MemoryStore {
	s := NewMemoryStore()
	seedData(s, ref)
	return s
}

func (s *MemoryStore) ListOverrides(_ context.Context) ([]model.GroupOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.GroupOverride, 0, len(s.overrides))
	for _, o := range s.overrides {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b model.GroupOverride) int { return cmp.Compare(a.CompetitorID, b.CompetitorID) })
	return out, nil
}

func (s *MemoryStore) UpsertOverride(_ context.Context, o model.GroupOverride) error {
	if err := checkOverride(o); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = s.now().UTC()
	}
	s.overrides[o.CompetitorID] = o
	return nil
}

func (s *MemoryStore) DeleteOverride(_ context.Context, competitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, competitorID)
	return nil
}

func (s *MemoryStore) ListResults(_ context.Context) ([]model.EventResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.EventResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, cloneResult(r))
	}
	slices.SortFunc(out, func(a, b model.EventResult) int { return cmp.Compare(a.EventID, b.EventID) })
	return out, nil
}

func (s *MemoryStore) GetResult(_ context.Context, eventID int) (model.EventResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[eventID]
	if !ok {
		return model.EventResult{}, ErrNotFound
	}
	return cloneResult(r), nil
}

func (s *MemoryStore) UpsertResult(_ context.Context, r model.EventResult) error {
	if err := checkResult(r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = s.now().UTC()
	}
	s.results[r.EventID] = cloneResult(r)
	return nil
}

func (s *MemoryStore) DeleteResult(_ context.Context, eventID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, eventID)
	return nil
}

func (s *MemoryStore) ListRoster(_ context.Context) ([]model.RosterAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roster), nil
}

func (s *MemoryStore) InsertRoster(_ context.Context, playerName, competitorID string) (string, error) {
	if err := checkRoster(playerName, competitorID); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rosterIndexByCompetitor(competitorID) >= 0 {
		return "", ErrCompetitorTaken
	}
	entry := model.RosterAssignment{
		ID:           uuid.NewString(),
		PlayerName:   strings.TrimSpace(playerName),
		CompetitorID: competitorID,
		CreatedAt:    s.now().UTC(),
	}
	s.roster = append(s.roster, entry)
	return entry.ID, nil
}

func (s *MemoryStore) DeleteRoster(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.rosterIndex(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.roster = slices.Delete(s.roster, idx, idx+1)
	return nil
}

func (s *MemoryStore) UpdateRoster(_ context.Context, id, competitorID string) error {
	if strings.TrimSpace(competitorID) == "" {
		return fmt.Errorf("%w: roster entry without competitor", ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.rosterIndex(id)
	if idx < 0 {
		return ErrNotFound
	}
	if other := s.rosterIndexByCompetitor(competitorID); other >= 0 && other != idx {
		return ErrCompetitorTaken
	}
	s.roster[idx].CompetitorID = competitorID
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides = map[string]model.GroupOverride{}
	s.results = map[int]model.EventResult{}
	s.roster = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) rosterIndex(id string) int {
	return slices.IndexFunc(s.roster, func(r model.RosterAssignment) bool { return r.ID == id })
}

func (s *MemoryStore) rosterIndexByCompetitor(competitorID string) int {
	return slices.IndexFunc(s.roster, func(r model.RosterAssignment) bool { return r.CompetitorID == competitorID })
}

func seedData(s *MemoryStore, ref *refdata.Data) {
	rng := rand.New(rand.NewSource(42))
	competitors := ref.Competitors()
	events := ref.Events()
	if len(competitors) < model.ResultSize {
		return
	}

	ids := make([]string, len(competitors))
	for i, c := range competitors {
		ids[i] = c.ID
	}

	seeded := min(6, len(events))
	for _, e := range events[:seeded] {
		order := slices.Clone(ids)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		r := model.EventResult{
			EventID:   e.ID,
			Ranked:    order[:model.ResultSize],
			UpdatedAt: e.Date,
		}
		for _, key := range model.AwardKeys {
			r.SetAward(key, order[rng.Intn(len(order))])
		}
		s.results[e.ID] = r
	}

	players := []string{"Kim", "Alex", "Sam", "Robin", "Jules"}
	picks := rng.Perm(len(ids))
	base := time.Date(2025, time.February, 20, 18, 0, 0, 0, time.UTC)
	for i, name := range players {
		s.roster = append(s.roster, model.RosterAssignment{
			ID:           uuid.NewString(),
			PlayerName:   name,
			CompetitorID: ids[picks[i]],
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
	}

	if len(competitors) > 1 {
		moved := competitors[picks[len(players)]]
		target := competitors[0].Group
		if moved.Group == target {
			target = competitors[len(competitors)-1].Group
		}
		color, _ := ref.GroupColor(target)
		s.overrides[moved.ID] = model.GroupOverride{
			CompetitorID: moved.ID,
			Group:        target,
			GroupColor:   color,
			UpdatedAt:    base,
		}
	}
}
