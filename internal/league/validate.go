package league

import (
	"fmt"
	"strings"

	"f1league-app/internal/model"
)

func positionField(i int) string {
	return fmt.Sprintf("position_%d", i+1)
}

// validateResult checks a submitted result the way the entry form demands:
// every position filled once with a known competitor and every award set.
func (s *Service) validateResult(r model.EventResult) (model.EventResult, error) {
	if _, ok := s.ref.Event(r.EventID); !ok {
		return model.EventResult{}, fmt.Errorf("event %d: %w", r.EventID, ErrNotFound)
	}

	var problems ValidationErrors
	ranked := make([]string, model.ResultSize)
	seen := make(map[string]int, model.ResultSize)
	for i, raw := range r.Ranked {
		id := strings.TrimSpace(raw)
		if i >= model.ResultSize {
			if id != "" {
				problems = append(problems, ValidationError{Field: positionField(i), Reason: "only 10 positions are scored"})
			}
			continue
		}
		ranked[i] = id
	}
	for i, id := range ranked {
		field := positionField(i)
		switch {
		case id == "":
			problems = append(problems, ValidationError{Field: field, Reason: "required"})
			continue
		case !s.knownCompetitor(id):
			problems = append(problems, ValidationError{Field: field, Reason: "unknown competitor"})
			continue
		}
		if prev, dup := seen[id]; dup {
			problems = append(problems, ValidationError{Field: field, Reason: fmt.Sprintf("already placed at position %d", prev+1)})
			continue
		}
		seen[id] = i
	}

	clean := model.EventResult{EventID: r.EventID, Ranked: ranked}
	for _, key := range model.AwardKeys {
		id := strings.TrimSpace(r.Award(key))
		switch {
		case id == "":
			problems = append(problems, ValidationError{Field: string(key), Reason: "required"})
		case !s.knownCompetitor(id):
			problems = append(problems, ValidationError{Field: string(key), Reason: "unknown competitor"})
		default:
			clean.SetAward(key, id)
		}
	}

	if len(problems) > 0 {
		return model.EventResult{}, problems
	}
	return clean, nil
}

func (s *Service) knownCompetitor(id string) bool {
	_, ok := s.ref.Competitor(id)
	return ok
}
