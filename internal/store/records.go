package store

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"f1league-app/internal/model"
)

func checkOverride(o model.GroupOverride) error {
	if strings.TrimSpace(o.CompetitorID) == "" {
		return fmt.Errorf("%w: override without competitor", ErrInvalid)
	}
	if strings.TrimSpace(o.Group) == "" {
		return fmt.Errorf("%w: override without group", ErrInvalid)
	}
	return nil
}

func checkResult(r model.EventResult) error {
	if r.EventID <= 0 {
		return fmt.Errorf("%w: result event id %d", ErrInvalid, r.EventID)
	}
	return nil
}

func checkRoster(playerName, competitorID string) error {
	if strings.TrimSpace(playerName) == "" {
		return fmt.Errorf("%w: roster entry without player", ErrInvalid)
	}
	if strings.TrimSpace(competitorID) == "" {
		return fmt.Errorf("%w: roster entry without competitor", ErrInvalid)
	}
	return nil
}

func cloneResult(r model.EventResult) model.EventResult {
	r.Ranked = slices.Clone(r.Ranked)
	return r
}

func encodeRanked(ranked []string) (string, error) {
	if ranked == nil {
		ranked = []string{}
	}
	raw, err := json.Marshal(ranked)
	if err != nil {
		return "", fmt.Errorf("encode ranked: %w", err)
	}
	return string(raw), nil
}

func decodeRanked(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var ranked []string
	if err := json.Unmarshal([]byte(raw), &ranked); err != nil {
		return nil, fmt.Errorf("decode ranked: %w", err)
	}
	return ranked, nil
}
