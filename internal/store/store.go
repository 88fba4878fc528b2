package store

import (
	"context"

	"f1league-app/internal/model"
)

// Store persists the mutable league state: group overrides, event results
// and the fantasy roster. Reference data never goes through a Store.
type Store interface {
	ListOverrides(ctx context.Context) ([]model.GroupOverride, error)
	UpsertOverride(ctx context.Context, o model.GroupOverride) error
	DeleteOverride(ctx context.Context, competitorID string) error

	ListResults(ctx context.Context) ([]model.EventResult, error)
	GetResult(ctx context.Context, eventID int) (model.EventResult, error)
	UpsertResult(ctx context.Context, r model.EventResult) error
	DeleteResult(ctx context.Context, eventID int) error

	ListRoster(ctx context.Context) ([]model.RosterAssignment, error)
	InsertRoster(ctx context.Context, playerName, competitorID string) (string, error)
	DeleteRoster(ctx context.Context, id string) error
	UpdateRoster(ctx context.Context, id, competitorID string) error

	// Reset removes every override, result and roster entry.
	Reset(ctx context.Context) error
	Close() error
}

// OverrideMap indexes overrides by competitor id.
func OverrideMap(overrides []model.GroupOverride) map[string]model.GroupOverride {
	out := make(map[string]model.GroupOverride, len(overrides))
	for _, o := range overrides {
		out[o.CompetitorID] = o
	}
	return out
}
