package league

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"f1league-app/internal/auth"
	"f1league-app/internal/model"
	"f1league-app/internal/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type change struct {
	kind string
	key  string
}

// run applies one admin command and announces the change.
func (s *Service) run(ctx context.Context, command string, fn func(ctx context.Context) (change, error)) error {
	ctx, span := s.tracer.Start(ctx, "league."+command)
	defer span.End()

	var (
		ch  change
		err error
	)
	if !auth.IsAdmin(ctx) {
		err = ErrForbidden
	} else {
		ch, err = fn(ctx)
	}

	outcome := outcomeOf(err)
	s.metrics.commands.WithLabelValues(command, outcome).Inc()
	span.SetAttributes(attribute.String("league.command", command), attribute.String("league.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level := s.logger.Warn
		if outcome == "error" {
			level = s.logger.Error
		}
		level("League command rejected", "command", command, "outcome", outcome, "error", err)
		return err
	}

	if perr := s.publishChange(ctx, ch.kind, ch.key); perr != nil {
		s.logger.Error("Failed to publish change event", "command", command, "error", perr)
		s.invalidate()
	}
	s.logger.Info("League command applied", "command", command, "kind", ch.kind, "key", ch.key)
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRosterFull), errors.Is(err, ErrCompetitorTaken):
		return "conflict"
	}
	return "error"
}

func notFound(err error, what string) error {
	if store.IsNotFound(err) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// SaveResult replaces the result of one event after validating it.
func (s *Service) SaveResult(ctx context.Context, r model.EventResult) error {
	return s.run(ctx, "save_result", func(ctx context.Context) (change, error) {
		clean, err := s.validateResult(r)
		if err != nil {
			return change{}, err
		}
		clean.UpdatedAt = s.now().UTC()
		if err := s.store.UpsertResult(ctx, clean); err != nil {
			return change{}, fmt.Errorf("save result: %w", err)
		}
		return change{KindResult, strconv.Itoa(clean.EventID)}, nil
	})
}

func (s *Service) ClearResult(ctx context.Context, eventID int) error {
	return s.run(ctx, "clear_result", func(ctx context.Context) (change, error) {
		if _, ok := s.ref.Event(eventID); !ok {
			return change{}, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
		}
		if err := s.store.DeleteResult(ctx, eventID); err != nil {
			return change{}, fmt.Errorf("clear result: %w", err)
		}
		return change{KindResult, strconv.Itoa(eventID)}, nil
	})
}

// AssignGroup moves a competitor into another group, taking the colour from
// the group palette.
func (s *Service) AssignGroup(ctx context.Context, competitorID, group string) error {
	return s.run(ctx, "assign_group", func(ctx context.Context) (change, error) {
		c, ok := s.ref.Competitor(competitorID)
		if !ok {
			return change{}, fmt.Errorf("competitor %q: %w", competitorID, ErrNotFound)
		}
		group = strings.TrimSpace(group)
		if group == "" {
			return change{}, invalid("group", "required")
		}
		color, known := s.ref.GroupColor(group)
		if !known {
			return change{}, invalid("group", "unknown group")
		}
		if color == "" {
			color = c.GroupColor
		}
		err := s.store.UpsertOverride(ctx, model.GroupOverride{
			CompetitorID: c.ID,
			Group:        group,
			GroupColor:   color,
			UpdatedAt:    s.now().UTC(),
		})
		if err != nil {
			return change{}, fmt.Errorf("assign group: %w", err)
		}
		return change{KindOverride, c.ID}, nil
	})
}

func (s *Service) ClearGroup(ctx context.Context, competitorID string) error {
	return s.run(ctx, "clear_group", func(ctx context.Context) (change, error) {
		if _, ok := s.ref.Competitor(competitorID); !ok {
			return change{}, fmt.Errorf("competitor %q: %w", competitorID, ErrNotFound)
		}
		if err := s.store.DeleteOverride(ctx, competitorID); err != nil {
			return change{}, fmt.Errorf("clear group: %w", err)
		}
		return change{KindOverride, competitorID}, nil
	})
}

// AddPlayer claims a free competitor for a new fantasy player and returns the
// roster entry id.
func (s *Service) AddPlayer(ctx context.Context, playerName, competitorID string) (string, error) {
	var id string
	err := s.run(ctx, "add_player", func(ctx context.Context) (change, error) {
		var problems ValidationErrors
		playerName = strings.TrimSpace(playerName)
		if playerName == "" {
			problems = append(problems, ValidationError{Field: "player_name", Reason: "required"})
		}
		if _, ok := s.ref.Competitor(competitorID); !ok {
			problems = append(problems, ValidationError{Field: "competitor", Reason: "unknown competitor"})
		}
		if len(problems) > 0 {
			return change{}, problems
		}

		roster, err := s.store.ListRoster(ctx)
		if err != nil {
			return change{}, fmt.Errorf("load roster: %w", err)
		}
		if len(roster) >= MaxRosterSize {
			return change{}, ErrRosterFull
		}
		for _, a := range roster {
			if a.CompetitorID == competitorID {
				return change{}, ErrCompetitorTaken
			}
		}

		id, err = s.store.InsertRoster(ctx, playerName, competitorID)
		if err != nil {
			return change{}, err
		}
		return change{KindRoster, id}, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) RemovePlayer(ctx context.Context, id string) error {
	return s.run(ctx, "remove_player", func(ctx context.Context) (change, error) {
		if err := s.store.DeleteRoster(ctx, id); err != nil {
			return change{}, notFound(err, "roster entry "+id)
		}
		return change{KindRoster, id}, nil
	})
}

// ReassignPlayer gives an existing player a different competitor.
func (s *Service) ReassignPlayer(ctx context.Context, id, competitorID string) error {
	return s.run(ctx, "reassign_player", func(ctx context.Context) (change, error) {
		if _, ok := s.ref.Competitor(competitorID); !ok {
			return change{}, invalid("competitor", "unknown competitor")
		}
		if err := s.store.UpdateRoster(ctx, id, competitorID); err != nil {
			return change{}, notFound(err, "roster entry "+id)
		}
		return change{KindRoster, id}, nil
	})
}

// ResetLeague wipes every result, override and roster entry.
func (s *Service) ResetLeague(ctx context.Context) error {
	return s.run(ctx, "reset_league", func(ctx context.Context) (change, error) {
		if err := s.store.Reset(ctx); err != nil {
			return change{}, fmt.Errorf("reset league: %w", err)
		}
		return change{KindReset, "all"}, nil
	})
}
