// Package refdata holds the static competitor roster and event calendar.
// The data is loaded once at startup and never mutated afterwards.
package refdata

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"f1league-app/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed season.yaml
var seasonYAML []byte

const dateLayout = "2006-01-02"

type competitorRecord struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Number     int    `yaml:"number"`
	Group      string `yaml:"group"`
	GroupColor string `yaml:"group_color"`
	Country    string `yaml:"country"`
}

type eventRecord struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
	Circuit string `yaml:"circuit"`
	Date    string `yaml:"date"`
}

type seasonFile struct {
	Competitors []competitorRecord `yaml:"competitors"`
	Events      []eventRecord      `yaml:"events"`
}

// Data is an immutable snapshot of the reference tables.
type Data struct {
	competitors []model.Competitor
	events      []model.Event
	byID        map[string]int
	eventByID   map[int]int
}

// Default returns the embedded season data.
func Default() *Data {
	d, err := Parse(seasonYAML)
	if err != nil {
		panic(fmt.Sprintf("refdata: embedded season: %v", err))
	}
	return d
}

// LoadFile reads reference data from a YAML file on disk.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference data: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML season document.
func Parse(raw []byte) (*Data, error) {
	var file seasonFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reference data: %w", err)
	}
	if len(file.Competitors) == 0 {
		return nil, errors.New("reference data has no competitors")
	}

	d := &Data{
		competitors: make([]model.Competitor, 0, len(file.Competitors)),
		events:      make([]model.Event, 0, len(file.Events)),
		byID:        make(map[string]int, len(file.Competitors)),
		eventByID:   make(map[int]int, len(file.Events)),
	}
	for _, rec := range file.Competitors {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			return nil, fmt.Errorf("competitor %q has no id", rec.Name)
		}
		if _, dup := d.byID[id]; dup {
			return nil, fmt.Errorf("duplicate competitor id %q", id)
		}
		d.byID[id] = len(d.competitors)
		d.competitors = append(d.competitors, model.Competitor{
			ID:         id,
			Name:       rec.Name,
			Number:     rec.Number,
			Group:      rec.Group,
			GroupColor: rec.GroupColor,
			Country:    rec.Country,
		})
	}

	for _, rec := range file.Events {
		if _, dup := d.eventByID[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate event id %d", rec.ID)
		}
		var date time.Time
		if strings.TrimSpace(rec.Date) != "" {
			parsed, err := time.Parse(dateLayout, rec.Date)
			if err != nil {
				return nil, fmt.Errorf("event %d date: %w", rec.ID, err)
			}
			date = parsed
		}
		d.eventByID[rec.ID] = len(d.events)
		d.events = append(d.events, model.Event{
			ID:      rec.ID,
			Name:    rec.Name,
			Country: rec.Country,
			Circuit: rec.Circuit,
			Date:    date,
		})
	}
	slices.SortFunc(d.events, func(a, b model.Event) int { return a.ID - b.ID })
	for i, e := range d.events {
		d.eventByID[e.ID] = i
	}
	return d, nil
}

// Competitors returns the roster in reference order.
func (d *Data) Competitors() []model.Competitor {
	return slices.Clone(d.competitors)
}

// Events returns the calendar ordered by event id.
func (d *Data) Events() []model.Event {
	return slices.Clone(d.events)
}

func (d *Data) Competitor(id string) (model.Competitor, bool) {
	i, ok := d.byID[id]
	if !ok {
		return model.Competitor{}, false
	}
	return d.competitors[i], true
}

func (d *Data) Event(id int) (model.Event, bool) {
	i, ok := d.eventByID[id]
	if !ok {
		return model.Event{}, false
	}
	return d.events[i], true
}

// Groups lists the base groups in first-seen order.
func (d *Data) Groups() []string {
	groups := []string{}
	for _, c := range d.competitors {
		if !slices.Contains(groups, c.Group) {
			groups = append(groups, c.Group)
		}
	}
	return groups
}

// GroupColor returns the base colour of a group.
func (d *Data) GroupColor(group string) (string, bool) {
	for _, c := range d.competitors {
		if c.Group == group {
			return c.GroupColor, true
		}
	}
	return "", false
}
