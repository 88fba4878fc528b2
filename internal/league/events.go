package league

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ChangedTopic carries one message per successful league command.
const ChangedTopic = "league.changed"

const (
	KindResult   = "result"
	KindOverride = "override"
	KindRoster   = "roster"
	KindReset    = "reset"
)

type ChangeEvent struct {
	Kind string    `json:"kind"`
	Key  string    `json:"key"`
	At   time.Time `json:"at"`
}

func DecodeChangeEvent(msg *message.Message) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	return ev, nil
}

func (s *Service) publishChange(ctx context.Context, kind, key string) error {
	payload, err := json.Marshal(ChangeEvent{Kind: kind, Key: key, At: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return s.publisher.Publish(ChangedTopic, msg)
}

// watchChanges drops the cached standings whenever a change event arrives.
func (s *Service) watchChanges(messages <-chan *message.Message) {
	defer close(s.watchDone)
	for msg := range messages {
		ev, err := DecodeChangeEvent(msg)
		if err != nil {
			s.logger.Warn("Discarding malformed change event", "message_id", msg.UUID, "error", err)
		} else {
			s.logger.Debug("League changed", "kind", ev.Kind, "key", ev.Key)
		}
		s.invalidate()
		msg.Ack()
	}
}
