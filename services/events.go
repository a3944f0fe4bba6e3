package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"

	"github.com/bellapacxx/bingo-sessions/utils/logger"
)

const MatchEventsTopic = "match.events"

type MatchEventType string

const (
	EventMatchStarted   MatchEventType = "match_started"
	EventNumberDrawn    MatchEventType = "number_drawn"
	EventMatchFinalized MatchEventType = "match_finalized"
	EventMatchAnnulled  MatchEventType = "match_annulled"
	EventSnapshot       MatchEventType = "snapshot"
)

// MatchEvent is what live clients of a match receive
type MatchEvent struct {
	Type      MatchEventType `json:"type"`
	MatchID   uint           `json:"match_id"`
	Number    int            `json:"number,omitempty"`
	Letter    string         `json:"letter,omitempty"`
	Narration string         `json:"narration,omitempty"`
	Numbers   []int          `json:"numbers"`
	WinnerID  *uint          `json:"winner_id,omitempty"`
	At        time.Time      `json:"at"`
}

// EventPublisher receives match events after their transaction commits
type EventPublisher interface {
	Publish(evt MatchEvent) error
}

// EventBus is an in-process pub/sub for match events
type EventBus struct {
	pubsub *gochannel.GoChannel
}

func NewEventBus() *EventBus {
	return &EventBus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 64,

				// keeps per-match events in publish order
				BlockPublishUntilSubscriberAck: true,
			},
			zapWatermillLogger{fields: watermill.LogFields{"component": "eventbus"}},
		),
	}
}

func (b *EventBus) Publish(evt MatchEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "marshal match event")
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("match_id", strconv.FormatUint(uint64(evt.MatchID), 10))
	msg.Metadata.Set("type", string(evt.Type))

	return errors.Wrapf(b.pubsub.Publish(MatchEventsTopic, msg), "publish %s", evt.Type)
}

// Subscribe streams match events until ctx is cancelled or the bus closes.
// Every message must be acked.
func (b *EventBus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, MatchEventsTopic)
}

func (b *EventBus) Close() error {
	return b.pubsub.Close()
}

// DecodeMatchEvent reads a message produced by EventBus.Publish
func DecodeMatchEvent(msg *message.Message) (MatchEvent, error) {
	var evt MatchEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return evt, errors.Wrapf(err, "decode event %s", msg.UUID)
	}
	return evt, nil
}

// zapWatermillLogger routes watermill's logs to the service logger
type zapWatermillLogger struct {
	fields watermill.LogFields
}

func (l zapWatermillLogger) kv(fields watermill.LogFields) []interface{} {
	all := l.fields.Add(fields)
	out := make([]interface{}, 0, len(all)*2)
	for k, v := range all {
		out = append(out, k, v)
	}
	return out
}

func (l zapWatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	logger.Errorw(msg, append(l.kv(fields), "error", err)...)
}

func (l zapWatermillLogger) Info(msg string, fields watermill.LogFields) {
	logger.Infow(msg, l.kv(fields)...)
}

func (l zapWatermillLogger) Debug(msg string, fields watermill.LogFields) {
	logger.Debugw(msg, l.kv(fields)...)
}

func (l zapWatermillLogger) Trace(msg string, fields watermill.LogFields) {
	logger.Debugw(msg, l.kv(fields)...)
}

func (l zapWatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return zapWatermillLogger{fields: l.fields.Add(fields)}
}
