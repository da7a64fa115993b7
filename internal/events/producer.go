package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/catalog/pkg/logging"
)

const (
	TopicUser  = "user_events"
	TopicToken = "token_events"
	TopicItem  = "item_events"

	publishTimeout = 5 * time.Second
)

type Event struct {
	Type     string         `json:"type"`
	Identity string         `json:"user_identity,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty"`
	At       time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, ev Event) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           publishTimeout,
		},
	}
}

// New returns a kafka producer, or a publisher that drops everything when no
// brokers are configured.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewProducer(brokers)
}

func (p *Producer) Publish(ctx context.Context, topic, key string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }
func (Nop) Close() error                                         { return nil }

// Emit publishes with a bounded timeout and only logs failures: events are
// a side channel and never fail the request that produced them.
func Emit(ctx context.Context, p Publisher, topic, key string, ev Event) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
	Err    error
}

type Recorded struct {
	Topic string
	Key   string
	Event Event
}

func (r *Recorder) Publish(_ context.Context, topic, key string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Events = append(r.Events, Recorded{Topic: topic, Key: key, Event: ev})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Types(topic string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.Events {
		if e.Topic == topic {
			out = append(out, e.Event.Type)
		}
	}
	return out
}
