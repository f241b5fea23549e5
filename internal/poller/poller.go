package poller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic = "settings-changed"
	groupID      = "pickup-service-notes"
)

// SettingsChangedEvent is published when a localized setting is edited
type SettingsChangedEvent struct {
	Key     string `json:"key"`
	Culture string `json:"culture"`
}

// Invalidator drops cached settings
type Invalidator interface {
	Invalidate(ctx context.Context, key, culture string) error
}

// Poller consumes settings-changed events and invalidates the cached notes
type Poller struct {
	notes  Invalidator
	reader *kafka.Reader
}

func NewPoller(notes Invalidator, topic string, brokers ...string) *Poller {
	if topic == "" {
		topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{notes: notes, reader: reader}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if errors.Is(err, io.EOF) {
			return // reader closed
		}
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("error reading settings message: %v", err)
			}
			continue
		}
		p.handleMessage(ctx, m)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing settings reader: %v", err)
	}
}

func (p *Poller) handleMessage(ctx context.Context, m kafka.Message) {
	var event SettingsChangedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Printf("error parsing settings message at offset %d: %v", m.Offset, err)
		return
	}
	if event.Key == "" || event.Culture == "" {
		log.Printf("settings message at offset %d has no key or culture, nothing to invalidate", m.Offset)
		return
	}

	if err := p.notes.Invalidate(ctx, event.Key, event.Culture); err != nil {
		log.Printf("failed to invalidate note %s/%s: %v", event.Key, event.Culture, err)
	}
}
