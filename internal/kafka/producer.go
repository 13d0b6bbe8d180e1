package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ms-barpos/internal/config"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Topics config.TopicConfig
	Logger *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

// TopicFor routes a change to the topic of its entity.
func (p *Producer) TopicFor(kind models.ChangeKind) string {
	switch {
	case strings.HasPrefix(string(kind), "order."):
		return p.Topics.Orders
	case strings.HasPrefix(string(kind), "customer."):
		return p.Topics.Customers
	case strings.HasPrefix(string(kind), "event."):
		return p.Topics.Events
	default:
		return p.Topics.Menu
	}
}

// PublishChange streams a change notification, keyed by event so one
// event's changes stay ordered within a partition.
func (p *Producer) PublishChange(ctx context.Context, change models.Change) error {
	msgBytes, err := json.Marshal(change)
	if err != nil {
		return err
	}

	topic := p.TopicFor(change.Kind)
	key := change.EventID
	if key == "" {
		key = change.EntityID
	}

	if err := p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: msgBytes,
	}); err != nil {
		return fmt.Errorf("publish %s to %s: %w", change.Kind, topic, err)
	}
	p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("%s %s", change.Kind, change.EntityID))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
