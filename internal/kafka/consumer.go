package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

const (
	minRetryBackoff = time.Second
	maxRetryBackoff = 30 * time.Second
)

type Consumer struct {
	reader MessageReader
	Logger *logger.Logger
	// RetryBackoff is the first wait after a failed read; it doubles up to
	// maxRetryBackoff while reads keep failing.
	RetryBackoff time.Duration
}

// NewConsumer creates a group consumer over every change topic
func NewConsumer(brokers []string, topics []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupTopics: topics,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader, Logger: log, RetryBackoff: minRetryBackoff}
}

// NewConsumerWithReader wraps an existing reader
func NewConsumerWithReader(reader MessageReader, log *logger.Logger) *Consumer {
	return &Consumer{reader: reader, Logger: log, RetryBackoff: minRetryBackoff}
}

// Start consumes change notifications until ctx is cancelled or the reader
// is closed. Read errors are retried with backoff and undecodable messages
// are skipped.
func (c *Consumer) Start(ctx context.Context, handler func(ctx context.Context, change models.Change) error) error {
	c.Logger.Info("KAFKA", "Change consumer started")

	backoff := c.RetryBackoff
	if backoff <= 0 {
		backoff = minRetryBackoff
	}
	wait := backoff

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.Logger.Info("KAFKA", "Change consumer stopped")
				return nil
			}
			c.Logger.Error("KAFKA", fmt.Sprintf("Error reading message, retrying in %s: %v", wait, err))
			select {
			case <-ctx.Done():
				c.Logger.Info("KAFKA", "Change consumer stopped")
				return nil
			case <-time.After(wait):
			}
			if wait *= 2; wait > maxRetryBackoff {
				wait = maxRetryBackoff
			}
			continue
		}
		wait = backoff

		var change models.Change
		if err := json.Unmarshal(msg.Value, &change); err != nil {
			c.Logger.Warn("KAFKA", fmt.Sprintf("Failed to unmarshal message from %s: %v", msg.Topic, err))
			continue
		}

		c.Logger.LogKafka("RECEIVE", msg.Topic, fmt.Sprintf("%s %s", change.Kind, change.EntityID))
		if err := handler(ctx, change); err != nil {
			c.Logger.Error("KAFKA", fmt.Sprintf("Handler failed for %s: %v", change.Kind, err))
		}
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
