package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"ms-barpos/internal/config"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *MockWriter) Close() error { return m.Called().Error(0) }

// fakeReader replays messages (or read errors), then reports the reader as
// closed.
type fakeReader struct {
	msgs  []kafka.Message
	errs  map[int]error
	reads int
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.reads++
	if err, ok := r.errs[r.reads]; ok {
		return kafka.Message{}, err
	}
	if len(r.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

// blockingReader fails every read until ctx is cancelled.
type blockingReader struct{}

func (blockingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return kafka.Message{}, errors.New("broker not available")
}

func (blockingReader) Close() error { return nil }

func (r *fakeReader) Close() error { return nil }

var topics = config.TopicConfig{Orders: "o", Customers: "c", Events: "e", Menu: "m"}

func TestTopicFor(t *testing.T) {
	p := &Producer{Topics: topics}
	assert.Equal(t, "o", p.TopicFor(models.ChangeOrderCreated))
	assert.Equal(t, "o", p.TopicFor(models.ChangeOrderStatusChanged))
	assert.Equal(t, "c", p.TopicFor(models.ChangeCustomerPaid))
	assert.Equal(t, "e", p.TopicFor(models.ChangeEventCompleted))
	assert.Equal(t, "m", p.TopicFor(models.ChangeMenuChanged))
}

func TestPublishChange(t *testing.T) {
	ctx := context.Background()
	w := new(MockWriter)
	p := &Producer{Writer: w, Topics: topics, Logger: logger.Nop()}

	change := models.Change{Kind: models.ChangeOrderCreated, EventID: "ev1", EntityID: "o1", OccurredAt: 5}
	w.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || msgs[0].Topic != "o" || string(msgs[0].Key) != "ev1" {
			return false
		}
		var got models.Change
		return json.Unmarshal(msgs[0].Value, &got) == nil && got == change
	})).Return(nil)

	require.NoError(t, p.PublishChange(ctx, change))
	w.AssertExpectations(t)
}

func TestPublishChangeKeysMenuByEntity(t *testing.T) {
	ctx := context.Background()
	w := new(MockWriter)
	p := &Producer{Writer: w, Topics: topics, Logger: logger.Nop()}

	w.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return msgs[0].Topic == "m" && string(msgs[0].Key) == "beer"
	})).Return(errors.New("leader not available"))

	err := p.PublishChange(ctx, models.Change{Kind: models.ChangeMenuChanged, EntityID: "beer"})
	assert.ErrorContains(t, err, "leader not available")
}

func TestConsumerDeliversAndSkipsGarbage(t *testing.T) {
	good, err := json.Marshal(models.Change{Kind: models.ChangeCustomerCreated, EventID: "ev1", EntityID: "c1"})
	require.NoError(t, err)

	c := NewConsumerWithReader(&fakeReader{msgs: []kafka.Message{
		{Topic: "c", Value: []byte("{not json")},
		{Topic: "c", Value: good},
	}}, logger.Nop())

	var got []models.Change
	err = c.Start(context.Background(), func(ctx context.Context, change models.Change) error {
		got = append(got, change)
		return nil
	})
	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].EntityID)
}

func TestConsumerRetriesAfterReadError(t *testing.T) {
	good, err := json.Marshal(models.Change{Kind: models.ChangeOrderCreated, EventID: "ev1", EntityID: "o1"})
	require.NoError(t, err)

	reader := &fakeReader{
		msgs: []kafka.Message{{Topic: "o", Value: good}},
		errs: map[int]error{1: errors.New("broker not available")},
	}
	c := NewConsumerWithReader(reader, logger.Nop())
	c.RetryBackoff = time.Millisecond

	var got []models.Change
	err = c.Start(context.Background(), func(ctx context.Context, change models.Change) error {
		got = append(got, change)
		return nil
	})
	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "o1", got[0].EntityID)
	assert.Equal(t, 3, reader.reads)
}

func TestConsumerBackoffStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewConsumerWithReader(blockingReader{}, logger.Nop())
	c.RetryBackoff = 5 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, func(context.Context, models.Change) error { return nil }) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}

func TestConsumerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsumerWithReader(&fakeReader{}, logger.Nop())
	assert.NoError(t, c.Start(ctx, func(context.Context, models.Change) error { return nil }))
}
