package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOutbox struct {
	mu        sync.Mutex
	pending   []*usecase.OutboxEvent
	inFlight  map[int64]*usecase.OutboxEvent
	processed []int64
	released  []int64
}

func newMemOutbox(n int) *memOutbox {
	m := &memOutbox{inFlight: map[int64]*usecase.OutboxEvent{}}
	for i := 1; i <= n; i++ {
		m.pending = append(m.pending, &usecase.OutboxEvent{
			ID:          int64(i),
			EventID:     uuid.New(),
			EventType:   usecase.OrderCreated,
			AggregateID: uuid.New(),
			Payload:     []byte(`{}`),
			Status:      usecase.Pending,
		})
	}
	return m
}

func (m *memOutbox) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, event)
	return event, nil
}

func (m *memOutbox) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := min(limit, len(m.pending))
	batch := m.pending[:n]
	m.pending = m.pending[n:]
	for _, ev := range batch {
		m.inFlight[ev.ID] = ev
	}
	return batch, nil
}

func (m *memOutbox) MarkAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, id)
	m.processed = append(m.processed, id)
	return nil
}

func (m *memOutbox) Release(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := m.inFlight[id]
	delete(m.inFlight, id)
	m.pending = append(m.pending, ev)
	m.released = append(m.released, id)
	return nil
}

type memProducer struct {
	mu       sync.Mutex
	sent     []*usecase.WriteRawMessageReq
	failFrom int
}

func (p *memProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFrom > 0 && len(p.sent)+1 >= p.failFrom {
		return errors.New("dial tcp: connection refused")
	}
	p.sent = append(p.sent, req)
	return nil
}

func TestDrain_DeliversAllBatches(t *testing.T) {
	repo := newMemOutbox(5)
	producer := &memProducer{}
	w := NewOutboxWorker(repo, logger.NewDiscardLogger(), producer, "", "outbox_pending", 2)

	w.drain(context.Background())

	assert.Len(t, producer.sent, 5)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, repo.processed)
	assert.Empty(t, repo.pending)

	first := producer.sent[0]
	assert.Equal(t, "order.created", first.Headers["event_type"])
	assert.NotEmpty(t, first.Key)
}

func TestDrain_ReleasesOnSendFailure(t *testing.T) {
	repo := newMemOutbox(3)
	producer := &memProducer{failFrom: 2}
	w := NewOutboxWorker(repo, logger.NewDiscardLogger(), producer, "", "outbox_pending", 10)

	hasMore, err := w.processBatch(context.Background())
	require.Error(t, err)
	assert.False(t, hasMore)

	assert.Equal(t, []int64{1}, repo.processed)
	assert.ElementsMatch(t, []int64{2, 3}, repo.released)
	assert.Empty(t, repo.inFlight)
	assert.Len(t, repo.pending, 2)
}

func TestToMessage_HeadersSorted(t *testing.T) {
	req := usecase.NewWriteRawMessageReq("order-1", []byte("x"))
	req.Headers = map[string]string{"event_type": "order.created", "event_id": "e1"}

	msg := toMessage(req)
	assert.Equal(t, []byte("order-1"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_id", msg.Headers[0].Key)
	assert.Equal(t, "event_type", msg.Headers[1].Key)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("read: connection reset by peer")))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}
