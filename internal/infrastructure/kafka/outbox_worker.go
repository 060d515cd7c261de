package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/jitter"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	// Без уведомлений outbox всё равно опрашивается с этим периодом
	pollInterval     = 30 * time.Second
	reconnectBackoff = time.Second
	maxReconnectWait = 30 * time.Second
	releaseTimeout   = 5 * time.Second
)

// OutboxWorker доставляет события из таблицы outbox в Kafka.
// Просыпается по NOTIFY, а при его отсутствии опрашивает таблицу по таймеру.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	dbConnStr string
	channel   string
	batchSize int
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
	channel string,
	batchSize int,
) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = 10
	}

	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
		channel:   channel,
		batchSize: batchSize,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		<-w.stop
		cancel()
	}()

	go func() {
		defer w.wg.Done()

		// Обрабатываем "остатки" при старте
		w.logger.Infof("draining pending outbox events on startup")
		w.drain(ctx)

		w.listen(ctx)
		w.logger.Infof("outbox worker stopped")
	}()
}

func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *OutboxWorker) listen(ctx context.Context) {
	var (
		conn    *pgx.Conn
		attempt int
	)
	defer func() {
		if conn != nil {
			conn.Close(context.Background())
		}
	}()

	for ctx.Err() == nil {
		if conn == nil {
			var err error
			conn, err = w.connect(ctx)
			if err != nil {
				w.logger.Warnf("outbox listener connect failed: %v", err)
				// Пока LISTEN недоступен, работаем опросом
				w.drain(ctx)
				if jitter.Sleep(ctx, jitter.ExponentialBackoff(reconnectBackoff, maxReconnectWait, attempt, jitter.DefaultJitter)) != nil {
					return
				}
				attempt++
				continue
			}
			attempt = 0
		}

		waitCtx, cancel := context.WithTimeout(ctx, pollInterval)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		switch {
		case err == nil:
			if notif.Channel == w.channel {
				w.logger.Debugf("received outbox notification, draining outbox events")
				w.drain(ctx)
			}
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			w.drain(ctx)
		case ctx.Err() != nil:
			return
		default:
			w.logger.Warnf("outbox listener connection lost: %v, reconnecting", err)
			conn.Close(context.Background())
			conn = nil
		}
	}
}

func (w *OutboxWorker) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err = conn.Exec(ctx, "LISTEN "+pgx.Identifier{w.channel}.Sanitize()); err != nil {
		conn.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	w.logger.Infof("subscribed to '%s' channel", w.channel)
	return conn, nil
}

// drain обрабатывает пачки, пока они не закончатся или пока отправка не начнёт падать.
func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("outbox batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch возвращает true, если пачка была полной и, возможно, остались ещё события.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	for i, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			// Kafka недоступна: возвращаем в очередь текущее и оставшиеся события
			for _, rest := range events[i:] {
				w.release(rest)
			}
			return false, err
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed, event_id=%s: %v", event.EventID, err)
		}
	}

	return len(events) == w.batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	req := usecase.NewWriteRawMessageReq(event.AggregateID.String(), event.Payload)
	req.Headers = map[string]string{
		"event_id":   event.EventID.String(),
		"event_type": string(event.EventType),
	}

	if err := w.producer.WriteRawMessage(ctx, req); err != nil {
		if isRetryableError(err) {
			return e.Wrap("temporary kafka failure, will retry", err)
		}
		return e.Wrap("kafka failure", err)
	}
	return nil
}

func (w *OutboxWorker) release(event *usecase.OutboxEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := w.repo.Release(ctx, event.ID); err != nil {
		w.logger.Warnf("release outbox event failed, event_id=%s: %v", event.EventID, err)
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
