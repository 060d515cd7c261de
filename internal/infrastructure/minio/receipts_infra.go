package minio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/infrastructure"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/jitter"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	receiptContentType = "application/json"
	uploadAttempts     = 3
	uploadTimeout      = 30 * time.Second
	maxParallelUploads = 4
)

// ReceiptsInfrastructure сохраняет квитанции заказов в MinIO в фоне и выдаёт ссылки на них.
type ReceiptsInfrastructure struct {
	receiptRepo usecase.ReceiptRepository
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	sem         chan struct{}
	backoff     time.Duration
}

func NewReceiptsInfrastructure(
	receiptRepo usecase.ReceiptRepository,
	cfg *cfg.MinIOCfg,
	logger logger.Logger,
	shutdownCtx context.Context,
) *ReceiptsInfrastructure {
	return &ReceiptsInfrastructure{
		receiptRepo: receiptRepo,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		sem:         make(chan struct{}, maxParallelUploads),
		backoff:     time.Second,
	}
}

// StoreReceipt запускает фоновую загрузку квитанции. Заказ уже зафиксирован, поэтому ошибки только логируются.
func (m *ReceiptsInfrastructure) StoreReceipt(order *domain.Order) {
	m.wg.Add(1)
	go m.uploadReceipt(order)
}

// ReceiptURL возвращает presigned-ссылку на квитанцию заказа.
func (m *ReceiptsInfrastructure) ReceiptURL(ctx context.Context, orderID uuid.UUID) (string, error) {
	const op = "ReceiptsInfrastructure.ReceiptURL"

	key, err := receiptKey(orderID)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	exists, err := m.receiptRepo.Exists(ctx, key)
	if err != nil {
		return "", e.Wrap(op, err)
	}
	if !exists {
		return "", e.Wrap(op, e.ErrReceiptNotFound)
	}

	url, err := m.receiptRepo.PresignedURL(ctx, key, m.cfg.ReceiptURLTTL)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return url, nil
}

// uploadReceipt загружает квитанцию с экспоненциальной задержкой и jitter между попытками.
func (m *ReceiptsInfrastructure) uploadReceipt(order *domain.Order) {
	defer m.wg.Done()
	const op = "ReceiptsInfrastructure.uploadReceipt"

	// Ограничение одновременных загрузок
	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-m.shutdownCtx.Done():
		m.logger.Warnf("receipt upload skipped by shutdown, order_id=%s", order.ID)
		return
	}

	receipt, err := m.buildReceipt(order)
	if err != nil {
		m.logger.Errorf(err, "%s: failed to build receipt, order_id=%s", op, order.ID)
		return
	}

	ctx, cancel := context.WithTimeout(m.shutdownCtx, uploadTimeout)
	defer cancel()

	for attempt := 0; attempt < uploadAttempts; attempt++ {
		_, err = m.receiptRepo.Upload(ctx, receipt)
		if err == nil {
			m.logger.Debugf("receipt stored, key=%s", receipt.ObjectKey)
			return
		}

		if attempt == uploadAttempts-1 {
			break
		}

		if sleepErr := jitter.Sleep(ctx, jitter.ExponentialBackoff(m.backoff, 8*m.backoff, attempt, jitter.DefaultJitter)); sleepErr != nil {
			m.logger.Warnf("receipt upload interrupted by shutdown, order_id=%s", order.ID)
			return
		}
	}

	m.logger.Errorf(err, "%s: receipt upload failed, order_id=%s", op, order.ID)
}

func (m *ReceiptsInfrastructure) buildReceipt(order *domain.Order) (*domain.Receipt, error) {
	key, err := receiptKey(order.ID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(newReceiptDocument(order))
	if err != nil {
		return nil, err
	}

	return domain.NewReceipt(m.cfg.BucketName, key, data, receiptContentType), nil
}

// WaitForUploads ожидает завершения фоновых загрузок с учётом таймаута завершения приложения.
func (m *ReceiptsInfrastructure) WaitForUploads(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("receipt uploads timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

func receiptKey(orderID uuid.UUID) (string, error) {
	ext, err := infrastructure.GetExtensionFromMIME(receiptContentType)
	if err != nil {
		return "", errors.Join(err, fmt.Errorf("receipt content type %s", receiptContentType))
	}
	return fmt.Sprintf("receipts/%s.%s", orderID, ext), nil
}

type receiptDocument struct {
	OrderID         uuid.UUID          `json:"order_id"`
	UserID          uuid.UUID          `json:"user_id"`
	Status          domain.OrderStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	ShippingAddress receiptAddress     `json:"shipping_address"`
	Lines           []receiptLine      `json:"lines"`
	Total           string             `json:"total"`
}

type receiptAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type receiptLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Subtotal  string    `json:"subtotal"`
}

func newReceiptDocument(order *domain.Order) receiptDocument {
	doc := receiptDocument{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt.UTC(),
		ShippingAddress: receiptAddress{
			Street:  order.ShippingAddress.Street,
			City:    order.ShippingAddress.City,
			State:   order.ShippingAddress.State,
			Zip:     order.ShippingAddress.Zip,
			Country: order.ShippingAddress.Country,
		},
		Lines: make([]receiptLine, 0, len(order.Lines)),
		Total: money(order.TotalAmount),
	}
	for _, line := range order.Lines {
		doc.Lines = append(doc.Lines, receiptLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: money(line.UnitPrice),
			Subtotal:  money(line.Subtotal()),
		})
	}
	return doc
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
