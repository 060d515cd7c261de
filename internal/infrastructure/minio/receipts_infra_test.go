package minio

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memReceipts struct {
	mu       sync.Mutex
	objects  map[string]*domain.Receipt
	failures int
}

func (m *memReceipts) Upload(_ context.Context, receipt *domain.Receipt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failures > 0 {
		m.failures--
		return "", errors.New("minio unavailable")
	}
	m.objects[receipt.ObjectKey] = receipt
	return receipt.ObjectKey, nil
}

func (m *memReceipts) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memReceipts) PresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "http://minio.local/order-receipts/" + key, nil
}

func testOrder() *domain.Order {
	lines := []domain.OrderLine{{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.RequireFromString("10")}}
	return domain.NewOrder(uuid.New(), lines, domain.ShippingAddress{
		Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62701", Country: "US",
	}, time.Now())
}

func newInfra(repo *memReceipts) *ReceiptsInfrastructure {
	infra := NewReceiptsInfrastructure(repo, &cfg.MinIOCfg{BucketName: "order-receipts", ReceiptURLTTL: time.Minute},
		logger.NewDiscardLogger(), context.Background())
	infra.backoff = time.Millisecond
	return infra
}

func TestStoreReceipt_RetriesAndStores(t *testing.T) {
	repo := &memReceipts{objects: map[string]*domain.Receipt{}, failures: 2}
	infra := newInfra(repo)
	order := testOrder()

	infra.StoreReceipt(order)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForUploads(ctx))

	key, err := receiptKey(order.ID)
	require.NoError(t, err)
	stored, ok := repo.objects[key]
	require.True(t, ok)
	assert.Equal(t, "order-receipts", stored.Bucket)
	assert.Equal(t, receiptContentType, stored.ContentType)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(stored.Data, &doc))
	assert.Equal(t, "20.00", doc["total"])
	assert.Equal(t, order.ID.String(), doc["order_id"])

	url, err := infra.ReceiptURL(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Contains(t, url, key)
}

func TestReceiptURL_NotStored(t *testing.T) {
	infra := newInfra(&memReceipts{objects: map[string]*domain.Receipt{}})

	_, err := infra.ReceiptURL(context.Background(), uuid.New())
	require.ErrorIs(t, err, e.ErrReceiptNotFound)
}
