package usecase

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ORDER USECASE

// PlaceOrderReq - запрос на оформление заказа из корзины пользователя.
type PlaceOrderReq struct {
	Principal       domain.Principal
	ShippingAddress domain.ShippingAddress
	IdempotencyKey  string // значение заголовка Idempotency-Key, может быть пустым
}

// PlaceOrderRes - результат оформления. Replayed = true, если заказ возвращён по ключу идемпотентности.
type PlaceOrderRes struct {
	Order    *domain.Order
	Replayed bool
}

type SetOrderStatusReq struct {
	Principal domain.Principal
	OrderID   uuid.UUID
	Status    string
}

// CART USECASE

type AddCartItemReq struct {
	Principal domain.Principal
	ProductID uuid.UUID
	Quantity  int
}

// UpdateCartItemReq задаёт новое количество позиции; 0 удаляет позицию.
type UpdateCartItemReq struct {
	Principal domain.Principal
	ProductID uuid.UUID
	Quantity  int
}

// PRODUCT USECASE

type CreateProductReq struct {
	Principal   domain.Principal
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// GetProductsReq запрос информации о продуктах по их идентификаторам.
type GetProductsReq struct {
	IDs []uuid.UUID
}

// GetProductsRes - ответ с данными запрошенных продуктов.
type GetProductsRes struct {
	Products         []ProductInfo
	NotFoundProducts []uuid.UUID
}

// ProductInfo - DTO с краткой информацией о продукте (кэшируется в Redis).
type ProductInfo struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
	Stock int
}

// AUTH USECASE

type RegisterReq struct {
	Username string
	Password string
}

type LoginReq struct {
	Username string
	Password string
}

type LoginRes struct {
	Token     string
	ExpiresAt time.Time
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	OrderCreated       OutboxEventType = "order.created"
	OrderStatusChanged OutboxEventType = "order.status_changed"
)

// OutboxEvent - событие, записанное в одной транзакции с изменением заказа.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	EventType   OutboxEventType
	AggregateID uuid.UUID
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderEventPayload - тело событий о заказе в Kafka.
type OrderEventPayload struct {
	EventID     uuid.UUID          `json:"event_id"`
	EventType   OutboxEventType    `json:"event_type"`
	OrderID     uuid.UUID          `json:"order_id"`
	UserID      uuid.UUID          `json:"user_id"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Items       []OrderEventItem   `json:"items"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

type OrderEventItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// INFRASTRUCTURE

// WriteRawMessageReq - готовое сообщение для брокера.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
	Headers map[string]string
}

// MAPPERS

func NewOutboxEvent(eventType OutboxEventType, order *domain.Order, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.New()
	payload := OrderEventPayload{
		EventID:     eventID,
		EventType:   eventType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       make([]OrderEventItem, 0, len(order.Lines)),
		OccurredAt:  now.UTC(),
	}
	for _, line := range order.Lines {
		payload.Items = append(payload.Items, OrderEventItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: order.ID,
		Payload:     data,
		Status:      Pending,
		CreatedAt:   now.UTC(),
	}, nil
}

func NewProductInfo(product *domain.Product) ProductInfo {
	return ProductInfo{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
	}
}

func NewGetProductsRes(pr []ProductInfo, notFoundProducts []uuid.UUID) *GetProductsRes {
	return &GetProductsRes{
		Products:         pr,
		NotFoundProducts: notFoundProducts,
	}
}

func NewGetProductsReq(ids []uuid.UUID) *GetProductsReq {
	return &GetProductsReq{IDs: ids}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}
