package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/google/uuid"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	GetProductsInfo(ctx context.Context, ids []uuid.UUID) ([]ProductInfo, error)
	// DecrementStock списывает остатки одним батчем. Если остатка не хватает, возвращает *StockConflictError.
	DecrementStock(ctx context.Context, changes []domain.StockChange) error
	IncrementStock(ctx context.Context, changes []domain.StockChange) error
}

type CartRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	GetWithProducts(ctx context.Context, userID uuid.UUID) (*domain.CartView, error)
	// LockWithProducts читает корзину и блокирует строки товаров до конца транзакции.
	// Если корзины нет, возвращает nil без ошибки.
	LockWithProducts(ctx context.Context, userID uuid.UUID) (*domain.CartView, error)
	SetLine(ctx context.Context, cartID uuid.UUID, line domain.CartLine) error
	RemoveLine(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.OrderView, error)
	LockByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ProductInfo, error)
	SetProducts(ctx context.Context, products []ProductInfo) error
	DeleteProducts(ctx context.Context, ids []uuid.UUID) error
}

// IdempotencyRepository хранит ключи идемпотентности оформления заказа.
type IdempotencyRepository interface {
	// Reserve помечает ключ как занятый. false, если ключ уже существует.
	Reserve(ctx context.Context, key string) (bool, error)
	// Get возвращает ID заказа по ключу; ok = false, если ключа нет; uuid.Nil, если оформление ещё идёт.
	Get(ctx context.Context, key string) (orderID uuid.UUID, ok bool, err error)
	Complete(ctx context.Context, key string, orderID uuid.UUID) error
	Release(ctx context.Context, key string) error
}

type ReceiptRepository interface {
	Upload(ctx context.Context, receipt *domain.Receipt) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
