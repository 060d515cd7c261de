package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/google/uuid"
)

// TxManager выполняет fn в одной транзакции; репозитории берут её из ctx.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type ReceiptsInfra interface {
	// StoreReceipt асинхронно сохраняет квитанцию заказа.
	StoreReceipt(order *domain.Order)
	ReceiptURL(ctx context.Context, orderID uuid.UUID) (string, error)
}

type TokenManager interface {
	Issue(principal domain.Principal) (string, time.Time, error)
	Parse(token string) (domain.Principal, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type CheckoutMetrics interface {
	ObserveCheckout(result string)
	ObserveIdempotentReplay()
}
