package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/pkg/clients"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// pendingValue - ключ занят, оформление ещё не завершено.
const pendingValue = "pending"

// IdempotencyRepo хранит ключи Idempotency-Key оформления заказа.
type IdempotencyRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
}

func NewIdempotencyRepo(client *clients.RedisClient, cfg *cfg.RedisCfg) *IdempotencyRepo {
	return &IdempotencyRepo{client: client, cfg: cfg}
}

func (i *IdempotencyRepo) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := i.client.Client.SetNX(ctx, idempotencyKey(key), pendingValue, i.cfg.IdempotencyTTL).Result()
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}
	return ok, nil
}

func (i *IdempotencyRepo) Get(ctx context.Context, key string) (uuid.UUID, bool, error) {
	val, err := i.client.Client.Get(ctx, idempotencyKey(key)).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	if val == pendingValue {
		return uuid.Nil, true, nil
	}

	orderID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, e.Wrap(whereami.WhereAmI(), err)
	}
	return orderID, true, nil
}

func (i *IdempotencyRepo) Complete(ctx context.Context, key string, orderID uuid.UUID) error {
	if err := i.client.Client.Set(ctx, idempotencyKey(key), orderID.String(), i.cfg.IdempotencyTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

func (i *IdempotencyRepo) Release(ctx context.Context, key string) error {
	if err := i.client.Client.Del(ctx, idempotencyKey(key)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:checkout:%s", key)
}
