package converter

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInfoRedisModel - JSON-представление товара в кэше. Цена хранится строкой без потери точности.
type ProductInfoRedisModel struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}
