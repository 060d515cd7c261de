package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus разбирает статус заказа; допустимы только pending, completed и cancelled.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// Order - неизменяемая запись о покупке. После создания меняется только Status.
type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Lines           []OrderLine
	TotalAmount     decimal.Decimal // Сумма quantity*unit_price по позициям, фиксируется при создании
	Status          OrderStatus
	ShippingAddress ShippingAddress
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// OrderLine - позиция заказа с ценой, зафиксированной в момент оформления.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CalcTotal возвращает точную сумму позиций без округления.
func CalcTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// NewOrder создаёт заказ в статусе pending и считает итоговую сумму.
func NewOrder(userID uuid.UUID, lines []OrderLine, address ShippingAddress, now time.Time) *Order {
	return &Order{
		ID:              uuid.New(),
		UserID:          userID,
		Lines:           lines,
		TotalAmount:     CalcTotal(lines),
		Status:          OrderStatusPending,
		ShippingAddress: address,
		CreatedAt:       now,
	}
}

// StockChanges возвращает списания остатков для всех позиций заказа.
func (o *Order) StockChanges() []StockChange {
	changes := make([]StockChange, 0, len(o.Lines))
	for _, line := range o.Lines {
		changes = append(changes, StockChange{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return changes
}

// OrderView - заказ с подставленными данными товаров. Product == nil, если товар удалён.
type OrderView struct {
	Order
	Products map[uuid.UUID]*Product
}

// Product возвращает товар позиции или nil, если он удалён из каталога.
func (v *OrderView) Product(id uuid.UUID) *Product {
	return v.Products[id]
}
