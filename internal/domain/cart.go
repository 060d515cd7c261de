package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart - корзина пользователя. У каждого пользователя ровно одна корзина.
type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine - позиция корзины: ссылка на товар и количество (> 0).
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		ID:     uuid.New(),
		UserID: userID,
	}
}

// Line возвращает позицию корзины по товару.
func (c *Cart) Line(productID uuid.UUID) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

// CartView - корзина с подставленными актуальными данными товаров.
type CartView struct {
	CartID    uuid.UUID
	UserID    uuid.UUID
	Lines     []CartLineView
	UpdatedAt time.Time
}

// CartLineView - позиция корзины с товаром. Product == nil, если товар удалён из каталога.
type CartLineView struct {
	ProductID uuid.UUID
	Quantity  int
	Product   *Product
}

func (v *CartView) IsEmpty() bool {
	return v == nil || len(v.Lines) == 0
}
