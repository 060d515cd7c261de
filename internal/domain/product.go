package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product описывает товар каталога
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal // Цена в основной валюте, не более двух знаков после запятой
	Stock       int             // Остаток на складе, никогда не отрицательный
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(name string, description string, price decimal.Decimal, stock int) *Product {
	return &Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
	}
}

// HasStock сообщает, хватает ли остатка на quantity единиц.
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// StockChange - изменение остатка одного товара на Quantity единиц.
type StockChange struct {
	ProductID uuid.UUID
	Quantity  int
}
