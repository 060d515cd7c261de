package usecase

import (
	"fmt"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/google/uuid"
)

// InsufficientStockError - на складе меньше единиц товара, чем запрошено.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (err *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", err.ProductName, err.Available, err.Requested)
}

func (err *InsufficientStockError) Unwrap() error {
	return e.ErrInsufficientStock
}

// ProductMissingError - товар из корзины удалён из каталога.
type ProductMissingError struct {
	ProductID uuid.UUID
}

func (err *ProductMissingError) Error() string {
	return fmt.Sprintf("product %s not found", err.ProductID)
}

func (err *ProductMissingError) Unwrap() error {
	return e.ErrProductMissing
}

// StockConflictError возвращается репозиторием, если условное списание остатка не затронуло строку.
type StockConflictError struct {
	ProductID uuid.UUID
}

func (err *StockConflictError) Error() string {
	return fmt.Sprintf("stock of product %s changed concurrently", err.ProductID)
}

func (err *StockConflictError) Unwrap() error {
	return e.ErrStockConflict
}

// CheckoutFailedError - сбой хранилища во время оформления; транзакция откатена.
type CheckoutFailedError struct {
	Cause error
}

func (err *CheckoutFailedError) Error() string {
	return fmt.Sprintf("%s: %v", e.ErrCheckoutFailed, err.Cause)
}

func (err *CheckoutFailedError) Unwrap() []error {
	return []error{e.ErrCheckoutFailed, err.Cause}
}
