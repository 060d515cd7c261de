package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")
	ErrStockConflict       = fmt.Errorf("stock changed concurrently")

	// Ошибки хранилища квитанций
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest       = fmt.Errorf("bad request")
	ErrMissingFields          = fmt.Errorf("missing required fields")
	ErrInvalidPrice           = fmt.Errorf("invalid price")
	ErrPricePrecision         = fmt.Errorf("price must have at most 2 decimal places")
	ErrProductNameRequired    = fmt.Errorf("product name is required")
	ErrInvalidStock           = fmt.Errorf("stock must not be negative")
	ErrInvalidQuantity        = fmt.Errorf("quantity must be positive")
	ErrEmptyCart              = fmt.Errorf("cart is empty")
	ErrInsufficientStock      = fmt.Errorf("insufficient stock")
	ErrInvalidShippingAddress = fmt.Errorf("shipping address is incomplete")
	ErrInvalidStatus          = fmt.Errorf("invalid order status")
	ErrInvalidID              = fmt.Errorf("invalid identifier")
	ErrInvalidCredentials     = fmt.Errorf("invalid credentials")
	ErrInvalidRole            = fmt.Errorf("invalid role")
	ErrUserAlreadyExists      = fmt.Errorf("user with this username already exists")

	// 401 Unauthorized
	ErrUnauthorized = fmt.Errorf("unauthorized")

	// 403 Forbidden
	ErrForbidden = fmt.Errorf("access denied")

	// 404 Not Found
	ErrProductMissing   = fmt.Errorf("product not found")
	ErrOrderNotFound    = fmt.Errorf("order not found")
	ErrCartItemNotFound = fmt.Errorf("item not found in cart")
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrReceiptNotFound  = fmt.Errorf("receipt not found")

	// 409 Conflict
	ErrCheckoutInProgress = fmt.Errorf("checkout with this idempotency key is in progress")

	// 500 Internal Server Error
	ErrCheckoutFailed      = fmt.Errorf("checkout failed")
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
