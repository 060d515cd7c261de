package http

import (
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// REQUESTS

type AddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// PlaceOrderRequest - адрес проверяется в use case, чтобы ответ был ErrInvalidShippingAddress
type PlaceOrderRequest struct {
	ShippingAddress AddressDTO `json:"shipping_address"`
}

type SetOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"10.00"`
	Stock       int             `json:"stock"`
}

type CredentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RESPONSES

type ProductResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       string     `json:"price"`
	Stock       int        `json:"stock"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type ProductInfoResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
	Stock int       `json:"stock"`
}

type ProductsInfoResponse struct {
	Products []ProductInfoResponse `json:"products"`
	NotFound []uuid.UUID           `json:"not_found"`
}

type CartItemResponse struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product"` // null, если товар удалён из каталога
}

type CartResponse struct {
	ID    uuid.UUID          `json:"id"`
	Items []CartItemResponse `json:"items"`
}

type OrderLineResponse struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice string           `json:"unit_price"`
	Subtotal  string           `json:"subtotal"`
	Product   *ProductResponse `json:"product,omitempty"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          string              `json:"status"`
	TotalAmount     string              `json:"total_amount"`
	ShippingAddress AddressDTO          `json:"shipping_address"`
	Lines           []OrderLineResponse `json:"lines"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       *time.Time          `json:"updated_at,omitempty"`
}

type PlaceOrderResponse struct {
	Order OrderResponse `json:"order"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ReceiptResponse struct {
	URL string `json:"url"`
}

// MAPPERS

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (a AddressDTO) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
	}
}

func toAddressDTO(a domain.ShippingAddress) AddressDTO {
	return AddressDTO{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
	}
}

func toProductResponse(p *domain.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductsInfoResponse(res *usecase.GetProductsRes) ProductsInfoResponse {
	out := ProductsInfoResponse{
		Products: make([]ProductInfoResponse, 0, len(res.Products)),
		NotFound: res.NotFoundProducts,
	}
	if out.NotFound == nil {
		out.NotFound = []uuid.UUID{}
	}
	for _, p := range res.Products {
		out.Products = append(out.Products, ProductInfoResponse{
			ID:    p.ID,
			Name:  p.Name,
			Price: money(p.Price),
			Stock: p.Stock,
		})
	}
	return out
}

func toCartResponse(v *domain.CartView) CartResponse {
	out := CartResponse{ID: v.CartID, Items: make([]CartItemResponse, 0, len(v.Lines))}
	for _, line := range v.Lines {
		out.Items = append(out.Items, CartItemResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Product:   toProductResponse(line.Product),
		})
	}
	return out
}

func toOrderResponse(o *domain.Order, products map[uuid.UUID]*domain.Product) OrderResponse {
	out := OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalAmount:     money(o.TotalAmount),
		ShippingAddress: toAddressDTO(o.ShippingAddress),
		Lines:           make([]OrderLineResponse, 0, len(o.Lines)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, line := range o.Lines {
		out.Lines = append(out.Lines, OrderLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: money(line.UnitPrice),
			Subtotal:  money(line.Subtotal()),
			Product:   toProductResponse(products[line.ProductID]),
		})
	}
	return out
}

func toOrderViewResponse(v *domain.OrderView) OrderResponse {
	return toOrderResponse(&v.Order, v.Products)
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}
