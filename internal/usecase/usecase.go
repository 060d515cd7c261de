package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/google/uuid"
)

type OrderUC interface {
	PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*PlaceOrderRes, error)
	ListOrders(ctx context.Context, principal domain.Principal) ([]domain.OrderView, error)
	GetOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*domain.OrderView, error)
	SetOrderStatus(ctx context.Context, req *SetOrderStatusReq) (*domain.Order, error)
	GetReceiptURL(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (string, error)
}

type CartUC interface {
	GetCart(ctx context.Context, principal domain.Principal) (*domain.CartView, error)
	AddItem(ctx context.Context, req *AddCartItemReq) (*domain.CartView, error)
	UpdateItem(ctx context.Context, req *UpdateCartItemReq) (*domain.CartView, error)
	RemoveItem(ctx context.Context, principal domain.Principal, productID uuid.UUID) (*domain.CartView, error)
}

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)
}

type AuthUC interface {
	Register(ctx context.Context, req *RegisterReq) (*domain.User, error)
	Login(ctx context.Context, req *LoginReq) (*LoginRes, error)
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}
