package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

// CartUseCase управляет корзиной пользователя.
type CartUseCase struct {
	txManager   TxManager
	cartRepo    CartRepository
	productRepo ProductRepository
	logger      logger.Logger
}

func NewCartUC(txManager TxManager, cartRepo CartRepository, productRepo ProductRepository, logger logger.Logger) *CartUseCase {
	return &CartUseCase{
		txManager:   txManager,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// GetCart возвращает корзину пользователя, создавая её при первом обращении.
func (c *CartUseCase) GetCart(ctx context.Context, principal domain.Principal) (*domain.CartView, error) {
	const op = "CartUseCase.GetCart"

	if _, err := c.cartRepo.GetOrCreate(ctx, principal.UserID); err != nil {
		return nil, e.Wrap(op, err)
	}

	view, err := c.cartRepo.GetWithProducts(ctx, principal.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return view, nil
}

// AddItem добавляет товар в корзину. Если позиция уже есть, количества складываются.
func (c *CartUseCase) AddItem(ctx context.Context, req *AddCartItemReq) (*domain.CartView, error) {
	const op = "CartUseCase.AddItem"

	if req.Quantity <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		product, err := c.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}

		cart, err := c.cartRepo.GetOrCreate(ctx, req.Principal.UserID)
		if err != nil {
			return err
		}

		quantity := req.Quantity
		if line, ok := cart.Line(req.ProductID); ok {
			quantity += line.Quantity
		}

		if err := checkStock(product, quantity); err != nil {
			return err
		}

		return c.cartRepo.SetLine(ctx, cart.ID, domain.CartLine{ProductID: req.ProductID, Quantity: quantity})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.view(ctx, op, req.Principal.UserID)
}

// UpdateItem задаёт количество позиции. Количество 0 удаляет позицию.
func (c *CartUseCase) UpdateItem(ctx context.Context, req *UpdateCartItemReq) (*domain.CartView, error) {
	const op = "CartUseCase.UpdateItem"

	if req.Quantity < 0 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	err := c.txManager.Do(ctx, func(ctx context.Context) error {
		cart, err := c.cartRepo.GetOrCreate(ctx, req.Principal.UserID)
		if err != nil {
			return err
		}

		if _, ok := cart.Line(req.ProductID); !ok {
			return e.ErrCartItemNotFound
		}

		if req.Quantity == 0 {
			_, err := c.cartRepo.RemoveLine(ctx, cart.ID, req.ProductID)
			return err
		}

		product, err := c.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}

		if err := checkStock(product, req.Quantity); err != nil {
			return err
		}

		return c.cartRepo.SetLine(ctx, cart.ID, domain.CartLine{ProductID: req.ProductID, Quantity: req.Quantity})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.view(ctx, op, req.Principal.UserID)
}

// RemoveItem удаляет позицию из корзины.
func (c *CartUseCase) RemoveItem(ctx context.Context, principal domain.Principal, productID uuid.UUID) (*domain.CartView, error) {
	const op = "CartUseCase.RemoveItem"

	cart, err := c.cartRepo.GetOrCreate(ctx, principal.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	removed, err := c.cartRepo.RemoveLine(ctx, cart.ID, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !removed {
		return nil, e.Wrap(op, e.ErrCartItemNotFound)
	}

	return c.view(ctx, op, principal.UserID)
}

func (c *CartUseCase) view(ctx context.Context, op string, userID uuid.UUID) (*domain.CartView, error) {
	view, err := c.cartRepo.GetWithProducts(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return view, nil
}

// checkStock проверяет остаток при изменении корзины. Окончательная проверка делается при оформлении.
func checkStock(product *domain.Product, quantity int) error {
	if product.HasStock(quantity) {
		return nil
	}
	return &InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   product.Stock,
		Requested:   quantity,
	}
}
