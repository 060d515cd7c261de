package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

// Результаты оформления для метрик.
const (
	checkoutSuccess           = "success"
	checkoutInvalidAddress    = "invalid_address"
	checkoutEmptyCart         = "empty_cart"
	checkoutProductMissing    = "product_missing"
	checkoutInsufficientStock = "insufficient_stock"
	checkoutInProgress        = "in_progress"
	checkoutFailed            = "failed"
)

// OrderUseCase оформляет заказы из корзины и управляет их статусами.
type OrderUseCase struct {
	txManager       TxManager
	productRepo     ProductRepository
	cartRepo        CartRepository
	orderRepo       OrderRepository
	outboxRepo      OutboxRepository
	cacheRepo       CacheRepository
	idempotencyRepo IdempotencyRepository
	receiptsInfra   ReceiptsInfra
	metrics         CheckoutMetrics
	logger          logger.Logger
	restockOnCancel bool
	now             func() time.Time
}

func NewOrderUC(
	txManager TxManager,
	productRepo ProductRepository,
	cartRepo CartRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	idempotencyRepo IdempotencyRepository,
	receiptsInfra ReceiptsInfra,
	metrics CheckoutMetrics,
	logger logger.Logger,
	restockOnCancel bool,
) *OrderUseCase {
	return &OrderUseCase{
		txManager:       txManager,
		productRepo:     productRepo,
		cartRepo:        cartRepo,
		orderRepo:       orderRepo,
		outboxRepo:      outboxRepo,
		cacheRepo:       cacheRepo,
		idempotencyRepo: idempotencyRepo,
		receiptsInfra:   receiptsInfra,
		metrics:         metrics,
		logger:          logger,
		restockOnCancel: restockOnCancel,
		now:             time.Now,
	}
}

// PlaceOrder превращает корзину пользователя в заказ.
// Списание остатков, создание заказа, очистка корзины и запись события в outbox
// выполняются в одной транзакции: либо всё, либо ничего.
func (o *OrderUseCase) PlaceOrder(ctx context.Context, req *PlaceOrderReq) (*PlaceOrderRes, error) {
	const op = "OrderUseCase.PlaceOrder"

	address := req.ShippingAddress.Normalize()
	if !address.IsComplete() {
		o.metrics.ObserveCheckout(checkoutInvalidAddress)
		return nil, e.Wrap(op, e.ErrInvalidShippingAddress)
	}

	// Ключ идемпотентности: повтор запроса возвращает уже созданный заказ
	var idemKey string
	if req.IdempotencyKey != "" {
		key := idempotencyKey(req.Principal.UserID, req.IdempotencyKey)
		res, held, err := o.reserveIdempotencyKey(ctx, req.Principal, key)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		if res != nil {
			return res, nil
		}
		if held {
			idemKey = key
		}
	}

	order, err := o.checkout(ctx, req.Principal.UserID, address)
	if err != nil {
		if idemKey != "" {
			o.releaseIdempotencyKey(idemKey)
		}
		o.metrics.ObserveCheckout(checkoutResult(err))

		if isCheckoutRejection(err) {
			return nil, e.Wrap(op, err)
		}
		return nil, e.Wrap(op, &CheckoutFailedError{Cause: err})
	}

	o.afterCheckout(ctx, order, idemKey)

	return &PlaceOrderRes{Order: order}, nil
}

// checkout выполняет транзакционную часть оформления.
func (o *OrderUseCase) checkout(ctx context.Context, userID uuid.UUID, address domain.ShippingAddress) (*domain.Order, error) {
	var order *domain.Order

	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		// Чтение корзины с блокировкой строк товаров
		cart, err := o.cartRepo.LockWithProducts(ctx, userID)
		if err != nil {
			return err
		}

		// Проверка позиций и фиксация цен
		lines, err := buildOrderLines(cart)
		if err != nil {
			return err
		}

		created, err := o.orderRepo.Create(ctx, domain.NewOrder(userID, lines, address, o.now()))
		if err != nil {
			return err
		}

		// Условное списание остатков одним батчем
		if err := o.productRepo.DecrementStock(ctx, created.StockChanges()); err != nil {
			var conflict *StockConflictError
			if errors.As(err, &conflict) {
				return o.stockConflictError(ctx, conflict.ProductID, requestedQuantity(created.Lines, conflict.ProductID))
			}
			return err
		}

		if err := o.cartRepo.Clear(ctx, userID); err != nil {
			return err
		}

		if err := o.writeEvent(ctx, OrderCreated, created); err != nil {
			return err
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// afterCheckout выполняет действия после коммита. Их ошибки не влияют на результат оформления.
func (o *OrderUseCase) afterCheckout(ctx context.Context, order *domain.Order, idemKey string) {
	const op = "OrderUseCase.afterCheckout"

	productIDs := make([]uuid.UUID, 0, len(order.Lines))
	for _, line := range order.Lines {
		productIDs = append(productIDs, line.ProductID)
	}

	// Остатки изменились: удаляем устаревшие записи из кэша
	if err := o.cacheRepo.DeleteProducts(context.WithoutCancel(ctx), productIDs); err != nil {
		o.logger.Warnf("Failed to invalidate products cache after checkout: %v", e.Wrap(op, err))
	}

	if idemKey != "" {
		if err := o.idempotencyRepo.Complete(context.WithoutCancel(ctx), idemKey, order.ID); err != nil {
			o.logger.Warnf("Failed to complete idempotency key: %v", e.Wrap(op, err))
		}
	}

	o.receiptsInfra.StoreReceipt(order)
	o.metrics.ObserveCheckout(checkoutSuccess)

	o.logger.Infof(
		"order placed. order_id: %s, user_id: %s, lines: %d, total: %s",
		order.ID, order.UserID, len(order.Lines), order.TotalAmount.StringFixed(2),
	)
}

// reserveIdempotencyKey занимает ключ или возвращает ранее созданный заказ.
// held = false означает, что оформление идёт без защиты ключом (Redis недоступен).
func (o *OrderUseCase) reserveIdempotencyKey(
	ctx context.Context,
	principal domain.Principal,
	key string,
) (res *PlaceOrderRes, held bool, err error) {
	const op = "OrderUseCase.reserveIdempotencyKey"

	reserved, err := o.idempotencyRepo.Reserve(ctx, key)
	if err != nil {
		o.logger.Warnf("Idempotency store unavailable, checkout proceeds without key: %v", e.Wrap(op, err))
		return nil, false, nil
	}
	if reserved {
		return nil, true, nil
	}

	orderID, ok, err := o.idempotencyRepo.Get(ctx, key)
	if err != nil {
		o.logger.Warnf("Idempotency store unavailable, checkout proceeds without key: %v", e.Wrap(op, err))
		return nil, false, nil
	}
	if !ok {
		// Ключ истёк между Reserve и Get: пробуем занять ещё раз
		reserved, err = o.idempotencyRepo.Reserve(ctx, key)
		if err != nil {
			o.logger.Warnf("Idempotency store unavailable, checkout proceeds without key: %v", e.Wrap(op, err))
			return nil, false, nil
		}
		if !reserved {
			o.metrics.ObserveCheckout(checkoutInProgress)
			return nil, false, e.ErrCheckoutInProgress
		}
		return nil, true, nil
	}
	if orderID == uuid.Nil {
		o.metrics.ObserveCheckout(checkoutInProgress)
		return nil, false, e.ErrCheckoutInProgress
	}

	view, err := o.GetOrder(ctx, principal, orderID)
	if err != nil {
		return nil, false, err
	}

	o.metrics.ObserveIdempotentReplay()
	order := view.Order
	return &PlaceOrderRes{Order: &order, Replayed: true}, false, nil
}

func (o *OrderUseCase) releaseIdempotencyKey(key string) {
	const op = "OrderUseCase.releaseIdempotencyKey"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := o.idempotencyRepo.Release(ctx, key); err != nil {
		o.logger.Warnf("Failed to release idempotency key: %v", e.Wrap(op, err))
	}
}

// ListOrders возвращает заказы субъекта, новые первыми.
func (o *OrderUseCase) ListOrders(ctx context.Context, principal domain.Principal) ([]domain.OrderView, error) {
	const op = "OrderUseCase.ListOrders"

	orders, err := o.orderRepo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// GetOrder возвращает заказ владельцу или администратору.
func (o *OrderUseCase) GetOrder(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (*domain.OrderView, error) {
	const op = "OrderUseCase.GetOrder"

	view, err := o.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !principal.CanAccess(view.UserID) {
		return nil, e.Wrap(op, e.ErrForbidden)
	}

	return view, nil
}

// SetOrderStatus меняет статус заказа. Доступно только администратору.
func (o *OrderUseCase) SetOrderStatus(ctx context.Context, req *SetOrderStatusReq) (*domain.Order, error) {
	const op = "OrderUseCase.SetOrderStatus"

	if !domain.HasRole([]domain.Role{domain.RoleAdmin}, req.Principal.Role) {
		return nil, e.Wrap(op, e.ErrForbidden)
	}

	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		return nil, e.Wrap(op, e.ErrInvalidStatus)
	}

	var updated *domain.Order
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := o.orderRepo.LockByID(ctx, req.OrderID)
		if err != nil {
			return err
		}

		if o.restockOnCancel {
			if err := o.adjustStock(ctx, current, status); err != nil {
				return err
			}
		}

		updated, err = o.orderRepo.UpdateStatus(ctx, req.OrderID, status)
		if err != nil {
			return err
		}

		if current.Status == status {
			return nil
		}
		return o.writeEvent(ctx, OrderStatusChanged, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.logger.Infof("order status changed. order_id: %s, status: %s", updated.ID, updated.Status)
	return updated, nil
}

// adjustStock возвращает остатки при отмене заказа и списывает их снова, если отмену откатили.
func (o *OrderUseCase) adjustStock(ctx context.Context, current *domain.Order, next domain.OrderStatus) error {
	wasCancelled := current.Status == domain.OrderStatusCancelled
	isCancelled := next == domain.OrderStatusCancelled

	switch {
	case !wasCancelled && isCancelled:
		return o.productRepo.IncrementStock(ctx, current.StockChanges())
	case wasCancelled && !isCancelled:
		err := o.productRepo.DecrementStock(ctx, current.StockChanges())
		var conflict *StockConflictError
		if errors.As(err, &conflict) {
			return o.stockConflictError(ctx, conflict.ProductID, requestedQuantity(current.Lines, conflict.ProductID))
		}
		return err
	default:
		return nil
	}
}

// GetReceiptURL возвращает временную ссылку на квитанцию заказа.
func (o *OrderUseCase) GetReceiptURL(ctx context.Context, principal domain.Principal, orderID uuid.UUID) (string, error) {
	const op = "OrderUseCase.GetReceiptURL"

	if _, err := o.GetOrder(ctx, principal, orderID); err != nil {
		return "", e.Wrap(op, err)
	}

	url, err := o.receiptsInfra.ReceiptURL(ctx, orderID)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return url, nil
}

// stockConflictError перечитывает товар после неудачного списания и описывает нехватку.
func (o *OrderUseCase) stockConflictError(ctx context.Context, productID uuid.UUID, requested int) error {
	product, err := o.productRepo.GetByID(ctx, productID)
	if errors.Is(err, e.ErrProductMissing) {
		return &ProductMissingError{ProductID: productID}
	}
	if err != nil {
		return err
	}

	return &InsufficientStockError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   product.Stock,
		Requested:   requested,
	}
}

func (o *OrderUseCase) writeEvent(ctx context.Context, eventType OutboxEventType, order *domain.Order) error {
	event, err := NewOutboxEvent(eventType, order, o.now())
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, event)
	return err
}

// buildOrderLines проверяет позиции корзины в порядке их хранения и фиксирует цены.
// Первая найденная проблема прерывает проверку.
func buildOrderLines(cart *domain.CartView) ([]domain.OrderLine, error) {
	if cart.IsEmpty() {
		return nil, e.ErrEmptyCart
	}

	requested := make(map[uuid.UUID]int, len(cart.Lines))
	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.Product == nil {
			return nil, &ProductMissingError{ProductID: line.ProductID}
		}

		requested[line.ProductID] += line.Quantity
		if !line.Product.HasStock(requested[line.ProductID]) {
			return nil, &InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Available:   line.Product.Stock,
				Requested:   requested[line.ProductID],
			}
		}

		lines = append(lines, domain.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.Price,
		})
	}

	return lines, nil
}

func requestedQuantity(lines []domain.OrderLine, productID uuid.UUID) int {
	total := 0
	for _, line := range lines {
		if line.ProductID == productID {
			total += line.Quantity
		}
	}
	return total
}

// isCheckoutRejection отличает отказ по бизнес-правилам от сбоя хранилища.
func isCheckoutRejection(err error) bool {
	return errors.Is(err, e.ErrEmptyCart) ||
		errors.Is(err, e.ErrProductMissing) ||
		errors.Is(err, e.ErrInsufficientStock)
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, e.ErrEmptyCart):
		return checkoutEmptyCart
	case errors.Is(err, e.ErrProductMissing):
		return checkoutProductMissing
	case errors.Is(err, e.ErrInsufficientStock):
		return checkoutInsufficientStock
	default:
		return checkoutFailed
	}
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("%s:%s", userID, key)
}
