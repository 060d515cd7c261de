package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const orderColumns = `id, user_id, status, total_amount,
	shipping_street, shipping_city, shipping_state, shipping_zip, shipping_country,
	created_at, updated_at`

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
type OrderRepo struct {
	pool        *pgxpool.Pool
	conv        converter.OrderConverter
	productConv converter.ProductConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter, productConv converter.ProductConverter) *OrderRepo {
	return &OrderRepo{
		pool:        pool,
		conv:        conv,
		productConv: productConv,
	}
}

// Create сохраняет заказ и его позиции. Вызывается только внутри транзакции.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, items := o.conv.ToModel(order)
	query := `
		INSERT INTO orders (
			id, user_id, status, total_amount,
			shipping_street, shipping_city, shipping_state, shipping_zip, shipping_country,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + orderColumns

	created, err := scanOrder(tx.QueryRow(ctx, query,
		model.ID, model.UserID, model.Status, model.TotalAmount,
		model.ShippingStreet, model.ShippingCity, model.ShippingState, model.ShippingZip, model.ShippingCountry,
		model.CreatedAt,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO order_items (order_id, position, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			item.OrderID, item.Position, item.ProductID, item.Quantity, item.UnitPrice,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(created, items), nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderView, error) {
	q := conn(ctx, o.pool)

	model, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	views, err := o.resolve(ctx, q, []*converter.OrderModel{model})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &views[0], nil
}

// ListByUser возвращает заказы пользователя, новые первыми.
func (o *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.OrderView, error) {
	q := conn(ctx, o.pool)

	rows, err := q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []*converter.OrderModel
	for rows.Next() {
		model, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, model)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	views, err := o.resolve(ctx, q, models)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return views, nil
}

// LockByID читает заказ с блокировкой строки до конца транзакции.
func (o *OrderRepo) LockByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	items, err := o.items(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model, items[id]), nil
}

// UpdateStatus меняет только статус заказа.
func (o *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	q := conn(ctx, o.pool)

	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns

	model, err := scanOrder(q.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	items, err := o.items(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model, items[id]), nil
}

// resolve подгружает позиции заказов и текущие данные их товаров.
func (o *OrderRepo) resolve(ctx context.Context, q querier, models []*converter.OrderModel) ([]domain.OrderView, error) {
	views := make([]domain.OrderView, 0, len(models))
	if len(models) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, 0, len(models))
	for _, model := range models {
		ids = append(ids, model.ID)
	}

	items, err := o.items(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0)
	for _, orderItems := range items {
		for _, item := range orderItems {
			productIDs = append(productIDs, item.ProductID)
		}
	}

	products, err := o.products(ctx, q, productIDs)
	if err != nil {
		return nil, err
	}

	for _, model := range models {
		order := o.conv.ToEntity(model, items[model.ID])
		view := domain.OrderView{Order: *order, Products: make(map[uuid.UUID]*domain.Product, len(order.Lines))}
		for _, line := range order.Lines {
			if product, ok := products[line.ProductID]; ok {
				view.Products[line.ProductID] = product
			}
		}
		views = append(views, view)
	}

	return views, nil
}

func (o *OrderRepo) items(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]converter.OrderItemModel, error) {
	query := `
		SELECT order_id, position, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]converter.OrderItemModel, len(orderIDs))
	for rows.Next() {
		var item converter.OrderItemModel
		if err := rows.Scan(&item.OrderID, &item.Position, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	return result, rows.Err()
}

func (o *OrderRepo) products(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	result := make(map[uuid.UUID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[model.ID] = o.productConv.ToEntity(model)
	}

	return result, rows.Err()
}

func scanOrder(row pgx.Row) (*converter.OrderModel, error) {
	var model converter.OrderModel
	if err := row.Scan(
		&model.ID, &model.UserID, &model.Status, &model.TotalAmount,
		&model.ShippingStreet, &model.ShippingCity, &model.ShippingState, &model.ShippingZip, &model.ShippingCountry,
		&model.CreatedAt, &model.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &model, nil
}
