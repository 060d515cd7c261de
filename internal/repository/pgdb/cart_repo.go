package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CartRepo реализует репозиторий корзин поверх PostgreSQL.
type CartRepo struct {
	pool        *pgxpool.Pool
	conv        converter.CartConverter
	productConv converter.ProductConverter
}

func NewCartRepo(pool *pgxpool.Pool, conv converter.CartConverter, productConv converter.ProductConverter) *CartRepo {
	return &CartRepo{
		pool:        pool,
		conv:        conv,
		productConv: productConv,
	}
}

// GetOrCreate возвращает корзину пользователя, создавая пустую при первом обращении.
func (c *CartRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	q := conn(ctx, c.pool)

	insert := `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, uuid.New(), userID); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.CartModel
	if err := q.QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&model.ID, &model.UserID, &model.CreatedAt, &model.UpdatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	rows, err := q.Query(ctx,
		`SELECT cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY position`,
		model.ID,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var items []converter.CartItemModel
	for rows.Next() {
		var item converter.CartItemModel
		if err := rows.Scan(&item.CartID, &item.ProductID, &item.Quantity); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model, items), nil
}

// GetWithProducts возвращает корзину с актуальными данными товаров. nil, если корзины нет.
func (c *CartRepo) GetWithProducts(ctx context.Context, userID uuid.UUID) (*domain.CartView, error) {
	view, err := c.readView(ctx, conn(ctx, c.pool), userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return view, nil
}

// LockWithProducts блокирует корзину и строки её товаров (в порядке id) до конца транзакции
// и читает их уже после получения блокировок.
func (c *CartRepo) LockWithProducts(ctx context.Context, userID uuid.UUID) (*domain.CartView, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var cartID uuid.UUID
	if err := tx.QueryRow(ctx,
		`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&cartID); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	lockProducts := `
		SELECT p.id
		FROM products p
		WHERE p.id IN (SELECT product_id FROM cart_items WHERE cart_id = $1)
		ORDER BY p.id
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, lockProducts, cartID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	view, err := c.readView(ctx, tx, userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return view, nil
}

func (c *CartRepo) readView(ctx context.Context, q querier, userID uuid.UUID) (*domain.CartView, error) {
	query := `
		SELECT c.id, c.user_id, c.updated_at,
		       ci.product_id, ci.quantity,
		       p.id, p.name, p.description, p.price, p.stock, p.created_at, p.updated_at
		FROM carts c
		LEFT JOIN cart_items ci ON ci.cart_id = c.id
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY ci.position
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var view *domain.CartView
	for rows.Next() {
		var (
			cart      converter.CartModel
			productID uuid.NullUUID
			quantity  *int
			product   converter.JoinedProductModel
		)
		if err := rows.Scan(
			&cart.ID, &cart.UserID, &cart.UpdatedAt,
			&productID, &quantity,
			&product.ID, &product.Name, &product.Description, &product.Price, &product.Stock,
			&product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, err
		}

		if view == nil {
			view = &domain.CartView{CartID: cart.ID, UserID: cart.UserID, UpdatedAt: cart.UpdatedAt}
		}
		if !productID.Valid || quantity == nil {
			continue
		}

		view.Lines = append(view.Lines, domain.CartLineView{
			ProductID: productID.UUID,
			Quantity:  *quantity,
			Product:   c.productConv.JoinedToEntity(&product),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return view, nil
}

// SetLine записывает абсолютное количество товара в корзине.
func (c *CartRepo) SetLine(ctx context.Context, cartID uuid.UUID, line domain.CartLine) error {
	q := conn(ctx, c.pool)

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`
	if _, err := q.Exec(ctx, query, cartID, line.ProductID, line.Quantity); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return c.touch(ctx, q, cartID)
}

func (c *CartRepo) RemoveLine(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (bool, error) {
	q := conn(ctx, c.pool)

	tag, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	return true, c.touch(ctx, q, cartID)
}

// Clear удаляет все позиции корзины; сама корзина сохраняется.
func (c *CartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	q := conn(ctx, c.pool)

	query := `
		DELETE FROM cart_items
		WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)
	`
	if _, err := q.Exec(ctx, query, userID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := q.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE user_id = $1`, userID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CartRepo) touch(ctx context.Context, q querier, cartID uuid.UUID) error {
	if _, err := q.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}
