package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	en := newEnv(false)
	ctx := context.Background()

	product, err := en.products.CreateProduct(ctx, &CreateProductReq{
		Principal: admin(),
		Name:      "  Kettle ",
		Price:     decimal.RequireFromString("19.99"),
		Stock:     7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Kettle", product.Name)

	stored, ok := en.store.product(product.ID)
	require.True(t, ok)
	assert.Equal(t, 7, stored.Stock)
}

func TestCreateProduct_Rejects(t *testing.T) {
	tests := []struct {
		name string
		req  CreateProductReq
		want error
	}{
		{
			name: "customer",
			req:  CreateProductReq{Principal: customer(), Name: "A", Price: decimal.NewFromInt(1)},
			want: e.ErrForbidden,
		},
		{
			name: "empty name",
			req:  CreateProductReq{Principal: admin(), Name: " ", Price: decimal.NewFromInt(1)},
			want: e.ErrProductNameRequired,
		},
		{
			name: "negative price",
			req:  CreateProductReq{Principal: admin(), Name: "A", Price: decimal.NewFromInt(-1)},
			want: e.ErrInvalidPrice,
		},
		{
			name: "three decimals",
			req:  CreateProductReq{Principal: admin(), Name: "A", Price: decimal.RequireFromString("1.005")},
			want: e.ErrPricePrecision,
		},
		{
			name: "negative stock",
			req:  CreateProductReq{Principal: admin(), Name: "A", Price: decimal.NewFromInt(1), Stock: -1},
			want: e.ErrInvalidStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := newEnv(false)
			_, err := en.products.CreateProduct(context.Background(), &tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetProductsInfo_CacheAside(t *testing.T) {
	en := newEnv(false)
	cached := en.store.addProduct("Cached", "1.00", 1)
	fresh := en.store.addProduct("Fresh", "2.00", 2)
	missing := uuid.New()

	en.cache.products[cached.ID] = NewProductInfo(&cached)

	res, err := en.products.GetProductsInfo(context.Background(), NewGetProductsReq([]uuid.UUID{fresh.ID, missing, cached.ID}))
	require.NoError(t, err)

	require.Len(t, res.Products, 2)
	assert.Equal(t, fresh.ID, res.Products[0].ID)
	assert.Equal(t, cached.ID, res.Products[1].ID)
	assert.Equal(t, []uuid.UUID{missing}, res.NotFoundProducts)

	select {
	case stored := <-en.cache.setCh:
		require.Len(t, stored, 1)
		assert.Equal(t, fresh.ID, stored[0].ID)
	case <-time.After(time.Second):
		t.Fatal("products were not cached")
	}
}

func TestGetProductsInfo_CacheDown(t *testing.T) {
	en := newEnv(false)
	p := en.store.addProduct("P", "1.00", 1)
	en.cache.err = errStorage

	res, err := en.products.GetProductsInfo(context.Background(), NewGetProductsReq([]uuid.UUID{p.ID}))
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, p.ID, res.Products[0].ID)
}

func TestGetProductsInfo_NoIDs(t *testing.T) {
	en := newEnv(false)

	_, err := en.products.GetProductsInfo(context.Background(), NewGetProductsReq(nil))
	require.ErrorIs(t, err, e.ErrMissingFields)
}

func TestGetProduct_NotFound(t *testing.T) {
	en := newEnv(false)

	_, err := en.products.GetProduct(context.Background(), uuid.New())
	require.ErrorIs(t, err, e.ErrProductMissing)
}
