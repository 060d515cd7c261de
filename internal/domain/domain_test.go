package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcTotal_Exact(t *testing.T) {
	lines := []OrderLine{
		{ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
	}

	total := CalcTotal(lines)
	assert.True(t, decimal.RequireFromString("40.28").Equal(total), "got %s", total)
}

func TestNewOrder_PendingWithTotal(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	lines := []OrderLine{{ProductID: productID, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}}

	order := NewOrder(userID, lines, ShippingAddress{}, time.Now())

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("20").Equal(order.TotalAmount))
	assert.Equal(t, []StockChange{{ProductID: productID, Quantity: 2}}, order.StockChanges())
	assert.NotEqual(t, uuid.Nil, order.ID)
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "completed", "cancelled"} {
		status, ok := ParseOrderStatus(s)
		require.True(t, ok, s)
		assert.Equal(t, OrderStatus(s), status)
	}

	_, ok := ParseOrderStatus("shipped")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("")
	assert.False(t, ok)
}

func TestShippingAddress_IsComplete(t *testing.T) {
	full := ShippingAddress{Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62701", Country: "US"}
	assert.True(t, full.IsComplete())

	missing := full
	missing.Zip = "   "
	assert.False(t, missing.IsComplete())
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole([]Role{RoleAdmin}, RoleAdmin))
	assert.False(t, HasRole([]Role{RoleAdmin}, RoleCustomer))
	assert.True(t, HasRole([]Role{RoleCustomer, RoleAdmin}, RoleCustomer))
	assert.False(t, HasRole(nil, RoleAdmin))
}

func TestPrincipal_CanAccess(t *testing.T) {
	owner := uuid.New()

	assert.True(t, Principal{UserID: owner, Role: RoleCustomer}.CanAccess(owner))
	assert.False(t, Principal{UserID: uuid.New(), Role: RoleCustomer}.CanAccess(owner))
	assert.True(t, Principal{UserID: uuid.New(), Role: RoleAdmin}.CanAccess(owner))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("")
	require.True(t, ok)
	assert.Equal(t, RoleCustomer, role)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}
