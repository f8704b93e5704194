package command

import (
	"context"
	"testing"
	"time"

	"washpos/internal/apperror"
	"washpos/internal/dto"
	"washpos/internal/model"
	"washpos/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*service, store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st).(*service), st
}

func saleRequest(prices ...float64) dto.CreateSaleRequest {
	req := dto.CreateSaleRequest{
		PaymentMethod: model.PaymentCard,
		CashierID:     "cashier-1",
	}
	for _, p := range prices {
		req.Items = append(req.Items, dto.SaleItemRequest{
			ServiceID: "svc-1",
			Name:      "Full Detail",
			UnitPrice: decimal.NewFromFloat(p),
			Quantity:  1,
		})
	}
	return req
}

func TestCreateCustomer(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Jane", Phone: "5551234567"})
	require.NoError(t, err)
	assert.NotEmpty(t, customer.ID)
	assert.False(t, customer.Synced)
	assert.False(t, customer.UpdatedAt.Before(customer.CreatedAt))

	customers, err := svc.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.ID, customers[0].ID)

	pending, err := st.PendingCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Jane"})
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Phone")

	bad := "not-an-email"
	_, err = svc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Jane", Phone: "555", Email: &bad})
	require.ErrorAs(t, err, &verr)
}

func TestUpdateCustomerPartialEdit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Jane", Phone: "5551234567"})
	require.NoError(t, err)

	newPhone := "5550000000"
	updated, err := svc.UpdateCustomer(ctx, created.ID, dto.UpdateCustomerRequest{Phone: &newPhone})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "id is immutable")
	assert.Equal(t, "Jane", updated.Name, "untouched fields survive")
	assert.Equal(t, newPhone, updated.Phone)
	assert.False(t, updated.Synced, "any edit re-enters the sync queue")
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestUpdateUnknownCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	name := "Ghost"
	_, err := svc.UpdateCustomer(context.Background(), "missing", dto.UpdateCustomerRequest{Name: &name})
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateSaleComputesTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := saleRequest(20)
	req.Items = append(req.Items, dto.SaleItemRequest{
		ServiceID: "svc-2", Name: "Wax", UnitPrice: decimal.NewFromFloat(15.25), Quantity: 2,
	})
	sale, err := svc.CreateSale(ctx, req)
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(50.50)), "got %s", sale.Total)

	sales, err := svc.Sales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].Total.Equal(sale.Total))
}

func TestCreateSaleRejectsEmptyAndInvalid(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	var verr *apperror.ValidationError

	empty := dto.CreateSaleRequest{PaymentMethod: model.PaymentCash, CashierID: "c"}
	_, err := svc.CreateSale(ctx, empty)
	require.ErrorAs(t, err, &verr)

	badQty := saleRequest(10)
	badQty.Items[0].Quantity = 0
	_, err = svc.CreateSale(ctx, badQty)
	require.ErrorAs(t, err, &verr)

	badMethod := saleRequest(10)
	badMethod.PaymentMethod = "barter"
	_, err = svc.CreateSale(ctx, badMethod)
	require.ErrorAs(t, err, &verr)

	sales, err := svc.Sales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
	pending, err := st.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending, "rejected writes must not enqueue")
}

func TestTodayStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	fixed := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.CreateSale(ctx, saleRequest(50))
	require.NoError(t, err)
	_, err = svc.CreateSale(ctx, saleRequest(75.50))
	require.NoError(t, err)

	// Yesterday's sale must not count.
	svc.now = func() time.Time { return fixed.AddDate(0, 0, -1) }
	_, err = svc.CreateSale(ctx, saleRequest(999))
	require.NoError(t, err)
	svc.now = func() time.Time { return fixed }

	stats, err := svc.TodayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Transactions)
	assert.True(t, stats.Revenue.Equal(decimal.NewFromFloat(125.50)), "got %s", stats.Revenue)
	require.Len(t, stats.PopularServices, 1)
	assert.Equal(t, "Full Detail", stats.PopularServices[0].Name)
	assert.Equal(t, 2, stats.PopularServices[0].Count)
}
