package services_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

func (f *fixture) product(t *testing.T, name, price string, stock int) models.Product {
	t.Helper()
	p, err := f.catalog.Create(ctxb, productInput(name, price, fmt.Sprint(stock)), nil)
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.Stock
}

func TestCreateOrderDecrementsStockAndTotals(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "10.500", 5)

	in := orderInput("ORD-1", services.OrderItemInput{ProductID: widget.ID, UnitPrice: dec("10.500"), Quantity: 3})
	in.Shipping = dec("4.25")

	ref, err := f.orders.CreateOrder(ctxb, in)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", ref.OrderNumber)
	assert.Equal(t, 2, f.stock(t, widget.ID))

	order, err := f.orders.GetOrder(ctxb, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentCash, order.PaymentMethod)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "31.500", order.Items[0].Total.StringFixed(3))
	assert.Equal(t, "Widget", order.Items[0].ProductName)
	assert.Equal(t, "31.500", order.Subtotal.StringFixed(3))
	assert.Equal(t, "4.250", order.Shipping.StringFixed(3))
	assert.Equal(t, "35.750", order.Total.StringFixed(3))
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.Shipping)))
}

func TestCreateOrderRefreshesCachedProductReads(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 5)
	gadget := f.product(t, "Gadget", "1", 4)

	warm, err := f.catalog.Get(ctxb, widget.ID)
	require.NoError(t, err)
	require.Equal(t, 5, warm.Stock)
	_, err = f.catalog.Get(ctxb, gadget.ID)
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(ctxb, orderInput("ORD-1",
		line(widget.ID, "1", 3),
		line(gadget.ID, "1", 1),
	))
	require.NoError(t, err)

	got, err := f.catalog.Get(ctxb, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
	got, err = f.catalog.Get(ctxb, gadget.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestCreateOrderClampsStockAtZero(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 5)

	_, err := f.orders.CreateOrder(ctxb, orderInput("ORD-2", line(widget.ID, "1", 10)))
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, widget.ID))
}

func TestCreateOrderKeepsCallerPriceSnapshot(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "10", 5)

	ref, err := f.orders.CreateOrder(ctxb, orderInput("ORD-3", line(widget.ID, "7.125", 2)))
	require.NoError(t, err)

	_, err = f.catalog.Update(ctxb, widget.ID, productInput("Renamed", "99", "5"), nil)
	require.NoError(t, err)

	order, err := f.orders.GetOrder(ctxb, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", order.Items[0].ProductName)
	assert.Equal(t, "7.125", order.Items[0].ProductPrice.StringFixed(3))
	assert.Equal(t, "14.250", order.Items[0].Total.StringFixed(3))
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 5)

	cases := map[string]struct {
		in    services.OrderInput
		field string
	}{
		"missing number":  {orderInput("", line(widget.ID, "1", 1)), "order_number"},
		"no items":        {orderInput("A"), "items"},
		"zero quantity":   {orderInput("A", line(widget.ID, "1", 0)), "items.0.quantity"},
		"missing price":   {orderInput("A", services.OrderItemInput{ProductID: widget.ID, Quantity: 1}), "items.0.product_price"},
		"negative price":  {orderInput("A", line(widget.ID, "-1", 1)), "items.0.product_price"},
		"unknown product": {orderInput("A", line(widget.ID+50, "1", 1)), "items.0.product_id"},
		"bad payment": {func() services.OrderInput {
			in := orderInput("A", line(widget.ID, "1", 1))
			in.PaymentMethod = "crypto"
			return in
		}(), "payment_method"},
		"negative shipping": {func() services.OrderInput {
			in := orderInput("A", line(widget.ID, "1", 1))
			in.Shipping = dec("-1")
			return in
		}(), "shipping"},
		"total mismatch": {func() services.OrderInput {
			in := orderInput("A", line(widget.ID, "1", 1))
			in.Total = dec("5")
			return in
		}(), "total"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(ctxb, tc.in)
			require.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.Contains(t, apperr.From(err).Fields, tc.field)
		})
	}

	assert.Equal(t, 5, f.stock(t, widget.ID))
	orders, err := f.orders.ListOrders(ctxb)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderRejectsDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 5)

	_, err := f.orders.CreateOrder(ctxb, orderInput("DUP", line(widget.ID, "1", 1)))
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(ctxb, orderInput("DUP", line(widget.ID, "1", 1)))
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, 4, f.stock(t, widget.ID))
}

func TestCreateOrderRollsBackPartialWrites(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 5)

	failItems := errors.New("disk unplugged")
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_items", func(db *gorm.DB) {
		if db.Statement.Table == "order_items" {
			_ = db.AddError(failItems)
		}
	}))

	_, err := f.orders.CreateOrder(ctxb, orderInput("HALF", line(widget.ID, "1", 2)))
	require.ErrorIs(t, err, apperr.ErrInternalFailure)
	assert.NotContains(t, apperr.From(err).Message, "disk unplugged")

	_, err = f.orders.GetOrderByNumber(ctxb, "HALF")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 5, f.stock(t, widget.ID))
}

func TestConcurrentOrdersNeverDriveStockNegative(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 6)

	const buyers = 8
	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.orders.CreateOrder(ctxb, orderInput(fmt.Sprintf("C-%d", i), line(widget.ID, "1", 1)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 0, f.stock(t, widget.ID))

	orders, err := f.orders.ListOrders(ctxb)
	require.NoError(t, err)
	assert.Len(t, orders, buyers)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 5)
	ref, err := f.orders.CreateOrder(ctxb, orderInput("S-1", line(widget.ID, "1", 1)))
	require.NoError(t, err)

	_, err = f.orders.SetStatus(ctxb, ref.ID, "not-a-status")
	require.ErrorIs(t, err, apperr.ErrInvalidStatus)
	order, err := f.orders.GetOrder(ctxb, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)

	// Any state may follow any other.
	for _, s := range []string{"delivered", "pending", "cancelled", "shipped"} {
		got, err := f.orders.SetStatus(ctxb, ref.ID, s)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(s), got)
	}

	_, err = f.orders.SetStatus(ctxb, ref.ID+100, "confirmed")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCancellingOrDeletingDoesNotRestoreStock(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 5)
	ref, err := f.orders.CreateOrder(ctxb, orderInput("D-1", line(widget.ID, "1", 2), line(widget.ID, "1", 1)))
	require.NoError(t, err)

	_, err = f.orders.SetStatus(ctxb, ref.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, 2, f.stock(t, widget.ID))

	snapshot, err := f.orders.DeleteOrder(ctxb, ref.ID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 2)
	assert.Equal(t, 2, f.stock(t, widget.ID))

	var items int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Where("order_id = ?", ref.ID).Count(&items).Error)
	assert.Zero(t, items)

	_, err = f.orders.GetOrder(ctxb, ref.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.orders.DeleteOrder(ctxb, ref.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeletingProductKeepsHistoricalItems(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "2", 5)
	ref, err := f.orders.CreateOrder(ctxb, orderInput("H-1", line(widget.ID, "2", 1)))
	require.NoError(t, err)

	_, err = f.catalog.Delete(ctxb, widget.ID)
	require.NoError(t, err)

	order, err := f.orders.GetOrder(ctxb, ref.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, widget.ID, order.Items[0].ProductID)
	assert.Equal(t, "Widget", order.Items[0].ProductName)
}

func TestListOrdersNewestFirstWithItems(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", "1", 50)

	for _, n := range []string{"L-1", "L-2", "L-3"} {
		_, err := f.orders.CreateOrder(ctxb, orderInput(n, line(widget.ID, "1", 1)))
		require.NoError(t, err)
	}

	orders, err := f.orders.ListOrders(ctxb)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "L-3", orders[0].OrderNumber)
	assert.Equal(t, "L-1", orders[2].OrderNumber)
	for _, o := range orders {
		assert.Len(t, o.Items, 1)
	}
}
