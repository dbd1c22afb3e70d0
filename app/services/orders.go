package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// Orders places orders and keeps product stock in step with them.
//
// Stock is decremented with a zero floor: an order for more units than are
// in stock still succeeds and leaves stock at 0. Deleting or cancelling an
// order never puts stock back. Any status may be set from any other.
//
// Order items only weakly reference products, yet an order naming a product
// id that does not exist at placement time is rejected with invalid_input on
// items.N.product_id. Items become dangling only when the product is deleted
// afterwards.
type Orders struct {
	store *repositories.Store
	cache cache.Store
}

// NewOrders wires the order engine to a pool and the product read cache that
// Catalog fills. A nil cache disables invalidation.
func NewOrders(db *gorm.DB, c cache.Store) *Orders {
	if c == nil {
		c = cache.Nop{}
	}
	return &Orders{store: repositories.NewStore(db), cache: c}
}

// CreateOrder validates in, then writes the order, its items and every
// stock decrement in one transaction.
func (o *Orders) CreateOrder(ctx context.Context, in OrderInput) (OrderRef, error) {
	log := logger.WithCtx(ctx)

	order, err := buildOrder(in)
	if err != nil {
		return OrderRef{}, err
	}

	taken, err := o.store.Orders.NumberTaken(ctx, order.OrderNumber)
	if err != nil {
		return OrderRef{}, apperr.Internal("create order", err)
	}
	if taken {
		return OrderRef{}, duplicateNumber(order.OrderNumber)
	}

	items := order.Items
	order.Items = nil
	clamped := 0

	err = o.store.Transaction(ctx, func(tx *repositories.Store) error {
		clamped = 0

		if err := tx.Orders.Create(ctx, &order); err != nil {
			return err
		}

		for i := range items {
			product, err := tx.Products.FindByID(ctx, items[i].ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.InvalidInput("order references an unknown product", map[string]string{
					fmt.Sprintf("items.%d.product_id", i): fmt.Sprintf("product %d does not exist", items[i].ProductID),
				})
			}
			if err != nil {
				return err
			}
			if items[i].ProductName == "" {
				items[i].ProductName = product.Name
			}
		}

		if err := tx.Orders.CreateItems(ctx, order.ID, items); err != nil {
			return err
		}

		for _, item := range items {
			wasClamped, err := tx.Products.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if wasClamped {
				clamped++
				log.Warn("orders: stock clamped at zero",
					"order_number", order.OrderNumber,
					"product_id", item.ProductID,
					"quantity", item.Quantity,
				)
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		switch {
		case errors.As(err, &appErr):
			return OrderRef{}, appErr
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return OrderRef{}, duplicateNumber(order.OrderNumber)
		default:
			log.Error("orders: create rolled back", "order_number", order.OrderNumber, "error", err)
			return OrderRef{}, apperr.Internal("create order", err)
		}
	}

	o.forgetProducts(ctx, items)
	metrics.OrdersCreated.Inc()
	metrics.StockClamped.Add(float64(clamped))
	log.Info("orders: order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"items", len(items),
		"total", order.Total.StringFixed(3),
	)
	return OrderRef{ID: order.ID, OrderNumber: order.OrderNumber}, nil
}

// forgetProducts drops the cached reads of every product whose stock the
// committed order changed.
func (o *Orders) forgetProducts(ctx context.Context, items []models.OrderItem) {
	seen := make(map[uint]bool, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		keys = append(keys, cacheKey(item.ProductID))
	}
	if err := o.cache.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("orders: cache invalidation failed", "keys", keys, "error", err)
	}
}

// ListOrders returns every order with its items, newest first.
func (o *Orders) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := o.store.Orders.All(ctx)
	if err != nil {
		return nil, apperr.Internal("list orders", err)
	}
	return orders, nil
}

// GetOrder returns one order with its items.
func (o *Orders) GetOrder(ctx context.Context, id uint) (models.Order, error) {
	order, err := o.store.Orders.FindByID(ctx, id)
	return order, classify(err, "order", id)
}

// GetOrderByNumber returns the order with the given order number.
func (o *Orders) GetOrderByNumber(ctx context.Context, number string) (models.Order, error) {
	order, err := o.store.Orders.FindByNumber(ctx, strings.TrimSpace(number))
	return order, classify(err, "order", number)
}

// SetStatus moves an order to status. Only the value is checked; there is
// no transition graph.
func (o *Orders) SetStatus(ctx context.Context, id uint, status string) (models.OrderStatus, error) {
	next := models.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return "", apperr.InvalidStatus(status)
	}

	var prev models.OrderStatus
	err := o.store.Transaction(ctx, func(tx *repositories.Store) error {
		order, err := tx.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		prev = order.Status
		return tx.Orders.UpdateStatus(ctx, id, next)
	})
	if err := classify(err, "order", id); err != nil {
		return "", err
	}

	logger.WithCtx(ctx).Info("orders: status changed", "order_id", id, "from", prev, "to", next)
	return next, nil
}

// DeleteOrder removes an order; its items go with it. Stock is not restored.
func (o *Orders) DeleteOrder(ctx context.Context, id uint) (models.Order, error) {
	var snapshot models.Order
	err := o.store.Transaction(ctx, func(tx *repositories.Store) error {
		order, err := tx.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		affected, err := tx.Orders.Delete(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return gorm.ErrRecordNotFound
		}
		snapshot = order
		return nil
	})
	if err := classify(err, "order", id); err != nil {
		return models.Order{}, err
	}

	logger.WithCtx(ctx).Info("orders: order deleted", "order_id", id, "items", len(snapshot.Items))
	return snapshot, nil
}

// buildOrder turns a request into an unsaved order, rejecting it before any
// storage access when a required value is missing or malformed.
func buildOrder(in OrderInput) (models.Order, error) {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.CustomerAddress = strings.TrimSpace(in.CustomerAddress)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))

	errs := validate.Struct(in)

	items := make([]models.OrderItem, 0, len(in.Items))
	sum := decimal.Zero
	for i, it := range in.Items {
		key := fmt.Sprintf("items.%d.product_price", i)
		switch {
		case !it.UnitPrice.Valid:
			errs[key] = fmt.Sprintf("The %s field is required.", key)
			continue
		case it.UnitPrice.Decimal.IsNegative():
			errs[key] = fmt.Sprintf("The %s must be greater than or equal to 0.", key)
			continue
		}
		price := it.UnitPrice.Decimal.Round(3)
		line := price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(3)
		sum = sum.Add(line)
		items = append(items, models.OrderItem{
			ProductID:    it.ProductID,
			ProductName:  strings.TrimSpace(it.ProductName),
			ProductPrice: price,
			Quantity:     it.Quantity,
			Total:        line,
		})
	}

	amounts := map[string]decimal.NullDecimal{"subtotal": in.Subtotal, "shipping": in.Shipping, "total": in.Total}
	for name, v := range amounts {
		if v.Valid && v.Decimal.IsNegative() {
			errs[name] = fmt.Sprintf("The %s must be greater than or equal to 0.", name)
		}
	}
	if validate.HasErrors(errs) {
		return models.Order{}, apperr.InvalidInput("order is invalid", errs)
	}

	subtotal := sum
	if in.Subtotal.Valid {
		subtotal = in.Subtotal.Decimal.Round(3)
	}
	shipping := decimal.Zero
	if in.Shipping.Valid {
		shipping = in.Shipping.Decimal.Round(3)
	}
	total := subtotal.Add(shipping)
	if in.Total.Valid && !in.Total.Decimal.Round(3).Equal(total) {
		return models.Order{}, apperr.InvalidInput("order is invalid", map[string]string{
			"total": fmt.Sprintf("The total must equal subtotal + shipping (%s).", total.StringFixed(3)),
		})
	}

	method := models.PaymentMethod(in.PaymentMethod)
	if method == "" {
		method = models.PaymentCash
	}

	return models.Order{
		OrderNumber:     in.OrderNumber,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerEmail:   in.CustomerEmail,
		CustomerAddress: in.CustomerAddress,
		Notes:           strings.TrimSpace(in.Notes),
		PaymentMethod:   method,
		Status:          models.StatusPending,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           total,
		Items:           items,
	}, nil
}

func duplicateNumber(number string) error {
	return apperr.InvalidInput("order number already exists", map[string]string{
		"order_number": fmt.Sprintf("An order numbered %q already exists.", number),
	})
}

// classify maps repository errors onto the public taxonomy.
func classify(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Internal("load "+entity, err)
}
