package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository handles database operations for Order and its items.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	})
}

// All returns every order with its items, newest first.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).Order("created_at desc").Order("id desc").Find(&orders).Error
	return orders, err
}

// FindByID looks up an order and its items. A miss is gorm.ErrRecordNotFound.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).First(&order, id).Error
	return order, err
}

// FindByNumber looks up an order by its caller-supplied order number.
func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (models.Order, error) {
	var order models.Order
	err := r.withItems(ctx).Where("order_number = ?", number).First(&order).Error
	return order, err
}

// NumberTaken reports whether an order already uses number.
func (r *OrderRepository) NumberTaken(ctx context.Context, number string) (bool, error) {
	var id uint
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("id").Where("order_number = ?", number).Limit(1).Scan(&id).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return id != 0, nil
}

// Create inserts the order row only; items are written with CreateItems.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// CreateItems inserts line items for orderID, setting OrderID on each.
func (r *OrderRepository) CreateItems(ctx context.Context, orderID uint, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// UpdateStatus sets the status column of one order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

// Delete removes the order row; the foreign key cascades to order_items.
func (r *OrderRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, id)
	return res.RowsAffected, res.Error
}
