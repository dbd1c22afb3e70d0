package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// All returns every product, newest first.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&products).Error
	return products, err
}

// FindByID looks up a product by primary key. A miss is gorm.ErrRecordNotFound.
func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	return product, err
}

// Create persists a new product record.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// UpdateColumns writes only the given columns. Untouched columns, stock in
// particular, keep whatever concurrent writers left there.
func (r *ProductRepository) UpdateColumns(ctx context.Context, id uint, columns map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected, res.Error
}

// Delete removes a product row. Order items keep their snapshot.
func (r *ProductRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	return res.RowsAffected, res.Error
}

// DecrementStock subtracts qty from the product's stock, flooring at zero.
// clamped reports that fewer than qty units were available.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (clamped bool, err error) {
	db := r.db.WithContext(ctx)

	res := db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	err = db.Model(&models.Product{}).Where("id = ?", id).Update("stock", 0).Error
	return true, err
}
