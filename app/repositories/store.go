// Package repositories holds the gorm queries behind the catalog and order
// services. Repositories never decide policy; they return gorm errors as-is
// and leave classification to the service layer.
package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one *gorm.DB, either the pool
// or an open transaction.
type Store struct {
	db *gorm.DB

	Products *ProductRepository
	Orders   *OrderRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Products: NewProductRepository(db),
		Orders:   NewOrderRepository(db),
	}
}

// Transaction runs fn against repositories bound to a single transaction.
// fn returning an error, or panicking, rolls every write back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
