package migrations

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_products_table", &CreateProductsTable{})
	migration.Register("20260101000001_create_orders_table", &CreateOrdersTable{})
	migration.Register("20260101000002_create_order_items_table", &CreateOrderItemsTable{})
	migration.Register("20260301000000_add_order_contact_columns", &AddOrderContactColumns{})
}

// -------- 0001: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0002: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("orders")
}

// -------- 0003: order_items (cascade on order delete) --------

type CreateOrderItemsTable struct{}

func (m *CreateOrderItemsTable) Up(db *gorm.DB) error {
	// Migrating through Order lets gorm emit the ON DELETE CASCADE
	// constraint declared on Order.Items.
	return db.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

func (m *CreateOrderItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items")
}

// -------- 0004: columns introduced after the first release --------

// AddOrderContactColumns adds customer_email and notes to order tables
// created before they existed.
type AddOrderContactColumns struct{}

func (m *AddOrderContactColumns) Up(db *gorm.DB) error {
	mig := db.Migrator()
	for _, col := range []string{"CustomerEmail", "Notes"} {
		if mig.HasColumn(&models.Order{}, col) {
			continue
		}
		if err := mig.AddColumn(&models.Order{}, col); err != nil {
			return err
		}
	}
	return nil
}

func (m *AddOrderContactColumns) Down(db *gorm.DB) error {
	mig := db.Migrator()
	for _, col := range []string{"Notes", "CustomerEmail"} {
		if !mig.HasColumn(&models.Order{}, col) {
			continue
		}
		if err := mig.DropColumn(&models.Order{}, col); err != nil {
			return err
		}
	}
	return nil
}
