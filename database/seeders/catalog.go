package seeders

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

func init() {
	Register("demo_catalog", seedDemoCatalog)
}

// demoProducts is a small catalog for local development.
var demoProducts = []models.Product{
	{Name: "Ceramic Mug", Description: "350 ml, dishwasher safe.", Price: decimal.RequireFromString("8.900"), Stock: 40},
	{Name: "Linen Tote", Description: "Natural linen, reinforced handles.", Price: decimal.RequireFromString("14.500"), Stock: 25},
	{Name: "Desk Lamp", Description: "Warm LED, adjustable arm.", Price: decimal.RequireFromString("39.000"), Stock: 8},
	{Name: "Notebook A5", Description: "Dot grid, 120 pages.", Price: decimal.RequireFromString("6.250"), Stock: 100},
}

// seedDemoCatalog inserts the demo products that are not there yet,
// matched by name.
func seedDemoCatalog(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range demoProducts {
			var count int64
			if err := tx.Model(&models.Product{}).Where("name = ?", p.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			product := p
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
