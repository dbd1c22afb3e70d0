package services_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

type fixture struct {
	db      *gorm.DB
	disk    *storage.LocalDisk
	catalog *services.Catalog
	orders  *services.Orders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testkit.NewDB(t)
	disk, err := storage.NewLocal(t.TempDir(), "http://cdn.test")
	require.NoError(t, err)

	products := cache.NewMemory()
	return &fixture{
		db:      db,
		disk:    disk,
		catalog: services.NewCatalog(db, disk, products, services.CatalogOptions{MaxUploadBytes: 1024}),
		orders:  services.NewOrders(db, products),
	}
}

// uploads lists the files currently stored in the uploads directory.
func (f *fixture) uploads(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.disk.Root(), services.DefaultUploadDir))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func pngUpload(name string) *services.Upload {
	data := testkit.PNG()
	return &services.Upload{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func productInput(name, price, stock string) services.ProductInput {
	return services.ProductInput{
		Name:  services.Some(name),
		Price: services.Some(services.Scalar(price)),
		Stock: services.Some(services.Scalar(stock)),
	}
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func orderInput(number string, items ...services.OrderItemInput) services.OrderInput {
	return services.OrderInput{
		OrderNumber:     number,
		CustomerName:    "Jane Doe",
		CustomerPhone:   "+1 555 0100",
		CustomerAddress: "1 Market St",
		Items:           items,
	}
}

func line(productID uint, price string, qty int) services.OrderItemInput {
	return services.OrderItemInput{ProductID: productID, UnitPrice: dec(price), Quantity: qty}
}

var ctxb = context.Background()
