// Package services implements the storefront's business operations: the
// product catalog with its image assets, and order placement with stock
// accounting. Every method returns *apperr.Error values for expected
// failures so the transport can map them to stable codes.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

const (
	DefaultUploadDir      = "uploads"
	DefaultMaxUploadBytes = 5 << 20
)

// allowedImages maps accepted file extensions to the content type that
// sniffing must report for them.
var allowedImages = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// CatalogOptions tunes asset handling and caching.
type CatalogOptions struct {
	UploadDir      string
	MaxUploadBytes int64
	CacheTTL       time.Duration
}

// Catalog owns products and their image assets.
type Catalog struct {
	store *repositories.Store
	disk  storage.Disk
	cache cache.Store
	opts  CatalogOptions
	now   func() time.Time
}

// NewCatalog wires the catalog to a pool, an asset disk and a read cache.
// A nil cache disables caching.
func NewCatalog(db *gorm.DB, disk storage.Disk, c cache.Store, opts CatalogOptions) *Catalog {
	if c == nil {
		c = cache.Nop{}
	}
	if opts.UploadDir == "" {
		opts.UploadDir = DefaultUploadDir
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Catalog{
		store: repositories.NewStore(db),
		disk:  disk,
		cache: c,
		opts:  opts,
		now:   time.Now,
	}
}

// List returns every product, newest first.
func (c *Catalog) List(ctx context.Context) ([]models.Product, error) {
	products, err := c.store.Products.All(ctx)
	if err != nil {
		return nil, apperr.Internal("list products", err)
	}
	for i := range products {
		c.decorate(&products[i])
	}
	return products, nil
}

// Get returns one product.
func (c *Catalog) Get(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	if c.cache.Get(ctx, cacheKey(id), &product) {
		return product, nil
	}

	product, err := c.find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if err := c.cache.Set(ctx, cacheKey(id), product, c.opts.CacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache set failed", "product_id", id, "error", err)
	}
	return product, nil
}

// Create adds a product. An uploaded image wins over in.ImageURL.
func (c *Catalog) Create(ctx context.Context, in ProductInput, upload *Upload) (models.Product, error) {
	log := logger.WithCtx(ctx)

	product := models.Product{}
	errs := map[string]string{}

	if name := strings.TrimSpace(in.Name.Value); name == "" {
		errs["name"] = "The name field is required."
	} else {
		product.Name = name
	}
	if !in.Price.Set || strings.TrimSpace(string(in.Price.Value)) == "" {
		errs["price"] = "The price field is required."
	} else if price, msg := parsePrice(in.Price.Value); msg != "" {
		errs["price"] = msg
	} else {
		product.Price = price
	}
	if in.Stock.Set && strings.TrimSpace(string(in.Stock.Value)) != "" {
		if stock, msg := parseStock(in.Stock.Value); msg != "" {
			errs["stock"] = msg
		} else {
			product.Stock = stock
		}
	}
	product.Description = strings.TrimSpace(in.Description.Value)
	if len(errs) > 0 {
		return models.Product{}, apperr.InvalidInput("product is invalid", errs)
	}

	asset, err := c.readUpload(upload)
	if err != nil {
		return models.Product{}, err
	}

	switch {
	case asset != nil:
		if err := c.storeAsset(ctx, asset); err != nil {
			return models.Product{}, err
		}
		product.ImageRef = asset.name
		product.ImageLocal = true
	case in.ImageURL.Set:
		product.ImageRef = strings.TrimSpace(in.ImageURL.Value)
	}

	if err := c.store.Products.Create(ctx, &product); err != nil {
		if asset != nil {
			c.removeAsset(ctx, asset.name)
		}
		return models.Product{}, apperr.Internal("create product", err)
	}

	log.Info("catalog: product created", "product_id", product.ID, "image_ref", product.ImageRef)
	c.decorate(&product)
	return product, nil
}

// Update applies the fields present in in. An empty input returns the
// product unchanged. Replacing a locally stored image with a new upload
// removes the old file once the new reference is committed.
func (c *Catalog) Update(ctx context.Context, id uint, in ProductInput, upload *Upload) (models.Product, error) {
	log := logger.WithCtx(ctx)

	columns := map[string]interface{}{}
	errs := map[string]string{}

	if in.Name.Set {
		if name := strings.TrimSpace(in.Name.Value); name == "" {
			errs["name"] = "The name field must not be empty."
		} else {
			columns["name"] = name
		}
	}
	if in.Description.Set {
		columns["description"] = strings.TrimSpace(in.Description.Value)
	}
	if in.Price.Set {
		if price, msg := parsePrice(in.Price.Value); msg != "" {
			errs["price"] = msg
		} else {
			columns["price"] = price
		}
	}
	if in.Stock.Set {
		if stock, msg := parseStock(in.Stock.Value); msg != "" {
			errs["stock"] = msg
		} else {
			columns["stock"] = stock
		}
	}
	if len(errs) > 0 {
		return models.Product{}, apperr.InvalidInput("product is invalid", errs)
	}

	asset, err := c.readUpload(upload)
	if err != nil {
		return models.Product{}, err
	}

	current, err := c.find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	switch {
	case asset != nil:
		if err := c.storeAsset(ctx, asset); err != nil {
			return models.Product{}, err
		}
		columns["image_ref"] = asset.name
		columns["image_local"] = true
	case in.ImageURL.Set:
		// A client-supplied reference is never owned, even when it names
		// a stored asset; the file stays with the product that uploaded it.
		columns["image_ref"] = strings.TrimSpace(in.ImageURL.Value)
		columns["image_local"] = false
	}

	if len(columns) == 0 {
		return current, nil
	}

	// RowsAffected is not checked: MySQL reports 0 when values are unchanged.
	if _, err := c.store.Products.UpdateColumns(ctx, id, columns); err != nil {
		if asset != nil {
			c.removeAsset(ctx, asset.name)
		}
		return models.Product{}, apperr.Internal("update product", err)
	}
	c.forget(ctx, id)

	if asset != nil && current.HasLocalImage() && current.ImageRef != asset.name {
		c.removeAsset(ctx, current.ImageRef)
	}

	updated, err := c.find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	log.Info("catalog: product updated", "product_id", id, "fields", len(columns))
	return updated, nil
}

// Delete removes the product and, when it owns its image, the image file.
// A failed file removal is logged and does not fail the call.
func (c *Catalog) Delete(ctx context.Context, id uint) (models.Product, error) {
	product, err := c.find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	affected, err := c.store.Products.Delete(ctx, id)
	if err != nil {
		return models.Product{}, apperr.Internal("delete product", err)
	}
	if affected == 0 {
		return models.Product{}, apperr.NotFound("product", id)
	}
	c.forget(ctx, id)

	if product.HasLocalImage() {
		c.removeAsset(ctx, product.ImageRef)
	}

	logger.WithCtx(ctx).Info("catalog: product deleted", "product_id", id)
	return product, nil
}

func (c *Catalog) find(ctx context.Context, id uint) (models.Product, error) {
	product, err := c.store.Products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return models.Product{}, apperr.Internal("load product", err)
	}
	c.decorate(&product)
	return product, nil
}

func (c *Catalog) decorate(p *models.Product) {
	if p.HasLocalImage() {
		p.ImageURL = c.disk.URL(c.assetPath(p.ImageRef))
		return
	}
	p.ImageURL = p.ImageRef
}

func (c *Catalog) forget(ctx context.Context, id uint) {
	if err := c.cache.Del(ctx, cacheKey(id)); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidation failed", "product_id", id, "error", err)
	}
}

func cacheKey(id uint) string { return fmt.Sprintf("product:%d", id) }

// ─── Assets ──────────────────────────────────────────────────────────────────

type asset struct {
	name string
	data []byte
}

// readUpload enforces the size cap and the image allow-list. Nothing is
// written anywhere until it passes.
func (c *Catalog) readUpload(u *Upload) (*asset, error) {
	if u == nil || u.Content == nil {
		return nil, nil
	}
	limit := c.opts.MaxUploadBytes

	if u.Size > limit {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return nil, apperr.PayloadTooLarge(limit)
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	want, ok := allowedImages[ext]
	if !ok {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return nil, apperr.UnsupportedMediaType(fmt.Sprintf("file type %q is not allowed, use jpg, jpeg, png, gif or webp", ext))
	}

	data, err := io.ReadAll(io.LimitReader(u.Content, limit+1))
	if err != nil {
		return nil, apperr.InvalidInput("could not read uploaded file", map[string]string{"image": err.Error()})
	}
	if int64(len(data)) > limit {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return nil, apperr.PayloadTooLarge(limit)
	}
	if got := http.DetectContentType(data); got != want {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return nil, apperr.UnsupportedMediaType(fmt.Sprintf("file content is %s, expected %s", got, want))
	}

	return &asset{name: c.assetName(ext), data: data}, nil
}

// assetName is collision-free: a millisecond timestamp plus a random suffix,
// keeping the original extension.
func (c *Catalog) assetName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", c.now().UnixMilli(), suffix, ext)
}

func (c *Catalog) assetPath(name string) string {
	return path.Join(c.opts.UploadDir, name)
}

func (c *Catalog) storeAsset(ctx context.Context, a *asset) error {
	if err := c.disk.Put(ctx, c.assetPath(a.name), a.data); err != nil {
		metrics.ImageUploads.WithLabelValues("failed").Inc()
		return apperr.Internal("store image", err)
	}
	metrics.ImageUploads.WithLabelValues("stored").Inc()
	return nil
}

// removeAsset is best effort: the relational write already happened.
func (c *Catalog) removeAsset(ctx context.Context, name string) {
	if err := c.disk.Delete(ctx, c.assetPath(name)); err != nil {
		metrics.ImageCleanupFailures.Inc()
		logger.WithCtx(ctx).Error("catalog: image cleanup failed", "image_ref", name, "error", err)
	}
}

// ─── Coercion ────────────────────────────────────────────────────────────────

func parsePrice(s Scalar) (decimal.Decimal, string) {
	price, err := decimal.NewFromString(strings.TrimSpace(string(s)))
	if err != nil {
		return decimal.Decimal{}, "The price field must be a number."
	}
	if price.IsNegative() {
		return decimal.Decimal{}, "The price must be greater than or equal to 0."
	}
	return price.Round(3), ""
}

func parseStock(s Scalar) (int, string) {
	stock, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		return 0, "The stock field must be an integer."
	}
	if stock < 0 {
		return 0, "The stock must be greater than or equal to 0."
	}
	return stock, ""
}
