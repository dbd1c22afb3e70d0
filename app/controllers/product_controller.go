package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// multipartMemory is how much of a multipart body is kept in memory before
// parts spill to temporary files.
const multipartMemory = 8 << 20

type ProductController struct {
	catalog  *services.Catalog
	maxBytes int64
}

// NewProductController serves the catalog. maxUpload bounds the whole
// multipart body; the catalog enforces the per-image cap itself.
func NewProductController(catalog *services.Catalog, maxUpload int64) *ProductController {
	if maxUpload <= 0 {
		maxUpload = services.DefaultMaxUploadBytes
	}
	return &ProductController{catalog: catalog, maxBytes: maxUpload + 1<<20}
}

// Index  GET /api/products
func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.catalog.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

// Show  GET /api/products/{id}
func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	product, err := pc.catalog.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

// Store  POST /api/products
func (pc *ProductController) Store(c *ctx.Context) {
	in, upload, done, ok := pc.readProduct(c)
	if !ok {
		return
	}
	defer done()

	product, err := pc.catalog.Create(c.Context(), in, upload)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(product)
}

// Update  PUT /api/products/{id}
func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	in, upload, done, ok := pc.readProduct(c)
	if !ok {
		return
	}
	defer done()

	product, err := pc.catalog.Update(c.Context(), id, in, upload)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

// Destroy  DELETE /api/products/{id}
func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	product, err := pc.catalog.Delete(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

// readProduct accepts multipart/form-data (fields plus an optional "image"
// file) or a JSON body. done releases the upload and must be deferred.
func (pc *ProductController) readProduct(c *ctx.Context) (in services.ProductInput, upload *services.Upload, done func(), ok bool) {
	done = func() {}
	if !c.IsMultipart() {
		ok = c.DecodeJSON(&in)
		return in, nil, done, ok
	}

	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, pc.maxBytes)
	if err := c.R.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.Fail(apperr.PayloadTooLarge(pc.maxBytes))
		} else {
			c.Error(http.StatusBadRequest, "Invalid multipart body")
		}
		return in, nil, done, false
	}
	form := c.R.MultipartForm
	done = func() { _ = form.RemoveAll() }

	if v, set := formValue(form, "name"); set {
		in.Name = services.Some(v)
	}
	if v, set := formValue(form, "description"); set {
		in.Description = services.Some(v)
	}
	if v, set := formValue(form, "price"); set {
		in.Price = services.Some(services.Scalar(v))
	}
	if v, set := formValue(form, "stock"); set {
		in.Stock = services.Some(services.Scalar(v))
	}
	if v, set := formValue(form, "image_url"); set {
		in.ImageURL = services.Some(v)
	}

	if files := form.File["image"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			c.Error(http.StatusBadRequest, "Unreadable image part")
			return in, nil, done, false
		}
		release := done
		done = func() { f.Close(); release() }
		upload = &services.Upload{Filename: files[0].Filename, Size: files[0].Size, Content: f}
	}
	return in, upload, done, true
}

// formValue reports the first value of key and whether the key was sent.
func formValue(form *multipart.Form, key string) (string, bool) {
	vs, ok := form.Value[key]
	if !ok {
		return "", false
	}
	if len(vs) == 0 {
		return "", true
	}
	return vs[0], true
}
