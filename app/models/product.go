package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalogue.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	ImageRef    string          `gorm:"column:image_ref;size:1024" json:"image_ref"`
	ImageLocal  bool            `gorm:"column:image_local;not null;default:false" json:"image_local"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// ImageURL is the public address of the image, filled in on read.
	ImageURL string `gorm:"-" json:"image_url,omitempty"`
}

// HasLocalImage reports whether ImageRef names an asset this system stored
// from an upload. Only those are ever deleted; a reference supplied by the
// client is never treated as owned, whatever it looks like.
func (p Product) HasLocalImage() bool {
	return p.ImageLocal && strings.TrimSpace(p.ImageRef) != ""
}
