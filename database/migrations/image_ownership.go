package migrations

import (
	"regexp"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20261001000000_add_product_image_local_column", &AddProductImageLocalColumn{})
}

// generatedAsset matches the names the catalog gives uploaded files.
var generatedAsset = regexp.MustCompile(`^\d+-[0-9a-f]{12}\.[a-z0-9]+$`)

// -------- 0005: explicit image ownership --------

// AddProductImageLocalColumn records whether a product owns its image file.
// Rows that predate the column are marked owned only when their reference
// is a generated asset name that no other product points at.
type AddProductImageLocalColumn struct{}

func (m *AddProductImageLocalColumn) Up(db *gorm.DB) error {
	mig := db.Migrator()
	if mig.HasColumn(&models.Product{}, "ImageLocal") {
		return nil
	}
	if err := mig.AddColumn(&models.Product{}, "ImageLocal"); err != nil {
		return err
	}

	var rows []struct {
		ID       uint
		ImageRef string
	}
	if err := db.Model(&models.Product{}).Select("id", "image_ref").Where("image_ref <> ''").Scan(&rows).Error; err != nil {
		return err
	}

	refs := make(map[string]int, len(rows))
	for _, r := range rows {
		refs[r.ImageRef]++
	}
	var owned []uint
	for _, r := range rows {
		if refs[r.ImageRef] == 1 && generatedAsset.MatchString(r.ImageRef) {
			owned = append(owned, r.ID)
		}
	}
	if len(owned) == 0 {
		return nil
	}
	return db.Model(&models.Product{}).Where("id IN ?", owned).UpdateColumn("image_local", true).Error
}

func (m *AddProductImageLocalColumn) Down(db *gorm.DB) error {
	mig := db.Migrator()
	if !mig.HasColumn(&models.Product{}, "ImageLocal") {
		return nil
	}
	return mig.DropColumn(&models.Product{}, "ImageLocal")
}
