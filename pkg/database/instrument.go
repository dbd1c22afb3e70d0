package database

import (
	"time"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"gorm.io/gorm"
)

const startKey = "storefront:query_start"

// Instrument records the latency of every gorm operation in
// metrics.DBQueryDuration. Registering twice on the same db is a no-op.
func Instrument(db *gorm.DB) {
	cb := db.Callback()
	if cb.Query().Get("storefront:before_query") != nil {
		return
	}

	before := func(tx *gorm.DB) { tx.InstanceSet(startKey, time.Now()) }
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if v, ok := tx.InstanceGet(startKey); ok {
				if start, ok := v.(time.Time); ok {
					metrics.ObserveDBQuery(op, start)
				}
			}
		}
	}

	_ = cb.Create().Before("gorm:create").Register("storefront:before_create", before)
	_ = cb.Create().After("gorm:create").Register("storefront:after_create", after("insert"))
	_ = cb.Query().Before("gorm:query").Register("storefront:before_query", before)
	_ = cb.Query().After("gorm:query").Register("storefront:after_query", after("select"))
	_ = cb.Update().Before("gorm:update").Register("storefront:before_update", before)
	_ = cb.Update().After("gorm:update").Register("storefront:after_update", after("update"))
	_ = cb.Delete().Before("gorm:delete").Register("storefront:before_delete", before)
	_ = cb.Delete().After("gorm:delete").Register("storefront:after_delete", after("delete"))
	_ = cb.Raw().Before("gorm:raw").Register("storefront:before_raw", before)
	_ = cb.Raw().After("gorm:raw").Register("storefront:after_raw", after("raw"))
}
