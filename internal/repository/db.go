package repository

import (
	"context"

	"gorm.io/gorm"
)

// conn returns tx when the caller is inside a transaction, the base handle
// otherwise. Both are bound to ctx.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
