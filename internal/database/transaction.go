package database

import (
	"context"

	"gorm.io/gorm"
)

// InTransaction runs fn with a context that routes every Session call
// through one transaction. Returning an error rolls back; nil commits.
// Nested calls join the outer transaction.
func (d Database) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
