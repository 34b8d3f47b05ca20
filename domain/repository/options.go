package repository

import "time"

// WithName filters by the "name" column.
func WithName(name string) Option {
	return WithCondition("name", name)
}

// WithTenantID filters by the "tenant_id" column.
func WithTenantID(id string) Option {
	return WithCondition("tenant_id", id)
}

// WithSince keeps rows whose column is at or after t.
func WithSince(column string, t time.Time) Option {
	return WithWhere(column+" >= ?", t)
}
