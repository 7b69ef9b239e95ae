// Package tx abstracts transaction boundaries so domain services can
// demand atomicity without importing a database driver. The concrete
// implementation lives in infrastructure/storage/postgres.
package tx

import "context"

// Manager runs a function inside a transaction.
type Manager interface {
	// RunInTransaction begins a transaction, calls fn with a context
	// carrying it, and commits when fn returns nil or rolls back when it
	// returns an error. A call made while ctx already carries a
	// transaction joins it instead of opening a nested one.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
