package services

import (
	"context"

	"gorm.io/gorm"
)

type commitHooksKey struct{}

type commitHooks struct{ fns []func() }

// transaction runs fn in a database transaction and then, once it has
// committed, the functions registered with afterCommit.
func transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	hooks := &commitHooks{}
	ctx = context.WithValue(ctx, commitHooksKey{}, hooks)
	if err := db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}
	for _, f := range hooks.fns {
		f()
	}
	return nil
}

// afterCommit defers f until the transaction opened by transaction commits.
// A rolled back transaction drops f. Outside such a transaction f runs at once.
func afterCommit(tx *gorm.DB, f func()) {
	if tx.Statement != nil && tx.Statement.Context != nil {
		if hooks, ok := tx.Statement.Context.Value(commitHooksKey{}).(*commitHooks); ok {
			hooks.fns = append(hooks.fns, f)
			return
		}
	}
	f()
}
