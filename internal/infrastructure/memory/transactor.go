package memory

import (
	"context"
	"sync"

	"github.com/loopers/commerce-api/internal/domain/repository"
)

type txKey struct{}

// Transactor serializes units of work against a UserRepository and restores
// the repository's previous contents when the unit of work fails.
// Nested calls join the outer unit of work.
type Transactor struct {
	mu    sync.Mutex
	users *UserRepository
}

var _ repository.Transactor = (*Transactor)(nil)

func NewTransactor(users *UserRepository) *Transactor {
	return &Transactor{users: users}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	byID, nextID := t.users.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		t.users.restore(byID, nextID)
		return err
	}
	return nil
}
