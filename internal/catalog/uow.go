package catalog

import (
	"context"
	"errors"
)

// UnitOfWork scopes one logical transaction over a Repository.
//
// Begin takes exclusive access and loads state; nothing reaches durable
// storage until Commit. Rollback never writes and resets the repository to its
// last committed state. Close ends the scope, rolls back anything uncommitted
// and always releases exclusive access.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Products() Repository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close() error
}

// Run brackets fn with Begin and Close. Close runs even when fn or a commit
// inside it fails.
func Run(ctx context.Context, uow UnitOfWork, fn func(repo Repository) error) (err error) {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if cerr := uow.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(uow.Products())
}
