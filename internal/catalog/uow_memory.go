package catalog

import "context"

var _ UnitOfWork = (*MemUnitOfWork)(nil)

// MemUnitOfWork keeps its repository across scopes, so a single instance can
// back a Service in tests. Commits counts successful commits.
type MemUnitOfWork struct {
	repo      *MemRepository
	committed map[string]Product
	open      bool

	Commits int
}

func NewMemUnitOfWork(products ...Product) *MemUnitOfWork {
	return &MemUnitOfWork{repo: NewMemRepository(products...)}
}

func (u *MemUnitOfWork) Begin(_ context.Context) error {
	u.open = true
	u.committed = u.repo.snapshot()
	return nil
}

func (u *MemUnitOfWork) Products() Repository { return u.repo }

func (u *MemUnitOfWork) Commit(_ context.Context) error {
	if !u.open {
		return ErrNoScope
	}
	u.committed = u.repo.snapshot()
	u.Commits++
	return nil
}

func (u *MemUnitOfWork) Rollback(_ context.Context) error {
	if !u.open {
		return ErrNoScope
	}
	u.repo.restore(u.committed)
	return nil
}

func (u *MemUnitOfWork) Close() error {
	if !u.open {
		return nil
	}
	u.repo.restore(u.committed)
	u.open = false
	return nil
}
