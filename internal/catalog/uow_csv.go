package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

const (
	DefaultLockTimeout  = 5 * time.Second
	DefaultPollInterval = 100 * time.Millisecond

	filePerm = 0o644
)

type Config struct {
	Path         string
	LockTimeout  time.Duration
	PollInterval time.Duration
	// StaleAfter lets a waiter remove a lock file older than this. Zero
	// disables reclaiming.
	StaleAfter time.Duration
}

func (c Config) withDefaults() Config {
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return c
}

// Ping checks that the catalog directory accepts new files, which both the
// lock and commit need. It does not take the lock.
func (c Config) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(c.Path), ".ping-*")
	if err != nil {
		return fmt.Errorf("catalog dir not writable: %w", err)
	}
	name := f.Name()
	return errors.Join(f.Close(), os.Remove(name))
}

var _ UnitOfWork = (*CSVUnitOfWork)(nil)

type CSVUnitOfWork struct {
	cfg     Config
	log     *zap.Logger
	metrics *Metrics
	lock    *FileLock

	repo      *CSVRepository
	committed map[string]Product
}

func NewCSVUnitOfWork(cfg Config, log *zap.Logger, m *Metrics) *CSVUnitOfWork {
	cfg = cfg.withDefaults()
	log = orNop(log)
	return &CSVUnitOfWork{
		cfg:     cfg,
		log:     log,
		metrics: m,
		lock:    NewFileLock(cfg, log, m),
	}
}

// NewCSVUnitOfWorkFactory returns a constructor suitable for Service.NewUoW.
func NewCSVUnitOfWorkFactory(cfg Config, log *zap.Logger, m *Metrics) func() UnitOfWork {
	return func() UnitOfWork { return NewCSVUnitOfWork(cfg, log, m) }
}

func (u *CSVUnitOfWork) Begin(ctx context.Context) error {
	if u.repo != nil {
		return errors.New("unit of work already started")
	}

	if err := u.lock.Acquire(ctx); err != nil {
		return err
	}

	repo, err := LoadCSVRepository(u.cfg.Path)
	if err != nil {
		return errors.Join(err, u.lock.Release())
	}

	u.repo = repo
	u.committed = repo.snapshot()
	return nil
}

// Products returns nil outside a scope.
func (u *CSVUnitOfWork) Products() Repository {
	if u.repo == nil {
		return nil
	}
	return u.repo
}

// Commit replaces the catalog file with a full snapshot of the repository.
// The new content is written to a temporary file and renamed over the old
// one, so readers never see a partial file.
func (u *CSVUnitOfWork) Commit(ctx context.Context) error {
	if u.repo == nil {
		return ErrNoScope
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := u.write()
	u.metrics.commit(err)
	if err != nil {
		return err
	}

	u.committed = u.repo.snapshot()
	return nil
}

func (u *CSVUnitOfWork) write() error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, u.repo.List()); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := renameio.WriteFile(u.cfg.Path, buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}
	return nil
}

// Rollback discards uncommitted changes in memory. It never touches the file.
func (u *CSVUnitOfWork) Rollback(_ context.Context) error {
	if u.repo == nil {
		return ErrNoScope
	}
	u.repo.restore(u.committed)
	return nil
}

func (u *CSVUnitOfWork) Close() error {
	if u.repo == nil {
		return nil
	}
	u.repo.restore(u.committed)
	u.repo = nil
	u.committed = nil

	if err := u.lock.Release(); err != nil {
		u.log.Error("release catalog lock failed", zap.Error(err), zap.String("lock", u.lock.Path()))
		return err
	}
	return nil
}
