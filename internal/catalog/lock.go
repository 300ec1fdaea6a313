package catalog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockSuffix    = ".lock"
	reclaimSuffix = ".reclaim"
)

// FileLock is an advisory lock expressed as a sentinel file next to the
// catalog file. Exclusive create is the only mutual exclusion primitive, so
// it holds across processes as well as goroutines.
type FileLock struct {
	path       string
	timeout    time.Duration
	poll       time.Duration
	staleAfter time.Duration

	log     *zap.Logger
	metrics *Metrics

	token string

	// beforeReclaim runs after a waiter judged the lock stale and before it
	// takes the reclaim guard.
	beforeReclaim func()
}

func NewFileLock(cfg Config, log *zap.Logger, m *Metrics) *FileLock {
	cfg = cfg.withDefaults()
	return &FileLock{
		path:       LockPath(cfg.Path),
		timeout:    cfg.LockTimeout,
		poll:       cfg.PollInterval,
		staleAfter: cfg.StaleAfter,
		log:        orNop(log),
		metrics:    m,
	}
}

func LockPath(catalogPath string) string { return catalogPath + lockSuffix }

func (l *FileLock) Path() string { return l.path }

func (l *FileLock) Held() bool { return l.token != "" }

// Acquire polls until the sentinel can be created, the timeout elapses
// (ErrLockTimeout) or ctx is done. Filesystem errors other than "already
// exists" are returned at once.
func (l *FileLock) Acquire(ctx context.Context) error {
	if l.Held() {
		return nil
	}

	start := time.Now()
	deadline := start.Add(l.timeout)
	token := uuid.NewString()

	for {
		err := l.create(token)
		if err == nil {
			l.token = token
			l.metrics.observeLockWait(time.Since(start))
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create lock file: %w", err)
		}

		if l.reclaimStale() {
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			l.metrics.lockTimeout()
			return fmt.Errorf("%w: %s still held after %s", ErrLockTimeout, l.path, l.timeout)
		}

		wait := min(l.poll, remaining)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Release removes the sentinel if this lock still owns it. It is safe to call
// more than once.
func (l *FileLock) Release() error {
	if !l.Held() {
		return nil
	}
	token := l.token
	l.token = ""

	owner, err := readLockToken(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Warn("lock file vanished before release", zap.String("lock", l.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read lock file: %w", err)
	}
	if owner != token {
		return fmt.Errorf("lock %s taken over by another owner", l.path)
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

func (l *FileLock) create(token string) error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	_, werr := fmt.Fprintf(f, "pid=%d\ntoken=%s\nacquired=%s\n",
		os.Getpid(), token, time.Now().UTC().Format(time.RFC3339Nano))
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(l.path)
		return err
	}
	return nil
}

// reclaimStale removes a sentinel older than staleAfter. It reports whether
// the caller should retry immediately.
//
// Waiters serialize reclaiming through a second sentinel, the reclaim guard,
// and re-check the lock file while holding it. A waiter that judged the lock
// stale before another waiter replaced it therefore finds the fresh file and
// leaves it alone.
func (l *FileLock) reclaimStale() bool {
	if l.staleAfter <= 0 {
		return false
	}

	stale, gone := l.stale()
	if gone {
		return true
	}
	if !stale {
		return false
	}
	if l.beforeReclaim != nil {
		l.beforeReclaim()
	}

	guard := l.path + reclaimSuffix
	g, err := os.OpenFile(guard, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			l.checkGuard(guard)
		}
		return false
	}
	_ = g.Close()
	defer func() { _ = os.Remove(guard) }()

	fi, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil {
		return false
	}
	age := time.Since(fi.ModTime())
	if age < l.staleAfter {
		return false
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.log.Warn("stale lock removal failed", zap.String("lock", l.path), zap.Error(err))
		return false
	}

	l.log.Warn("reclaimed stale lock",
		zap.String("lock", l.path),
		zap.Duration("age", age),
	)
	l.metrics.staleReclaim()
	return true
}

func (l *FileLock) stale() (stale, gone bool) {
	fi, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, true
	}
	if err != nil {
		return false, false
	}
	return time.Since(fi.ModTime()) >= l.staleAfter, false
}

// checkGuard reports a reclaim guard left by a process that died mid-reclaim.
// It is never removed automatically; an operator has to delete it.
func (l *FileLock) checkGuard(guard string) {
	fi, err := os.Stat(guard)
	if err != nil || time.Since(fi.ModTime()) < l.staleAfter {
		return
	}
	l.log.Warn("stale reclaim guard blocks lock recovery",
		zap.String("guard", guard),
		zap.Time("modified", fi.ModTime()),
	)
}

func readLockToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if v, ok := strings.CutPrefix(sc.Text(), "token="); ok {
			return v, nil
		}
	}
	return "", sc.Err()
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
