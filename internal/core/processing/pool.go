package processing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/platform/logger"
)

// DirectoryPool hands out reusable work directories below a root folder.
// At most capacity directories exist at a time and each one is owned by a single
// pipeline between Acquire and Release.
type DirectoryPool struct {
	root     string
	capacity int
	log      logger.Logger

	mu      sync.Mutex
	idle    []*domain.WorkDirectory
	inUse   map[*domain.WorkDirectory]struct{}
	live    int
	waiters int
	// released is closed and replaced on every Release so all waiters re-check.
	released chan struct{}
}

// NewDirectoryPool creates a pool below root, which must already exist.
// Subdirectories already present in root are adopted as idle directories.
func NewDirectoryPool(root string, capacity int, log logger.Logger) (*DirectoryPool, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("invalid directory pool size %d", capacity)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("pool directory %s: %w", root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("pool directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pool directory %s is not a directory", root)
	}

	p := &DirectoryPool{
		root:     root,
		capacity: capacity,
		log:      log,
		inUse:    make(map[*domain.WorkDirectory]struct{}),
		released: make(chan struct{}),
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || len(p.idle) == capacity {
			continue
		}
		p.idle = append(p.idle, &domain.WorkDirectory{Path: filepath.Join(root, entry.Name())})
		p.live++
	}

	log.Info(fmt.Sprintf("%d of %d work directories already present", p.live, capacity),
		logger.WithField("root", root))

	return p, nil
}

// Acquire blocks until a directory is idle or a new one may be created.
// If ctx is done first it returns an error wrapping domain.ErrAcquireCanceled.
func (p *DirectoryPool) Acquire(ctx context.Context) (*domain.WorkDirectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAcquireCanceled, err)
	}

	p.mu.Lock()
	waiting := false
	for {
		dir, err := p.takeLocked()
		if err != nil || dir != nil {
			if waiting {
				p.waiters--
			}
			p.mu.Unlock()
			return dir, err
		}

		if !waiting {
			p.waiters++
			waiting = true
		}
		wake := p.released
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.waiters--
			p.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", domain.ErrAcquireCanceled, ctx.Err())
		case <-wake:
		}

		p.mu.Lock()
	}
}

// takeLocked returns an idle directory, a fresh one or nil when the pool is exhausted.
func (p *DirectoryPool) takeLocked() (*domain.WorkDirectory, error) {
	for len(p.idle) > 0 {
		dir := p.idle[0]
		p.idle[0] = nil
		p.idle = p.idle[1:]

		if !dir.Exists() {
			p.live--
			p.log.Warn("Idle work directory disappeared", logger.WithField("path", dir.Path))
			continue
		}

		p.inUse[dir] = struct{}{}
		p.log.Debug("Reusing work directory",
			logger.WithField("path", dir.Path),
			logger.WithField("last_ref", dir.LastRef))
		return dir, nil
	}

	if p.live >= p.capacity {
		return nil, nil
	}

	path := filepath.Join(p.root, uuid.NewString())
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	dir := &domain.WorkDirectory{Path: path}
	p.live++
	p.inUse[dir] = struct{}{}
	p.log.Debug("Created work directory", logger.WithField("path", path))
	return dir, nil
}

// Release returns dir to the pool. A directory whose folder was removed is retired
// so that a later Acquire creates a replacement.
func (p *DirectoryPool) Release(dir *domain.WorkDirectory) error {
	if dir == nil {
		return errors.New("release of nil work directory")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.inUse[dir]; !ok {
		return fmt.Errorf("release %s: %w", dir.Path, domain.ErrUnknownDirectory)
	}
	delete(p.inUse, dir)

	if dir.Exists() {
		p.idle = append(p.idle, dir)
	} else {
		p.live--
		p.log.Warn("Released work directory no longer exists", logger.WithField("path", dir.Path))
	}

	close(p.released)
	p.released = make(chan struct{})
	return nil
}

// Stats returns a consistent snapshot of the pool counters.
func (p *DirectoryPool) Stats() domain.PoolState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return domain.PoolState{
		Capacity:  p.capacity,
		Live:      p.live,
		Available: len(p.idle),
		Waiters:   p.waiters,
	}
}

// LiveCount returns the number of materialized directories.
func (p *DirectoryPool) LiveCount() int {
	return p.Stats().Live
}

// Capacity returns the maximum number of directories.
func (p *DirectoryPool) Capacity() int {
	return p.capacity
}

// Root returns the folder the pool creates its directories in.
func (p *DirectoryPool) Root() string {
	return p.root
}
