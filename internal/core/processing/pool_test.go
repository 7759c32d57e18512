package processing_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/processing"
	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T, capacity int) *processing.DirectoryPool {
	t.Helper()
	pool, err := processing.NewDirectoryPool(t.TempDir(), capacity, logger.Nop())
	require.NoError(t, err)
	return pool
}

func acquireAsync(ctx context.Context, pool *processing.DirectoryPool) <-chan *domain.WorkDirectory {
	ch := make(chan *domain.WorkDirectory, 1)
	go func() {
		dir, err := pool.Acquire(ctx)
		if err == nil {
			ch <- dir
		}
		close(ch)
	}()
	return ch
}

func waitForWaiters(t *testing.T, pool *processing.DirectoryPool, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return pool.Stats().Waiters == n
	}, time.Second, 5*time.Millisecond)
}

func TestNewDirectoryPool_RequiresRoot(t *testing.T) {
	_, err := processing.NewDirectoryPool(filepath.Join(t.TempDir(), "missing"), 2, logger.Nop())
	assert.Error(t, err)

	_, err = processing.NewDirectoryPool(t.TempDir(), 0, logger.Nop())
	assert.Error(t, err)
}

func TestNewDirectoryPool_AdoptsExistingDirectories(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), nil, 0o644))

	pool, err := processing.NewDirectoryPool(root, 2, logger.Nop())
	require.NoError(t, err)

	stats := pool.Stats()
	assert.Equal(t, 2, stats.Live)
	assert.Equal(t, 2, stats.Available)

	dir, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, root, filepath.Dir(dir.Path))
	assert.Equal(t, 2, pool.LiveCount())
}

func TestDirectoryPool_AcquireCreatesDirectories(t *testing.T) {
	pool := newPool(t, 2)
	ctx := context.Background()

	first, err := pool.Acquire(ctx)
	require.NoError(t, err)
	second, err := pool.Acquire(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	assert.DirExists(t, first.Path)
	assert.DirExists(t, second.Path)
	assert.Equal(t, domain.PoolState{Capacity: 2, Live: 2, Available: 0}, pool.Stats())
}

func TestDirectoryPool_ReleaseWakesExactlyOneWaiter(t *testing.T) {
	pool := newPool(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = pool.Acquire(ctx)
	require.NoError(t, err)

	third := acquireAsync(ctx, pool)
	fourth := acquireAsync(ctx, pool)
	waitForWaiters(t, pool, 2)

	require.NoError(t, pool.Release(first))

	var got *domain.WorkDirectory
	select {
	case got = <-third:
	case got = <-fourth:
	case <-time.After(time.Second):
		t.Fatal("no waiter was woken")
	}
	require.NotNil(t, got)
	assert.Equal(t, first.Path, got.Path)

	// The other waiter keeps waiting.
	waitForWaiters(t, pool, 1)
	assert.Equal(t, 2, pool.LiveCount())
	assert.Equal(t, 0, pool.Stats().Available)
}

func TestDirectoryPool_ReleaseOfMissingDirectoryRetiresIt(t *testing.T) {
	pool := newPool(t, 1)
	ctx := context.Background()

	dir, err := pool.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir.Path))

	require.NoError(t, pool.Release(dir))
	assert.Equal(t, domain.PoolState{Capacity: 1, Live: 0, Available: 0}, pool.Stats())

	fresh, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, dir.Path, fresh.Path)
	assert.DirExists(t, fresh.Path)
	assert.Equal(t, 1, pool.LiveCount())
}

func TestDirectoryPool_IdleDirectoryRemovedExternally(t *testing.T) {
	pool := newPool(t, 1)
	ctx := context.Background()

	dir, err := pool.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, pool.Release(dir))
	require.NoError(t, os.RemoveAll(dir.Path))

	fresh, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, dir.Path, fresh.Path)
	assert.Equal(t, 1, pool.LiveCount())
}

func TestDirectoryPool_ReleaseUnknownDirectory(t *testing.T) {
	pool := newPool(t, 1)

	err := pool.Release(&domain.WorkDirectory{Path: t.TempDir()})
	assert.ErrorIs(t, err, domain.ErrUnknownDirectory)

	dir, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, pool.Release(dir))
	assert.ErrorIs(t, pool.Release(dir), domain.ErrUnknownDirectory)
	assert.Equal(t, 1, pool.Stats().Available)
}

func TestDirectoryPool_CanceledAcquireDoesNotLeak(t *testing.T) {
	pool := newPool(t, 1)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(ctx)
		errs <- err
	}()
	waitForWaiters(t, pool, 1)

	cancel()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, domain.ErrAcquireCanceled)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled acquire did not return")
	}
	assert.Equal(t, 0, pool.Stats().Waiters)

	require.NoError(t, pool.Release(held))
	again, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, held.Path, again.Path)
}

func TestDirectoryPool_NeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	pool := newPool(t, capacity)

	var (
		current atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
		mu      sync.Mutex
		owned   = make(map[string]bool)
	)

	for range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir, err := pool.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			assert.False(t, owned[dir.Path], "directory handed out twice")
			owned[dir.Path] = true
			mu.Unlock()

			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)

			mu.Lock()
			owned[dir.Path] = false
			mu.Unlock()
			assert.NoError(t, pool.Release(dir))
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, int(peak.Load()), capacity)
	stats := pool.Stats()
	assert.LessOrEqual(t, stats.Available, stats.Live)
	assert.LessOrEqual(t, stats.Live, stats.Capacity)
	assert.Equal(t, 0, stats.Waiters)
}
