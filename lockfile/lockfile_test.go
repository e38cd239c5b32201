//go:build unix

package lockfile

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "op.lock")

	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
}

func TestAcquire_Reentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "op.lock")

	// Acquire and release repeatedly; the lock file persists across uses.
	for i := 0; i < 3; i++ {
		lock, err := Acquire(path)
		if err != nil {
			t.Fatalf("Acquire() iteration %d error = %v", i, err)
		}
		if err := lock.Release(); err != nil {
			t.Fatalf("Release() iteration %d error = %v", i, err)
		}
	}
}

func TestAcquire_Serializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "op.lock")

	var inCritical atomic.Int32
	var overlaps atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock, err := Acquire(path)
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			if inCritical.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(5 * time.Millisecond)
			inCritical.Add(-1)
			if err := lock.Release(); err != nil {
				t.Errorf("Release() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if n := overlaps.Load(); n != 0 {
		t.Errorf("critical section overlapped %d times, want 0", n)
	}
}

func TestSupported(t *testing.T) {
	if !Supported() {
		t.Error("Supported() should be true on unix")
	}
}
