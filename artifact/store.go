package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// MarkerName is the sweep marker file at the cache root. Its mtime
	// records the last janitor sweep.
	MarkerName = "sweep.marker"

	// DataDirName is the per-TTL bucket tree under the cache root.
	DataDirName = "data"

	// artifactPrefix names artifact directories inside a bucket; everything
	// else in a bucket is a published pointer.
	artifactPrefix = "art-"

	stdoutFile = "stdout"
	stderrFile = "stderr"
	exitFile   = "exit"
)

// Store is a disk-backed artifact store rooted at a single directory shared
// by all processes using the same configuration.
//
// Contract:
// - Concurrency: safe for concurrent use within and across processes.
// - Reads: a failed or ambiguous read is a miss, never an error.
// - Writes: publish is last-writer-wins at the pointer swap.
type Store struct {
	root string

	mu    sync.Mutex
	ready bool
}

// DefaultRoot returns the per-user default cache root under the OS temp
// directory, so abandoned caches are eventually reclaimed by temp rotation.
func DefaultRoot() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("runcache-%d", os.Getuid()))
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// first use, with permissions restricted to the owning user.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultRoot()
	}
	return &Store{root: dir}
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// MarkerPath returns the sweep marker path.
func (s *Store) MarkerPath() string {
	return filepath.Join(s.root, MarkerName)
}

// DataDir returns the bucket tree root.
func (s *Store) DataDir() string {
	return filepath.Join(s.root, DataDirName)
}

// BucketDir returns the bucket directory governing artifacts with the given
// TTL. The bucket name is the whole-second TTL, which is how the janitor
// knows each artifact's governing TTL without per-artifact metadata.
func (s *Store) BucketDir(ttl time.Duration) string {
	return filepath.Join(s.DataDir(), strconv.FormatInt(int64(ttl/time.Second), 10))
}

// init creates the cache root on first use.
func (s *Store) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := os.MkdirAll(s.DataDir(), 0o700); err != nil {
		return fmt.Errorf("artifact: creating cache root: %w", err)
	}
	// Restrict a pre-existing root too.
	if err := os.Chmod(s.root, 0o700); err != nil {
		return fmt.Errorf("artifact: restricting cache root: %w", err)
	}
	s.ready = true
	return nil
}

// Write persists art into the TTL bucket and atomically publishes it under
// fp. The artifact directory is freshly created and never mutated afterward;
// a superseded artifact is left orphaned for the janitor.
func (s *Store) Write(fp string, ttl time.Duration, art *Artifact) error {
	if err := s.init(); err != nil {
		return err
	}

	bucket := s.BucketDir(ttl)
	if err := os.MkdirAll(bucket, 0o700); err != nil {
		return fmt.Errorf("artifact: creating bucket: %w", err)
	}

	dir, err := os.MkdirTemp(bucket, artifactPrefix)
	if err != nil {
		return fmt.Errorf("artifact: creating artifact dir: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(dir)
		}
	}()

	// Raw writes: no encoding layer that could trim trailing whitespace or
	// choke on NUL bytes.
	if err := os.WriteFile(filepath.Join(dir, stdoutFile), art.Stdout, 0o600); err != nil {
		return fmt.Errorf("artifact: writing stdout: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stderrFile), art.Stderr, 0o600); err != nil {
		return fmt.Errorf("artifact: writing stderr: %w", err)
	}
	exit := strconv.Itoa(art.ExitCode)
	if err := os.WriteFile(filepath.Join(dir, exitFile), []byte(exit), 0o600); err != nil {
		return fmt.Errorf("artifact: writing exit status: %w", err)
	}

	if err := s.publish(bucket, fp, filepath.Base(dir)); err != nil {
		return err
	}
	committed = true
	return nil
}

// publish atomically swaps the pointer for fp to target. A temporary symlink
// is created next to the pointer and renamed over it; rename replaces the
// old link in one step.
func (s *Store) publish(bucket, fp, target string) error {
	tmp := filepath.Join(bucket, fp+".tmp-"+strings.TrimPrefix(target, artifactPrefix))
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("artifact: creating pointer: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(bucket, fp)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("artifact: publishing pointer: %w", err)
	}
	return nil
}

// Read resolves the published pointer for fp and reads the artifact back.
// An absent or dangling pointer, or any unreadable component file, is a
// cache miss: Read returns (nil, false) and never an error, because a racing
// janitor sweep or concurrent writer is expected, not exceptional.
func (s *Store) Read(fp string, ttl time.Duration) (*Artifact, bool) {
	pointer := filepath.Join(s.BucketDir(ttl), fp)

	// Stat follows the symlink; its target directory's mtime is the
	// artifact's creation time.
	info, err := os.Stat(pointer)
	if err != nil || !info.IsDir() {
		return nil, false
	}

	stdout, err := os.ReadFile(filepath.Join(pointer, stdoutFile))
	if err != nil {
		return nil, false
	}
	stderr, err := os.ReadFile(filepath.Join(pointer, stderrFile))
	if err != nil {
		return nil, false
	}
	exitRaw, err := os.ReadFile(filepath.Join(pointer, exitFile))
	if err != nil {
		return nil, false
	}
	exitCode, err := strconv.Atoi(strings.TrimSpace(string(exitRaw)))
	if err != nil {
		return nil, false
	}

	return &Artifact{
		Stdout:    stdout,
		Stderr:    stderr,
		ExitCode:  exitCode,
		CreatedAt: info.ModTime(),
	}, true
}

// Remove unpublishes fp by unlinking its pointer. The artifact directory is
// left for the janitor so a concurrent reader holding it open is unaffected.
// Idempotent: removing an absent pointer is not an error.
func (s *Store) Remove(fp string, ttl time.Duration) error {
	err := os.Remove(filepath.Join(s.BucketDir(ttl), fp))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("artifact: removing pointer: %w", err)
	}
	return nil
}

// Bucket describes one per-TTL bucket in the data tree.
type Bucket struct {
	// TTL is the governing TTL parsed from the bucket name.
	TTL time.Duration

	// Path is the bucket directory.
	Path string
}

// Buckets enumerates the per-TTL buckets currently present. Bucket
// directories with unparseable names are skipped.
func (s *Store) Buckets() []Bucket {
	entries, err := os.ReadDir(s.DataDir())
	if err != nil {
		return nil
	}
	buckets := make([]Bucket, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		secs, err := strconv.ParseInt(e.Name(), 10, 64)
		if err != nil || secs <= 0 {
			continue
		}
		buckets = append(buckets, Bucket{
			TTL:  time.Duration(secs) * time.Second,
			Path: filepath.Join(s.DataDir(), e.Name()),
		})
	}
	return buckets
}

// IsArtifactDir reports whether a bucket entry name is an artifact directory
// (as opposed to a published pointer).
func IsArtifactDir(name string) bool {
	return strings.HasPrefix(name, artifactPrefix)
}
