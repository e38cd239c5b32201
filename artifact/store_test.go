package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	tests := []struct {
		name string
		art  Artifact
	}{
		{"simple", Artifact{Stdout: []byte("hello\n"), Stderr: []byte(""), ExitCode: 0}},
		{"failure outcome", Artifact{Stdout: []byte("partial"), Stderr: []byte("boom\n"), ExitCode: 3}},
		{"trailing newlines", Artifact{Stdout: []byte("out\n\n\n"), Stderr: []byte("err\n\n"), ExitCode: 0}},
		{"trailing spaces", Artifact{Stdout: []byte("padded   "), Stderr: nil, ExitCode: 0}},
		{"embedded nul", Artifact{Stdout: []byte("a\x00b\x00"), Stderr: []byte("\x00"), ExitCode: 1}},
		{"empty everything", Artifact{Stdout: nil, Stderr: nil, ExitCode: 0}},
		{"negative exit", Artifact{Stdout: []byte("x"), Stderr: nil, ExitCode: -1}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := strings.Repeat("a", 10) + string(rune('0'+i))
			if err := s.Write(fp, time.Minute, &tt.art); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			got, ok := s.Read(fp, time.Minute)
			if !ok {
				t.Fatal("Read() miss after Write()")
			}
			if !bytes.Equal(got.Stdout, tt.art.Stdout) {
				t.Errorf("Stdout = %q, want %q", got.Stdout, tt.art.Stdout)
			}
			if !bytes.Equal(got.Stderr, tt.art.Stderr) {
				t.Errorf("Stderr = %q, want %q", got.Stderr, tt.art.Stderr)
			}
			if got.ExitCode != tt.art.ExitCode {
				t.Errorf("ExitCode = %d, want %d", got.ExitCode, tt.art.ExitCode)
			}
			if got.CreatedAt.IsZero() {
				t.Error("CreatedAt should be set from the artifact dir mtime")
			}
		})
	}
}

func TestStore_ReadMiss(t *testing.T) {
	s := NewStore(t.TempDir())

	if _, ok := s.Read("deadbeef", time.Minute); ok {
		t.Error("Read() on empty store should miss")
	}
}

func TestStore_ReadDanglingPointer(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Write("cafe01", time.Minute, &Artifact{Stdout: []byte("x")}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Simulate the janitor removing the artifact dir out from under the
	// pointer: a dangling pointer must read as a miss, not an error.
	bucket := s.BucketDir(time.Minute)
	entries, err := os.ReadDir(bucket)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if IsArtifactDir(e.Name()) {
			if err := os.RemoveAll(filepath.Join(bucket, e.Name())); err != nil {
				t.Fatalf("RemoveAll() error = %v", err)
			}
		}
	}

	if _, ok := s.Read("cafe01", time.Minute); ok {
		t.Error("Read() through a dangling pointer should miss")
	}
}

func TestStore_RepublishSwapsAtomically(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Write("beef02", time.Minute, &Artifact{Stdout: []byte("old")}); err != nil {
		t.Fatalf("Write(old) error = %v", err)
	}
	if err := s.Write("beef02", time.Minute, &Artifact{Stdout: []byte("new")}); err != nil {
		t.Fatalf("Write(new) error = %v", err)
	}

	got, ok := s.Read("beef02", time.Minute)
	if !ok {
		t.Fatal("Read() miss after republish")
	}
	if string(got.Stdout) != "new" {
		t.Errorf("Stdout = %q, want %q", got.Stdout, "new")
	}

	// The superseded artifact dir is orphaned, not deleted eagerly.
	bucket := s.BucketDir(time.Minute)
	entries, err := os.ReadDir(bucket)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	dirs := 0
	for _, e := range entries {
		if IsArtifactDir(e.Name()) {
			dirs++
		}
	}
	if dirs != 2 {
		t.Errorf("bucket holds %d artifact dirs, want 2 (old one orphaned)", dirs)
	}
}

func TestStore_ConcurrentWritersLastWins(t *testing.T) {
	s := NewStore(t.TempDir())

	var wg sync.WaitGroup
	payloads := []string{"one", "two", "three", "four"}
	for _, p := range payloads {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if err := s.Write("feed03", time.Minute, &Artifact{Stdout: []byte(p)}); err != nil {
				t.Errorf("Write(%q) error = %v", p, err)
			}
		}(p)
	}
	wg.Wait()

	got, ok := s.Read("feed03", time.Minute)
	if !ok {
		t.Fatal("Read() miss after concurrent writes")
	}
	found := false
	for _, p := range payloads {
		if string(got.Stdout) == p {
			found = true
		}
	}
	if !found {
		t.Errorf("Stdout = %q, want one of %v", got.Stdout, payloads)
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Write("dead04", time.Minute, &Artifact{Stdout: []byte("x")}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Remove("dead04", time.Minute); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := s.Read("dead04", time.Minute); ok {
		t.Error("Read() should miss after Remove()")
	}

	// Idempotent.
	if err := s.Remove("dead04", time.Minute); err != nil {
		t.Errorf("Remove() second call error = %v", err)
	}
}

func TestStore_SeparateTTLBuckets(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Write("abcd05", time.Minute, &Artifact{Stdout: []byte("short")}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Write("abcd05", time.Hour, &Artifact{Stdout: []byte("long")}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	short, ok := s.Read("abcd05", time.Minute)
	if !ok || string(short.Stdout) != "short" {
		t.Errorf("Read(1m bucket) = %q, %v; want %q, true", short.Stdout, ok, "short")
	}
	long, ok := s.Read("abcd05", time.Hour)
	if !ok || string(long.Stdout) != "long" {
		t.Errorf("Read(1h bucket) = %q, %v; want %q, true", long.Stdout, ok, "long")
	}

	buckets := s.Buckets()
	if len(buckets) != 2 {
		t.Fatalf("Buckets() = %d, want 2", len(buckets))
	}
}

func TestStore_RootPermissions(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	s := NewStore(root)

	if err := s.Write("aaaa06", time.Minute, &Artifact{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("Stat(root) error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("cache root permissions = %o, want 700", perm)
	}
}

func TestStore_DefaultRoot(t *testing.T) {
	s := NewStore("")
	if s.Root() == "" {
		t.Error("NewStore(\"\") should fall back to the default root")
	}
	if !strings.Contains(s.Root(), "runcache-") {
		t.Errorf("default root %q should be per-user", s.Root())
	}
}

func TestArtifact_Success(t *testing.T) {
	if !(&Artifact{ExitCode: 0}).Success() {
		t.Error("exit 0 should be success")
	}
	if (&Artifact{ExitCode: 1}).Success() {
		t.Error("exit 1 should not be success")
	}
}
