package memo

import (
	"bytes"
	"sync"
	"testing"
)

func TestMemoizer_HitOnIdenticalKey(t *testing.T) {
	m := New()

	if _, ok := m.Get("k1"); ok {
		t.Error("Get() on empty memoizer should miss")
	}

	m.Store("k1", []byte("result\n"), 0)

	got, ok := m.Get("k1")
	if !ok {
		t.Fatal("Get() should hit after Store()")
	}
	if !bytes.Equal(got, []byte("result\n")) {
		t.Errorf("Get() = %q, want %q", got, "result\n")
	}
}

func TestMemoizer_DifferentKeyMisses(t *testing.T) {
	m := New()
	m.Store("k1", []byte("one"), 0)

	if _, ok := m.Get("k2"); ok {
		t.Error("Get() with a different key should miss")
	}
}

func TestMemoizer_SingleEntryCapacity(t *testing.T) {
	m := New()
	m.Store("k1", []byte("one"), 0)
	m.Store("k2", []byte("two"), 0)

	// Storing k2 evicted k1: capacity is exactly one entry.
	if _, ok := m.Get("k1"); ok {
		t.Error("k1 should be evicted after storing k2")
	}
	got, ok := m.Get("k2")
	if !ok || string(got) != "two" {
		t.Errorf("Get(k2) = %q, %v; want %q, true", got, ok, "two")
	}
}

func TestMemoizer_FailureNotCached(t *testing.T) {
	m := New()
	m.Store("k1", []byte("failed output"), 1)

	if _, ok := m.Get("k1"); ok {
		t.Error("a failed invocation must not be cached")
	}
}

func TestMemoizer_FailureKeepsPriorEntry(t *testing.T) {
	m := New()
	m.Store("k1", []byte("good"), 0)
	m.Store("k2", []byte("bad"), 1)

	got, ok := m.Get("k1")
	if !ok || string(got) != "good" {
		t.Errorf("prior successful entry should survive a failed store; Get(k1) = %q, %v", got, ok)
	}
}

func TestMemoizer_Reset(t *testing.T) {
	m := New()
	m.Store("k1", []byte("one"), 0)
	m.Reset()

	if _, ok := m.Get("k1"); ok {
		t.Error("Get() should miss after Reset()")
	}
}

func TestMemoizer_Concurrent(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Store("k", []byte("v"), 0)
			m.Get("k")
		}()
	}
	wg.Wait()

	got, ok := m.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get(k) = %q, %v; want %q, true", got, ok, "v")
	}
}
