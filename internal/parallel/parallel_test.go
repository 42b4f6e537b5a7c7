package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 10000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForChunks_CoversRange(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	n := 100
	seen := make([]int32, n)
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	}, cfg)

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times", i, c)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestForChunks_Empty(t *testing.T) {
	called := false
	ForChunks(0, func(_, _ int) { called = true }, DefaultConfig())
	if called {
		t.Error("ForChunks(0) should not invoke f")
	}
}

func TestNumChunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}

	if got := NumChunks(0, cfg); got != 0 {
		t.Errorf("NumChunks(0) = %d, want 0", got)
	}
	if got := NumChunks(5, cfg); got != 1 {
		t.Errorf("NumChunks(5) = %d, want 1 (sequential fallback)", got)
	}

	n := 100
	chunks := 0
	ForChunks(n, func(_, _ int) { chunks++ }, Config{Enabled: false})
	if chunks != NumChunks(n, Config{Enabled: false}) {
		t.Errorf("NumChunks disagrees with ForChunks: %d chunks", chunks)
	}
}
