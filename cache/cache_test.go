package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/codelens-ai/codelens/llm"
)

func openTestCache(t *testing.T, ttl time.Duration, revision RevisionFunc) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl, revision, zerolog.Nop())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func testRequest(prompt string) *llm.CompletionRequest {
	return &llm.CompletionRequest{Prompt: prompt, Model: "test-model", MaxTokens: 100, Temperature: 0.2}
}

func TestCacheSetGetRoundtrip(t *testing.T) {
	c := openTestCache(t, time.Hour, nil)
	req := testRequest("hello")
	want := &llm.CompletionResult{Content: "world", InputTokens: 10, OutputTokens: 20, Cost: 0.0015}

	if err := c.Set(req, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(req)
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if *got != *want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestCacheMiss(t *testing.T) {
	c := openTestCache(t, time.Hour, nil)
	if _, ok := c.Get(testRequest("never stored")); ok {
		t.Error("Expected a miss for an unstored request")
	}
}

func TestCacheMissOnDifferentRequest(t *testing.T) {
	c := openTestCache(t, time.Hour, nil)
	if err := c.Set(testRequest("prompt one"), &llm.CompletionResult{Content: "x"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := c.Get(testRequest("prompt two")); ok {
		t.Error("Expected a miss for a different prompt")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := openTestCache(t, time.Hour, nil)
	req := testRequest("ages")
	if err := c.Set(req, &llm.CompletionResult{Content: "fresh"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Advance the clock past the TTL.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, ok := c.Get(req); ok {
		t.Error("Expected an expired entry to miss")
	}

	// The expired entry must have been evicted, not just skipped.
	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Expected eviction on expiry, found %d entries", stats.Entries)
	}
}

func TestCacheRevisionChangeInvalidates(t *testing.T) {
	current := "rev-a"
	c := openTestCache(t, time.Hour, func() string { return current })

	req := testRequest("revisioned")
	if err := c.Set(req, &llm.CompletionResult{Content: "at rev-a"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := c.Get(req); !ok {
		t.Fatal("Expected a hit at the recording revision")
	}

	current = "rev-b"
	if _, ok := c.Get(req); ok {
		t.Error("Expected a miss after the revision changed")
	}
}

func TestCacheUndeterminableRevisionAtRead(t *testing.T) {
	// Recorded at a known revision; current revision can no longer be
	// determined. The entry cannot be validated and must miss.
	current := "rev-a"
	c := openTestCache(t, time.Hour, func() string { return current })

	req := testRequest("was revisioned")
	if err := c.Set(req, &llm.CompletionResult{Content: "x"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	current = ""
	if _, ok := c.Get(req); ok {
		t.Error("Expected a miss when the current revision is undeterminable")
	}
}

func TestCacheEntryWithoutRevisionAlwaysValid(t *testing.T) {
	// Recorded without a revision; stays valid whatever the tree does.
	current := ""
	c := openTestCache(t, time.Hour, func() string { return current })

	req := testRequest("unversioned")
	if err := c.Set(req, &llm.CompletionResult{Content: "x"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	current = "rev-z"
	if _, ok := c.Get(req); !ok {
		t.Error("Expected an entry recorded without a revision to stay valid")
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := openTestCache(t, time.Hour, nil)
	req := testRequest("updated")

	if err := c.Set(req, &llm.CompletionResult{Content: "old"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(req, &llm.CompletionResult{Content: "new"}); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, ok := c.Get(req)
	if !ok {
		t.Fatal("Expected a hit")
	}
	if got.Content != "new" {
		t.Errorf("Expected last write to win, got %q", got.Content)
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 {
		t.Errorf("Expected a single row per fingerprint, got %d", stats.Entries)
	}
}

func TestCacheClearAndStats(t *testing.T) {
	c := openTestCache(t, time.Hour, nil)
	for _, p := range []string{"a", "b", "c"} {
		if err := c.Set(testRequest(p), &llm.CompletionResult{Content: p}); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 3 {
		t.Errorf("Expected 3 entries, got %d", stats.Entries)
	}
	if stats.Bytes == 0 {
		t.Error("Expected non-zero stored bytes")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, err = c.Stats()
	if err != nil {
		t.Fatalf("Stats after clear: %v", err)
	}
	if stats.Entries != 0 || stats.Bytes != 0 {
		t.Errorf("Expected empty cache after clear, got %+v", stats)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	c, err := Open(path, time.Hour, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open with nested path: %v", err)
	}
	c.Close()
}
