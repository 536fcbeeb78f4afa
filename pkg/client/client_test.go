package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newCountingServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt64(hits, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":{"value":%d}}`, atomic.LoadInt64(hits))
	}))
}

type valuePayload struct {
	Value int `json:"value"`
}

func TestGetIsCached(t *testing.T) {
	var hits int64
	srv := newCountingServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	var first, second valuePayload
	if err := c.Get(ctx, "/api/v1/exams/mine", &first); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if err := c.Get(ctx, "/api/v1/exams/mine", &second); err != nil {
		t.Fatalf("second get: %v", err)
	}

	if hits != 1 {
		t.Fatalf("server hit %d times, want 1 (cached)", hits)
	}
	if first.Value != second.Value {
		t.Errorf("cached response differs: %d vs %d", first.Value, second.Value)
	}
}

func TestCacheExpires(t *testing.T) {
	var hits int64
	srv := newCountingServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, WithCacheTTL(10*time.Millisecond))
	ctx := context.Background()

	if err := c.Get(ctx, "/x", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := c.Get(ctx, "/x", nil); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}

	if hits != 2 {
		t.Fatalf("server hit %d times, want 2 after TTL", hits)
	}
}

func TestWriteInvalidatesCache(t *testing.T) {
	var hits int64
	srv := newCountingServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	if err := c.Get(ctx, "/exams", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := c.Post(ctx, "/exam-results", map[string]string{}, nil); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := c.Get(ctx, "/exams", nil); err != nil {
		t.Fatalf("get after write: %v", err)
	}

	if hits != 2 {
		t.Fatalf("server hit %d times, want 2 (write flushed cache)", hits)
	}
}

func TestConcurrentGetsShareOneRequest(t *testing.T) {
	var hits int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"value":1}}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Get(ctx, "/slow", nil)
		}(i)
	}

	// Let the goroutines pile onto the in-flight call, then release.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Fatalf("server hit %d times, want 1 (deduplicated)", hits)
	}
}

func TestAPIErrorCarriesCodeAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":    "ALREADY_COMPLETED",
				"message": "এই পরীক্ষাটি একবারই দেওয়া যাবে। আপনি ইতিমধ্যে অংশগ্রহণ করেছেন।",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Post(context.Background(), "/exam-results", map[string]string{}, nil)

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("got %T (%v), want *APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Code != "ALREADY_COMPLETED" {
		t.Errorf("code = %q", apiErr.Code)
	}
}

func TestSetTokenFlushesCache(t *testing.T) {
	var hits int64
	srv := newCountingServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	c.SetToken("token-a")
	if err := c.Get(ctx, "/exams/mine", nil); err != nil {
		t.Fatalf("get: %v", err)
	}

	c.SetToken("token-b")
	if err := c.Get(ctx, "/exams/mine", nil); err != nil {
		t.Fatalf("get as other user: %v", err)
	}

	if hits != 2 {
		t.Fatalf("server hit %d times, want 2 (cache is token-scoped)", hits)
	}
}
