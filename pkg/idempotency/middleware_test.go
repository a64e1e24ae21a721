package idempotency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderflow/order-service/pkg/logging"
)

type fakeSetNX struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func (f *fakeSetNX) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if f.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func newHandler(store *Store) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	return Middleware(logging.New(), store)(next)
}

func TestReplayedKeyRejected(t *testing.T) {
	h := newHandler(NewStore(&fakeSetNX{keys: map[string]bool{}}, time.Minute))

	req := httptest.NewRequest(http.MethodPost, "/order", nil)
	req.Header.Set(Header, "abc-123")

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	if first.Code != http.StatusAccepted {
		t.Fatalf("first request = %d, want 202", first.Code)
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req.Clone(req.Context()))
	if second.Code != http.StatusConflict {
		t.Fatalf("replay = %d, want 409", second.Code)
	}
}

func TestNoHeaderPassesThrough(t *testing.T) {
	h := newHandler(NewStore(&fakeSetNX{keys: map[string]bool{}}, time.Minute))

	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/order", nil))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("request without key = %d, want 202", rec.Code)
		}
	}
}

func TestGetIgnored(t *testing.T) {
	h := newHandler(NewStore(&fakeSetNX{keys: map[string]bool{}}, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/order/1", nil)
	req.Header.Set(Header, "abc-123")
	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("GET with key = %d, want 202", rec.Code)
		}
	}
}
