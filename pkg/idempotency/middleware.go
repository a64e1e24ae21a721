package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd
}

type Store struct {
	rdb setNXer
	ttl time.Duration
}

func NewStore(rdb setNXer, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(route, idemKey string) string {
	return fmt.Sprintf("idem:%s:%s", route, idemKey)
}

// Seen claims the key atomically; the second caller with the same key gets
// true.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Middleware rejects a replayed Idempotency-Key on mutating requests with a
// conflict. Requests without the header pass through untouched. A redis
// failure fails open: the request proceeds and the miss is logged.
func Middleware(log *slog.Logger, store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idemKey := r.Header.Get(Header)
			if idemKey == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
				next.ServeHTTP(w, r)
				return
			}

			seen, err := store.Seen(r.Context(), store.Key(r.URL.Path, idemKey))
			if err != nil {
				log.Warn("idempotency check failed, allowing request", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"message":"duplicate request","flag":false,"code":409}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
