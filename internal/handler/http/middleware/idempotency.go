package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyReplayed  = "Idempotent-Replayed"

	idempotencyLockTTL  = 30 * time.Second
	idempotencyCacheTTL = 24 * time.Hour
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func idempotencyKeys(r *http.Request, key string) (cacheKey, lockKey string) {
	user := r.RemoteAddr
	if p, ok := PrincipalFromContext(r.Context()); ok {
		user = p.UserID
	}
	cacheKey = fmt.Sprintf("idemp:%s:%s:%s", r.URL.Path, user, key)
	return cacheKey, cacheKey + ":lock"
}

// Idempotency replays the stored response of a POST that carried the same Idempotency-Key.
// A second request arriving while the first is still running gets 409. Redis failures
// fall through to the handler; the storage constraints still hold.
func Idempotency(rdb redis.Cmdable) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if rdb == nil || key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > 128 {
				response.BadRequest(w, "Idempotency-Key must be at most 128 characters", nil)
				return
			}

			ctx := r.Context()
			cacheKey, lockKey := idempotencyKeys(r, key)

			val, err := rdb.Get(ctx, cacheKey).Bytes()
			switch {
			case err == nil:
				var cached cachedResponse
				if err := json.Unmarshal(val, &cached); err == nil {
					replay(w, cached)
					return
				}
			case !errors.Is(err, redis.Nil):
				slog.Warn("idempotency lookup failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
			if err != nil {
				slog.Warn("idempotency lock failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				response.Conflict(w, "A request with this Idempotency-Key is still being processed")
				return
			}

			rec := &recordingWriter{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status != 0 && rec.status < http.StatusInternalServerError {
				data, err := json.Marshal(cachedResponse{
					Status:      rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.body.Bytes(),
				})
				if err == nil {
					if err := rdb.Set(ctx, cacheKey, string(data), idempotencyCacheTTL).Err(); err != nil {
						slog.Warn("idempotency store failed", "error", err)
					}
				}
			}
			if err := rdb.Del(ctx, lockKey).Err(); err != nil {
				slog.Warn("idempotency unlock failed", "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, cached cachedResponse) {
	if cached.ContentType != "" {
		w.Header().Set("Content-Type", cached.ContentType)
	}
	w.Header().Set(idempotencyReplayed, "true")
	w.WriteHeader(cached.Status)
	_, _ = w.Write(cached.Body)
}
