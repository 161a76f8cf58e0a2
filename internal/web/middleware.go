package web

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

// requestLogger logs one line per request with its status, size and latency.
func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if r.URL.Path == "/health" {
				return
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.WithFields(logrus.Fields{
				"request_id":  id,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			})
			switch {
			case status >= 500:
				log.Error("Request failed")
			case status >= 400:
				log.Warn("Request rejected")
			default:
				log.Info("Request served")
			}
		})
	}
}

// rateLimiter keeps one token bucket per client address. Idle buckets expire
// from the cache.
type rateLimiter struct {
	mu     sync.Mutex
	limit  rate.Limit
	burst  int
	bucket *expirable.LRU[string, *rate.Limiter]
	log    logrus.FieldLogger
}

const (
	limiterCacheSize = 10000
	limiterIdleTTL   = 3 * time.Minute
)

func newRateLimiter(limit rate.Limit, burst int, logger logrus.FieldLogger) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		burst:  burst,
		bucket: expirable.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, limiterIdleTTL),
		log:    logger,
	}
}

func (rl *rateLimiter) limiter(addr string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.bucket.Get(addr)
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
	}
	// Re-adding refreshes the idle timer.
	rl.bucket.Add(addr, l)
	return l
}

func clientAddr(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddr(r)
		l := rl.limiter(addr)

		reservation := l.Reserve()
		if !reservation.OK() {
			respondError(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			rl.log.WithFields(logrus.Fields{"addr": addr, "path": r.URL.Path}).Warn("Rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			respondError(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
