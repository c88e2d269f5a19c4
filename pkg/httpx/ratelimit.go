package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines a token bucket refilled RequestsPerWindow times
// per Window.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Profiles for the code endpoints. Each can be overridden with
// RATELIMIT_{NAME}_REQUESTS, RATELIMIT_{NAME}_WINDOW_SEC and RATELIMIT_{NAME}_BURST.
var (
	// ValidateLimit guards code validation against guessing.
	ValidateLimit = RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	// SendLimit guards outbound email per IP and recipient.
	SendLimit = RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}

	// AdminLimit applies to operator endpoints.
	AdminLimit = RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30}

	// ReadLimit applies to status and health checks.
	ReadLimit = RateLimitConfig{RequestsPerWindow: 120, Window: time.Minute, Burst: 120}
)

func init() {
	ValidateLimit = ParseRateLimitFromEnv("VALIDATE", ValidateLimit)
	SendLimit = ParseRateLimitFromEnv("SEND", SendLimit)
	AdminLimit = ParseRateLimitFromEnv("ADMIN", AdminLimit)
	ReadLimit = ParseRateLimitFromEnv("READ", ReadLimit)
}

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_* variables on def.
// Missing, malformed or non-positive values keep the default.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def

	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}

	return cfg
}

func positiveEnvInt(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyExtractor groups requests into rate limit buckets. An empty key skips
// limiting for that request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address, honouring X-Forwarded-For
// and X-Real-IP set by the ingress.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// JSONFieldKeyExtractor reads a top-level string field from a JSON body and
// restores the body for the handler. Values are lower-cased so that
// "Alice@x" and "alice@x" share a bucket.
func JSONFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, MaxJSONBody))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ""
		}
		s, _ := fields[field].(string)
		return strings.ToLower(strings.TrimSpace(s))
	}
}

// CompositeKeyExtractor joins the non-empty keys of several extractors.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// limiterSet holds one token bucket per key and evicts idle ones.
type limiterSet struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu        sync.Mutex
	lastSweep time.Time
}

func (ls *limiterSet) get(key string) *rate.Limiter {
	if l, ok := ls.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}

	actual, _ := ls.limiters.LoadOrStore(key, rate.NewLimiter(ls.rate, ls.burst))
	ls.sweep()
	return actual.(*rate.Limiter)
}

// sweep drops buckets that have refilled completely, at most every 5 minutes.
func (ls *limiterSet) sweep() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if time.Since(ls.lastSweep) < 5*time.Minute {
		return
	}
	ls.lastSweep = time.Now()

	ls.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(ls.burst) {
			ls.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware rejects requests with 429 once the bucket for their
// key is empty.
func RateLimitMiddleware(cfg RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	ls := &limiterSet{
		rate:      rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			limiter := ls.get(key)
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", cfg.Window.String())

				log.Warn("rate limit exceeded",
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)
				WriteError(w, http.StatusTooManyRequests,
					"rate_limit_exceeded", "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client IP only.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByIPAndJSONField limits by client IP plus a body field, e.g. the
// recipient of a send request.
func RateLimitByIPAndJSONField(cfg RateLimitConfig, field string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":",
		IPKeyExtractor,
		JSONFieldKeyExtractor(field),
	))
}
