package middleware

import (
	"context"
	"fmt"
	"hash/fnv"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Yug-More/Parallel-AI/internal/metrics"
)

// budget is one endpoint's sliding-window allowance.
type budget struct {
	requests int
	window   time.Duration
	keyFor   func(r *http.Request) string
}

// RateLimiterConfig holds rate limiter options.
type RateLimiterConfig struct {
	Whitelist        []string // IPs or CIDRs exempt from limiting
	AutoBlockEnabled bool     // block IPs after repeated violations
}

// RateLimiter enforces per-endpoint sliding-window budgets in Redis.
// Chat is the expensive endpoint (each turn fans out model calls) so it
// carries the tightest session-keyed budget.
type RateLimiter struct {
	client       *redis.Client
	budgets      map[string]budget
	blocker      *IPBlocker
	logger       zerolog.Logger
	allowedNets  []*net.IPNet
	allowedIPs   map[string]bool
	autoBlock    bool
}

// NewRateLimiter builds the limiter with this API's endpoint budgets.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger, cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		client:     client,
		blocker:    NewIPBlocker(client),
		logger:     logger,
		allowedIPs: make(map[string]bool),
		autoBlock:  cfg.AutoBlockEnabled,
		budgets: map[string]budget{
			"POST /auth/register":  {10, time.Hour, ipKey},
			"POST /auth/login":     {20, time.Minute, ipKey},
			"POST /chat":           {30, time.Minute, sessionKey},
			"POST /rooms":          {30, time.Minute, sessionKey},
			"GET /rooms":           {120, time.Minute, sessionKey},
			"GET /activity":        {60, time.Minute, sessionKey},
			"GET /notifications":   {120, time.Minute, sessionKey},
			"POST /notifications/": {60, time.Minute, sessionKey},
		},
	}

	for _, entry := range cfg.Whitelist {
		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				logger.Warn().Str("entry", entry).Err(err).Msg("invalid CIDR in whitelist")
				continue
			}
			rl.allowedNets = append(rl.allowedNets, ipNet)
		} else {
			rl.allowedIPs[entry] = true
		}
	}

	if len(cfg.Whitelist) > 0 {
		logger.Info().
			Int("ips", len(rl.allowedIPs)).
			Int("cidrs", len(rl.allowedNets)).
			Msg("rate limit whitelist configured")
	}

	return rl
}

func (rl *RateLimiter) isWhitelisted(ipStr string) bool {
	if rl.allowedIPs[ipStr] {
		return true
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, ipNet := range rl.allowedNets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

func ipKey(r *http.Request) string {
	return "ratelimit:ip:" + RealIP(r)
}

// sessionKey derives the limit key from the session cookie, hashed so
// tokens never appear in Redis keys. Falls back to the client IP for
// unauthenticated callers.
func sessionKey(r *http.Request) string {
	cookie, err := r.Cookie("access_token")
	if err != nil || cookie.Value == "" {
		return ipKey(r)
	}
	h := fnv.New64a()
	h.Write([]byte(cookie.Value))
	return fmt.Sprintf("ratelimit:session:%x", h.Sum64())
}

// RealIP resolves the client IP, trusting proxy headers in order:
// Fly-Client-IP, X-Forwarded-For, X-Real-IP, then the socket address.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("Fly-Client-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// checkAndIncrement records the request in its window and reports
// whether it fit the budget, plus the remaining count and reset time.
func (rl *RateLimiter) checkAndIncrement(ctx context.Context, key string, b budget) (bool, int, time.Time) {
	now := time.Now()
	windowKey := fmt.Sprintf("%s:%d", key, now.Unix()/int64(b.window.Seconds()))

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, windowKey, "-inf", strconv.FormatInt(now.Add(-b.window).UnixMilli(), 10))
	countCmd := pipe.ZCard(ctx, windowKey)
	pipe.ZAdd(ctx, windowKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, windowKey, b.window*2)
	_, _ = pipe.Exec(ctx)

	count := countCmd.Val()
	remaining := b.requests - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}
	return count < int64(b.requests), remaining, now.Add(b.window)
}

// Middleware is the http middleware entry point.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := RealIP(r)

		if rl.isWhitelisted(ip) {
			next.ServeHTTP(w, r)
			return
		}

		if rl.blocker.IsBlocked(r.Context(), ip) {
			metrics.BlockedRequests.WithLabelValues("ip_block").Inc()
			rl.logger.Warn().
				Str("type", "security").
				Str("event", "blocked_request").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Msg("blocked IP attempted request")
			http.Error(w, `{"error":"temporarily blocked"}`, http.StatusForbidden)
			return
		}

		b, ok := rl.budgetFor(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := b.keyFor(r)
		allowed, remaining, resetAt := rl.checkAndIncrement(r.Context(), key, b)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(b.requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())))
			rl.trackViolation(r.Context(), ip)
			metrics.RateLimitHits.WithLabelValues(r.URL.Path).Inc()
			rl.logger.Warn().
				Str("type", "security").
				Str("event", "rate_limit_exceeded").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Str("key", key).
				Msg("rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// budgetFor matches "METHOD /path" by prefix, so "POST /rooms" also
// covers the nested transcript ingest route.
func (rl *RateLimiter) budgetFor(r *http.Request) (budget, bool) {
	key := r.Method + " " + r.URL.Path
	for pattern, b := range rl.budgets {
		if strings.HasPrefix(key, pattern) {
			return b, true
		}
	}
	return budget{}, false
}

func (rl *RateLimiter) trackViolation(ctx context.Context, ip string) {
	if !rl.autoBlock {
		return
	}

	key := "violations:ip:" + ip
	count, _ := rl.client.Incr(ctx, key).Result()
	rl.client.Expire(ctx, key, time.Hour)

	if count >= 10 {
		rl.blocker.Block(ctx, ip, 24*time.Hour, "repeated rate limit violations")
		rl.logger.Warn().
			Str("type", "security").
			Str("event", "ip_auto_blocked").
			Str("ip", ip).
			Int64("violations", count).
			Msg("IP auto-blocked for repeated violations")
	}
}

// IPBlocker manages temporary IP blocks in Redis.
type IPBlocker struct {
	client *redis.Client
}

func NewIPBlocker(client *redis.Client) *IPBlocker {
	return &IPBlocker{client: client}
}

func (b *IPBlocker) IsBlocked(ctx context.Context, ip string) bool {
	exists, _ := b.client.Exists(ctx, "blocked:ip:"+ip).Result()
	return exists > 0
}

func (b *IPBlocker) Block(ctx context.Context, ip string, duration time.Duration, reason string) {
	b.client.Set(ctx, "blocked:ip:"+ip, reason, duration)
}

func (b *IPBlocker) Unblock(ctx context.Context, ip string) {
	b.client.Del(ctx, "blocked:ip:"+ip)
}
