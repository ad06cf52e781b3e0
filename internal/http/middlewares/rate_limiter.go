package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window counter per key. It guards login and
// registration against password guessing.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	now     func() time.Time
	clients map[string]*clientBucket
}

// buckets are swept inline once this many keys are tracked
const maxTrackedClients = 10000

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientBucket),
	}
}

// allow reports whether key may proceed and, if not, how long until the
// window resets.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.clients) >= maxTrackedClients {
		rl.sweepLocked(now)
	}

	b, ok := rl.clients[key]

	if !ok || now.After(b.windowEnd) {
		rl.clients[key] = &clientBucket{
			count:     1,
			windowEnd: now.Add(rl.window),
		}
		return true, 0
	}

	if b.count >= rl.limit {
		return false, b.windowEnd.Sub(now)
	}

	b.count++
	return true, 0
}

// Sweep drops buckets whose window has closed.
func (rl *RateLimiter) Sweep() int {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	return rl.sweepLocked(now)
}

func (rl *RateLimiter) sweepLocked(now time.Time) int {
	n := 0
	for k, b := range rl.clients {
		if now.After(b.windowEnd) {
			delete(rl.clients, k)
			n++
		}
	}
	return n
}

// Middleware enforces the limit for the key derived by keyFn.
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		ok, retry := rl.allow(key)
		if !ok {
			retryAfter := int(retry.Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			handlers.RespondError(c, http.StatusTooManyRequests, "Too many requests. Please try again shortly.", "", nil)
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// For authenticated endpoints: rate limit by user id if available
func KeyByUserOrIP(c *gin.Context) string {
	p, ok := PrincipalFromContext(c)

	if ok {
		return "user:" + strconv.FormatInt(p.UserID, 10)
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
