package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/tasks-service/internal/log"
	"github.com/tazhibayda/tasks-service/internal/metrics"
	"github.com/tazhibayda/tasks-service/internal/security"
)

const authUserKey = "authUser"

// AuthUser is the resolved principal: session identity backed by a user
// directory record. Handlers read it from the request context instead of
// any ambient session state.
type AuthUser struct {
	ID    primitive.ObjectID
	Email string
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.InFlight.Inc()
		c.Next()
		metrics.InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// sessionToken pulls the session JWT from the cookie, falling back to a
// bearer header for non-browser clients.
func sessionToken(c *gin.Context) string {
	if tok, err := c.Cookie(sessionCookie); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// AuthSession resolves the caller's principal before any task handler
// runs: parse the session token, then confirm the identity against the
// user directory. A session without a backing user record is invalid.
func AuthSession(h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := sessionToken(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, err := security.ParseSession(h.JWTSecret, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		u, err := h.Users.FindByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			log.Errorf("auth: user lookup: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(authUserKey, AuthUser{ID: u.ID, Email: u.Email})
		c.Next()
	}
}

func currentUser(c *gin.Context) AuthUser {
	au, _ := c.Get(authUserKey)
	u, _ := au.(AuthUser)
	return u
}

type bucket struct {
	tokens  int
	updated time.Time
}

// RateLimiter is a per-IP fixed window kept in process memory; the Redis
// window takes over when a shared counter is configured.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*bucket), rate: rate, window: window}
}

func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[ip]
	if !ok || now.Sub(b.updated) > rl.window {
		rl.buckets[ip] = &bucket{tokens: 1, updated: now}
		return true
	}
	if b.tokens < rl.rate {
		b.tokens++
		b.updated = now
		return true
	}
	return false
}

func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}
	return ip
}

// RateLimitAuth guards the credential endpoints. Uses the shared Redis
// window when configured, otherwise the in-memory limiter.
func RateLimitAuth(h *Handler, rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.RateLimitPerMin <= 0 {
			c.Next()
			return
		}
		ip := ClientIP(c)
		if h.Redis != nil {
			key := "rl:" + c.FullPath() + ":" + ip
			n, err := h.Redis.IncrWindow(c.Request.Context(), key, time.Minute)
			if err == nil && n > int64(h.RateLimitPerMin) {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
				return
			}
			// on redis error fall through to the local limiter
			if err == nil {
				c.Next()
				return
			}
		}
		if !rl.Allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
