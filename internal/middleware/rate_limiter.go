package middleware

import (
	"net/http"
	"sync"
	"time"

	"mentapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// limiter is a sliding-window per-IP counter. Each RateLimiter instance owns
// its own map, so the login limiter and the general API limiter do not share
// budgets.
type limiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
	mensaje string
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

const purgeInterval = 5 * time.Minute

func newLimiter(limit int, window time.Duration, mensaje string) *limiter {
	l := &limiter{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		mensaje: mensaje,
	}
	go l.purgeLoop()
	return l
}

func (l *limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		entry = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = entry
	}
	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

// purgeLoop drops expired entries so IPs that never return don't accumulate.
func (l *limiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purged := 0
		l.mu.Lock()
		for ip, entry := range l.entries {
			if now.After(entry.windowEnd) {
				delete(l.entries, ip)
				purged++
			}
		}
		remaining := len(l.entries)
		l.mu.Unlock()
		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter entries purged")
		}
	}
}

func (l *limiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.").handler()
}

// RateLimiter is the general-purpose per-IP limiter for the API surface.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}
