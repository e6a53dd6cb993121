// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Login rate limit: 10 attempts per minute per client IP, bursting to 5.
const (
	loginRatePerSec = 10.0 / 60.0
	loginBurst      = 5
	limiterMaxIdle  = 10 * time.Minute
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LoginLimiter throttles login attempts per client IP to slow down
// credential guessing.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{limiters: make(map[string]*clientLimiter)}
}

// remoteIP strips the port from the connection's remote address.
// Forwarded-for headers are client-controlled and must not key the
// limiter: a caller rotating them would get a fresh bucket per header.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Wrap applies the limit before the wrapped handler runs.
func (l *LoginLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := remoteIP(r)
		if !l.allow(ip) {
			slog.Warn("login rate limit exceeded", "ip", ip)
			ErrorResponse(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}
		next(w, r)
	}
}

func (l *LoginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cl, ok := l.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(loginRatePerSec), loginBurst)}
		l.limiters[ip] = cl
	}
	cl.lastAccess = now

	// Opportunistic cleanup of idle entries; the map stays small under
	// any realistic login load.
	for key, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > limiterMaxIdle {
			delete(l.limiters, key)
		}
	}

	return cl.limiter.Allow()
}
