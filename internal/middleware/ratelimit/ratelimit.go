// Package ratelimit throttles requests per client with a fixed window.
// The API uses it to slow down password guessing on the login route.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter counts requests per client key in fixed windows.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time

	requests int
	window   time.Duration
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

// Config holds rate limiter configuration
type Config struct {
	// Requests allowed per client in one window
	Requests int
	Window   time.Duration

	// CleanupInterval is how often idle clients are forgotten. Zero disables
	// the background cleanup.
	CleanupInterval time.Duration
}

// DefaultConfig allows ten login attempts per client per minute.
func DefaultConfig() Config {
	return Config{
		Requests:        10,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

func NewLimiter(config Config) *Limiter {
	defaults := DefaultConfig()
	if config.Requests <= 0 {
		config.Requests = defaults.Requests
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}

	rl := &Limiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
		requests:    config.Requests,
		window:      config.Window,
	}
	if config.CleanupInterval > 0 {
		go rl.startCleanup(config.CleanupInterval)
	}
	return rl
}

// Allow records a request from key and reports whether it is within the limit.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, exists := rl.clients[key]
	if !exists || now.Sub(client.windowStart) >= rl.window {
		rl.clients[key] = &clientInfo{windowStart: now, requests: 1}
		return true
	}

	client.requests++
	return client.requests <= rl.requests
}

// RetryAfter is how long key has to wait for its window to reset.
func (rl *Limiter) RetryAfter(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[key]
	if !ok {
		return 0
	}
	return max(client.windowStart.Add(rl.window).Sub(rl.now()), 0)
}

func (rl *Limiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries forgets clients whose window has ended.
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, client := range rl.clients {
		if client.windowStart.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop shuts down the cleanup goroutine. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Middleware rejects requests over the limit, keyed by extractKey. onLimit
// writes the rejection; when nil a plain 429 is sent. Retry-After is always set.
func (rl *Limiter) Middleware(extractKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractKey(r)
			if !rl.Allow(key) {
				secs := int(rl.RetryAfter(key).Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
