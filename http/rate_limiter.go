package http

import (
	"sync"
	"time"
)

const (
	staleClientThreshold = 1 * time.Hour
	sweepInterval        = 30 * time.Minute
)

type bucket struct {
	remaining int
	window    time.Time
}

// RateLimiter limita cotações por IP em janelas fixas. As APIs das
// seguradoras têm cotas de parceria; estourá-las derruba a integração toda.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*bucket
	done    chan struct{}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, b := range rl.buckets {
		if now.Sub(b.window) > staleClientThreshold {
			delete(rl.buckets, ip)
		}
	}
}

func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// Allow consome uma unidade da janela do cliente; false quando estourou.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[ip]
	if !ok || now.Sub(b.window) >= rl.window {
		rl.buckets[ip] = &bucket{remaining: rl.limit - 1, window: now}
		return true
	}

	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}
