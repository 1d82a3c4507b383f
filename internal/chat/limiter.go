package chat

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiterPool hands out one token-bucket limiter per connection so a
// single noisy client cannot flood a room.
type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	rps   float64
	burst int
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &limiterPool{
		m:     make(map[string]*rate.Limiter),
		rps:   rps,
		burst: burst,
	}
}

func (p *limiterPool) allow(connID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.m[connID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(p.rps), p.burst)
		p.m[connID] = l
	}
	return l.Allow()
}

func (p *limiterPool) drop(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, connID)
}
