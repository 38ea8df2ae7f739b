package ratelimit

import (
	"strings"
	"sync"
	"time"
)

const (
	defaultWindow      = time.Minute
	defaultMaxRequests = 30
)

type window struct {
	count       int
	windowStart time.Time
}

// Limiter counts requests per client identity in fixed windows.
type Limiter struct {
	windowLength time.Duration
	maxRequests  int
	now          func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// Option customizes the limiter.
type Option func(*Limiter)

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// New constructs a limiter. Non-positive values fall back to the defaults of
// 30 requests per minute.
func New(windowLength time.Duration, maxRequests int, opts ...Option) *Limiter {
	if windowLength <= 0 {
		windowLength = defaultWindow
	}
	if maxRequests <= 0 {
		maxRequests = defaultMaxRequests
	}
	l := &Limiter{
		windowLength: windowLength,
		maxRequests:  maxRequests,
		now:          time.Now,
		windows:      make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit records a request for identity and reports whether it is allowed
// within the current window. Once the count passes the ceiling, every further
// call in the same window is denied.
func (l *Limiter) Admit(identity string) bool {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		identity = "unknown"
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.windows[identity]
	if !ok || now.Sub(existing.windowStart) > l.windowLength {
		l.windows[identity] = &window{count: 1, windowStart: now}
		return true
	}
	existing.count++
	return existing.count <= l.maxRequests
}
