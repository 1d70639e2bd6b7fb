package gamenews

import (
	"sync"
	"time"
)

// LoginLimiter counts failed sign-ins per client IP over a sliding window.
// Only failures are recorded; a successful sign-in clears the address.
type LoginLimiter struct {
	mu        sync.Mutex
	failures  map[string][]time.Time
	max       int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginLimiter allows max failed sign-ins per IP within window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		failures: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// recent drops failures older than the window and returns the rest.
// Callers hold l.mu.
func (l *LoginLimiter) recent(ip string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	hits := l.failures[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, ip)
		return nil
	}
	l.failures[ip] = kept
	return kept
}

// Check reports whether ip may attempt another sign-in.
func (l *LoginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recent(ip, l.now())) < l.max
}

// Record stores a failed sign-in for ip and returns how many attempts it
// has left in the current window.
func (l *LoginLimiter) Record(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		for other := range l.failures {
			l.recent(other, now)
		}
		l.lastSweep = now
	}
	hits := append(l.recent(ip, now), now)
	l.failures[ip] = hits
	if left := l.max - len(hits); left > 0 {
		return left
	}
	return 0
}

// Reset forgets the failures of ip after it signs in successfully.
func (l *LoginLimiter) Reset(ip string) {
	l.mu.Lock()
	delete(l.failures, ip)
	l.mu.Unlock()
}

// tracked returns how many addresses currently have failures on record.
func (l *LoginLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures)
}
