package ticketing

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// InteractionLimiter throttles component interactions per user so a
// held-down button cannot flood the bot. Limiters idle for longer than
// the ttl are dropped on the next sweep.
type InteractionLimiter struct {
	mu    sync.Mutex
	users map[string]*userLimiter

	limit rate.Limit
	burst int
	ttl   time.Duration

	now func() time.Time
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewInteractionLimiter allows burst interactions immediately and then
// one per interval for each user.
func NewInteractionLimiter(interval time.Duration, burst int) *InteractionLimiter {
	return &InteractionLimiter{
		users: make(map[string]*userLimiter),
		limit: rate.Every(interval),
		burst: burst,
		ttl:   10 * time.Minute,
		now:   time.Now,
	}
}

// Allow reports whether the user may perform another interaction now.
func (l *InteractionLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = u
	}
	u.lastSeen = l.now()

	return u.limiter.Allow()
}

// Sweep drops limiters that have not been used recently. Call it
// periodically from a background loop.
func (l *InteractionLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.ttl)
	for id, u := range l.users {
		if u.lastSeen.Before(cutoff) {
			delete(l.users, id)
		}
	}
}
