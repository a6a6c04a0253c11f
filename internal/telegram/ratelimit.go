package telegram

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// rateLimiter caps how many messages one user may send per minute. The
// counters live in an expiring cache so inactive users cost nothing.
type rateLimiter struct {
	counters  *gocache.Cache
	perMinute int
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		counters:  gocache.New(time.Minute, 5*time.Minute),
		perMinute: perMinute,
	}
}

func (rl *rateLimiter) Allow(userID int64) bool {
	if rl.perMinute <= 0 {
		return true
	}

	key := strconv.FormatInt(userID, 10)
	count, err := rl.counters.IncrementInt(key, 1)
	if err != nil {
		// First message inside the window.
		rl.counters.SetDefault(key, 1)
		return true
	}
	return count <= rl.perMinute
}
