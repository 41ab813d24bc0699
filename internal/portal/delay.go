package portal

import (
	"math/rand/v2"
	"time"
)

// DelayPolicy returns how long to wait after the given fetch (1-based)
// before issuing the next one.
type DelayPolicy func(attempt int) time.Duration

// RandomDelay waits a uniformly random duration in [lo, hi].
func RandomDelay(lo, hi time.Duration) DelayPolicy {
	if hi < lo {
		lo, hi = hi, lo
	}
	return func(int) time.Duration {
		if hi == lo {
			return lo
		}
		return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
	}
}

// NoDelay never waits.
func NoDelay(int) time.Duration { return 0 }
