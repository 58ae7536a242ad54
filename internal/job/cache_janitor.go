package job

import (
	"context"
	"log"
	"time"
)

type Sweeper interface {
	Sweep() int
}

// CacheJanitor evicts query cache entries past their retention window.
type CacheJanitor struct {
	cache    Sweeper
	interval time.Duration
}

func NewCacheJanitor(cache Sweeper, interval time.Duration) *CacheJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheJanitor{cache: cache, interval: interval}
}

// Start sweeps on every tick. Blocks until ctx is cancelled.
func (j *CacheJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.cache.Sweep(); n > 0 {
				log.Printf("cache janitor evicted %d entries", n)
			}
		}
	}
}
