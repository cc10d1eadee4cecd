// Package ratelimit paces calls to the stock mirror; it is a community
// service and one value a day is all anyone needs.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"geohashd/internal/stock"
)

// MinInterval wraps a fetcher and enforces a minimum time between
// calls. Concurrent calls wait until the interval has elapsed since the
// last call, or return early if the context is canceled.
type MinInterval struct {
	F        stock.Fetcher
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) FetchValue(ctx context.Context, date stock.Date) (string, error) {
	if m.Interval > 0 {
		// simple gate: ensure at least Interval since last
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-t.C:
			}
		}
	}
	value, err := m.F.FetchValue(ctx, date)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return value, err
}
