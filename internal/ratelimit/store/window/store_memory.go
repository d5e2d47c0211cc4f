package window

import (
	"math"
	"sync"
	"time"

	"m8translate/internal/ratelimit/models"
)

// DefaultMaxKeys is the tracked-key ceiling above which a record triggers a
// sweep of empty windows.
const DefaultMaxKeys = 1000

// Store is an in-memory sliding-window limiter for a single Limit.
// State is process-local: separate instances do not share windows.
type Store struct {
	mu      sync.Mutex
	limit   models.Limit
	maxKeys int
	windows map[string]*slidingWindow
}

// slidingWindow holds the admission timestamps of one key inside the
// trailing window.
type slidingWindow struct {
	timestamps []time.Time
}

type Option func(*Store)

// WithMaxKeys sets the sweep ceiling.
func WithMaxKeys(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxKeys = n
		}
	}
}

// New creates a store enforcing limit.
func New(limit models.Limit, opts ...Option) *Store {
	s := &Store{
		limit:   limit,
		maxKeys: DefaultMaxKeys,
		windows: make(map[string]*slidingWindow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit returns the policy the store enforces.
func (s *Store) Limit() models.Limit {
	return s.limit
}

// Admit reports whether one more request for key would be admitted at now.
// It does not record the request; call Record once the guarded work has
// succeeded. Repeated calls at the same instant return the same result.
func (s *Store) Admit(key string, now time.Time) models.RateLimitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admitLocked(key, now)
}

// Record appends now to key's window, creating the window if needed.
func (s *Store) Record(key string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked(key, now)
}

// TryAdmit checks and records in one critical section.
func (s *Store) TryAdmit(key string, now time.Time) models.RateLimitResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.admitLocked(key, now)
	if result.Allowed {
		s.recordLocked(key, now)
	}
	return result
}

// Usage returns the live window state of key without recording.
func (s *Store) Usage(key string, now time.Time) models.Usage {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage := models.Usage{Max: s.limit.Requests, ResetAt: now.Add(s.limit.Window)}
	sw := s.windows[key]
	if sw == nil {
		return usage
	}
	sw.purge(now, s.limit.Window)
	usage.Current = len(sw.timestamps)
	if oldest, ok := sw.oldest(); ok {
		usage.ResetAt = oldest.Add(s.limit.Window)
	}
	return usage
}

// Reset clears the window of key.
func (s *Store) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
}

// Sweep removes every key whose window is empty at now and returns the
// number of keys removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

// Len returns the number of tracked keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// admitLocked never creates a window, so rejected or abandoned requests do
// not grow the key table. Must be called while holding s.mu.
func (s *Store) admitLocked(key string, now time.Time) models.RateLimitResult {
	result := models.RateLimitResult{
		Limit:   s.limit.Requests,
		ResetAt: now.Add(s.limit.Window),
	}

	count := 0
	var oldest time.Time
	if sw := s.windows[key]; sw != nil {
		sw.purge(now, s.limit.Window)
		count = len(sw.timestamps)
		if ts, ok := sw.oldest(); ok {
			oldest = ts
			result.ResetAt = ts.Add(s.limit.Window)
		}
	}

	if count >= s.limit.Requests {
		result.Allowed = false
		result.Remaining = 0
		result.RetryAfter = retryAfterSeconds(s.limit.Window - now.Sub(oldest))
		return result
	}

	result.Allowed = true
	result.Remaining = s.limit.Requests - count - 1
	return result
}

// recordLocked must be called while holding s.mu.
func (s *Store) recordLocked(key string, now time.Time) {
	sw := s.windows[key]
	if sw == nil {
		sw = &slidingWindow{timestamps: make([]time.Time, 0, 1)}
		s.windows[key] = sw
	}
	sw.timestamps = append(sw.timestamps, now)

	if len(s.windows) > s.maxKeys {
		s.sweepLocked(now)
	}
}

// sweepLocked must be called while holding s.mu.
func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for key, sw := range s.windows {
		sw.purge(now, s.limit.Window)
		if len(sw.timestamps) == 0 {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// purge drops timestamps at least window old. Timestamps are filtered rather
// than trimmed as a prefix because callers supply now and may record out of
// order.
func (sw *slidingWindow) purge(now time.Time, window time.Duration) {
	kept := sw.timestamps[:0]
	for _, ts := range sw.timestamps {
		if now.Sub(ts) < window {
			kept = append(kept, ts)
		}
	}
	clear(sw.timestamps[len(kept):])
	sw.timestamps = kept
}

func (sw *slidingWindow) oldest() (time.Time, bool) {
	if len(sw.timestamps) == 0 {
		return time.Time{}, false
	}
	oldest := sw.timestamps[0]
	for _, ts := range sw.timestamps[1:] {
		if ts.Before(oldest) {
			oldest = ts
		}
	}
	return oldest, true
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
