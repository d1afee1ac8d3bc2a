package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter хранит окна в памяти процесса
type MemoryLimiter struct {
	mu        sync.Mutex
	limit     int
	period    time.Duration
	now       func() time.Time
	windows   map[string]*window
	nextSweep time.Time
}

// Option настраивает MemoryLimiter
type Option func(*MemoryLimiter)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(l *MemoryLimiter) {
		l.now = now
	}
}

// NewMemoryLimiter создаёт лимитер на limit запросов за period
func NewMemoryLimiter(limit int, period time.Duration, opts ...Option) *MemoryLimiter {
	l := &MemoryLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow учитывает запрос ключа. Отклонённые запросы окно не продлевают.
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[key] = w
	}

	if w.count >= l.limit {
		return Decision{Allowed: false, Limit: l.limit, Remaining: 0, ResetAt: w.resetAt}, nil
	}
	w.count++
	return Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: remaining(l.limit, w.count),
		ResetAt:   w.resetAt,
	}, nil
}

// sweep раз в период удаляет истёкшие окна
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.period)
}

// Len возвращает количество отслеживаемых ключей
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
