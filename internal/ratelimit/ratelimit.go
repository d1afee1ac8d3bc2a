// Package ratelimit ограничивает частоту запросов клиента фиксированным окном.
package ratelimit

import (
	"context"
	"time"
)

// Decision результат проверки лимита
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt момент окончания текущего окна
	ResetAt time.Time
}

// Limiter учитывает запрос клиента и решает, пропустить ли его.
// Окно начинается с первого запроса ключа и длится заданный период.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Unlimited пропускает все запросы
type Unlimited struct{}

// Allow всегда разрешает запрос
func (Unlimited) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}

func remaining(limit, count int) int {
	if count >= limit {
		return 0
	}
	return limit - count
}
