package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyURL исходный URL не передан
	ErrEmptyURL = errors.New("empty URL")
	// ErrURLTooLong исходный URL длиннее MaxURLLength
	ErrURLTooLong = errors.New("URL is too long")
	// ErrInvalidURL исходный URL не абсолютный http(s) адрес
	ErrInvalidURL = errors.New("URL must be absolute http or https")
	// ErrNotFound короткий ID неизвестен
	ErrNotFound = errors.New("short link not found")
	// ErrRateLimited клиент исчерпал лимит запросов, см. RateLimitError
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrStoreUnavailable хранилище не ответило или вернуло ошибку
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrExhaustedRetries не удалось подобрать свободный короткий ID
	ErrExhaustedRetries = errors.New("failed to generate unique ID")
)

// Scope действие, к которому применяется лимит
type Scope string

const (
	ScopeShorten  Scope = "shorten"
	ScopeRedirect Scope = "redirect"
)

// RateLimitError описывает превышение лимита запросов
type RateLimitError struct {
	Scope   Scope
	Limit   int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s limit %d, resets at %s", e.Scope, e.Limit, e.ResetAt.Format(time.RFC3339))
}

// Is позволяет сравнивать ошибку с ErrRateLimited через errors.Is
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfter возвращает время до сброса лимита относительно now в целых секундах
// с округлением вверх, не меньше секунды
func (e *RateLimitError) RetryAfter(now time.Time) time.Duration {
	wait := e.ResetAt.Sub(now)
	if rounded := wait.Truncate(time.Second); rounded < wait {
		wait = rounded + time.Second
	}
	if wait < time.Second {
		return time.Second
	}
	return wait
}

// IsValidationError сообщает, исправима ли ошибка самим пользователем
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyURL) || errors.Is(err, ErrURLTooLong) || errors.Is(err, ErrInvalidURL)
}
