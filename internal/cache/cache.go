// Package cache содержит кэш соответствий короткий ID -> исходный URL.
package cache

import "context"

// Cache определяет интерфейс кэша ссылок.
// Кэш только ускоряет чтение: любая его ошибка трактуется вызывающим как промах.
type Cache interface {
	// Get возвращает исходный URL и флаг попадания
	Get(ctx context.Context, shortID string) (string, bool, error)
	// Set сохраняет исходный URL на время жизни кэша
	Set(ctx context.Context, shortID, originalURL string) error
}
