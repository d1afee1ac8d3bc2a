package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache реализует Cache в памяти процесса с истечением записей
type MemoryCache struct {
	items *gocache.Cache
	ttl   time.Duration
}

// NewMemoryCache создаёт кэш с заданным временем жизни записей.
// Просроченные записи удаляются фоновой очисткой раз в ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// Get возвращает исходный URL по короткому ID
func (c *MemoryCache) Get(ctx context.Context, shortID string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	value, found := c.items.Get(shortID)
	if !found {
		return "", false, nil
	}
	url, ok := value.(string)
	return url, ok, nil
}

// Set сохраняет исходный URL
func (c *MemoryCache) Set(ctx context.Context, shortID, originalURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.items.Set(shortID, originalURL, c.ttl)
	return nil
}

// Len возвращает количество записей, включая ещё не удалённые просроченные
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
