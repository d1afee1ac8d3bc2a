package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	// Проверяем, что MemoryRepository реализует интерфейс Repository
	var _ Repository = (*MemoryRepository)(nil)

	// Тест 1: Создание и поиск ссылки
	link, err := repo.Create(ctx, "https://example.com", "id1", "user1")
	require.NoError(t, err, "Create should not return error")
	assert.Equal(t, int64(1), link.ID)
	assert.Equal(t, "id1", link.ShortID)
	assert.Equal(t, int64(0), link.ClickCount)

	found, exists, err := repo.FindByShortID(ctx, "id1")
	require.NoError(t, err)
	assert.True(t, exists, "Link should exist")
	assert.Equal(t, "https://example.com", found.OriginalURL)
	assert.Equal(t, "user1", found.CreatorID)

	found, exists, err = repo.FindByOriginalURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "id1", found.ShortID)

	// Тест 2: Повторное создание с тем же URL
	_, err = repo.Create(ctx, "https://example.com", "id2", "user2")
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, FieldOriginalURL, dup.Field)

	// Тест 3: Повторное создание с тем же коротким ID
	_, err = repo.Create(ctx, "https://other.com", "id1", "")
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, FieldShortID, dup.Field)
	assert.Equal(t, 1, repo.Count(), "Conflicting creates must not add links")

	// Тест 4: Идентификаторы не переиспользуются
	second, err := repo.Create(ctx, "https://other.com", "id2", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	// Тест 5: Поиск несуществующих ссылок
	_, exists, err = repo.FindByShortID(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, exists)
	_, exists, err = repo.FindByOriginalURL(ctx, "https://missing.com")
	assert.NoError(t, err)
	assert.False(t, exists)

	// Тест 6: Очистка хранилища
	repo.Clear()
	_, exists, _ = repo.FindByShortID(ctx, "id1")
	assert.False(t, exists, "Link should be cleared")
}

func TestMemoryRepository_RecordVisit(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Create(ctx, "https://example.com/a", "T1", "")
	require.NoError(t, err)

	link, err := repo.RecordVisit(ctx, "T1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ClickCount)
	assert.Equal(t, []string{"10.0.0.1"}, link.VisitorAddresses)

	// Повторный визит с того же адреса не дублирует адрес
	link, err = repo.RecordVisit(ctx, "T1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), link.ClickCount)
	assert.Equal(t, []string{"10.0.0.1"}, link.VisitorAddresses)

	link, err = repo.RecordVisit(ctx, "T1", "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), link.ClickCount)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, link.VisitorAddresses)

	stats, exists, err := repo.GetStats(ctx, "T1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(3), stats.ClickCount)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, stats.VisitorAddresses)

	_, err = repo.RecordVisit(ctx, "missing", "10.0.0.1")
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, exists, err = repo.GetStats(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryRepository_RecordVisitConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.Create(ctx, "https://example.com/hot", "hot", "")
	require.NoError(t, err)

	const workers = 50
	const visitsPerWorker = 20
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			addr := fmt.Sprintf("10.0.0.%d", w%10)
			for i := 0; i < visitsPerWorker; i++ {
				_, err := repo.RecordVisit(ctx, "hot", addr)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	stats, _, err := repo.GetStats(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, int64(workers*visitsPerWorker), stats.ClickCount)
	assert.Len(t, stats.VisitorAddresses, 10)
}

func TestMemoryRepository_CreateConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			_, err := repo.Create(ctx, "https://example.com/same", fmt.Sprintf("id%d", w), "")
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrDuplicateKey)
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 1, created, "Exactly one create must win")
	assert.Equal(t, 1, repo.Count())
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, "https://example.com", "id1", "")
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = repo.FindByShortID(ctx, "id1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.RecordVisit(ctx, "id1", "10.0.0.1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
	assert.Equal(t, 0, repo.Count())
}
