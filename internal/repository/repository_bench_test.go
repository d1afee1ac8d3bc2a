package repository

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
)

// BenchmarkMemoryRepository_Create измеряет производительность создания ссылок в памяти
func BenchmarkMemoryRepository_Create(b *testing.B) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := "id-" + strconv.Itoa(i)
		url := "https://example.com/url/" + strconv.Itoa(i)
		if _, err := repo.Create(ctx, url, id, ""); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMemoryRepository_FindByShortID измеряет производительность поиска по короткому ID
func BenchmarkMemoryRepository_FindByShortID(b *testing.B) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.Create(ctx, "https://example.com/test-url", "abc123", ""); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, ok, err := repo.FindByShortID(ctx, "abc123")
		if err != nil || !ok {
			b.Fatal("link not found")
		}
	}
}

// BenchmarkMemoryRepository_RecordVisit измеряет производительность учёта переходов
func BenchmarkMemoryRepository_RecordVisit(b *testing.B) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.Create(ctx, "https://example.com/test-url", "abc123", ""); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		addr := "10.0.0." + strconv.Itoa(i%256)
		if _, err := repo.RecordVisit(ctx, "abc123", addr); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMemoryRepository_RecordVisitParallel измеряет конкурентный учёт переходов одной ссылки
func BenchmarkMemoryRepository_RecordVisitParallel(b *testing.B) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.Create(ctx, "https://example.com/test-url", "abc123", ""); err != nil {
		b.Fatal(err)
	}

	var counter int64
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			n := atomic.AddInt64(&counter, 1)
			if _, err := repo.RecordVisit(ctx, "abc123", "10.0.0."+strconv.FormatInt(n%256, 10)); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchmarkMemoryRepository_GetStats измеряет производительность чтения статистики
func BenchmarkMemoryRepository_GetStats(b *testing.B) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.Create(ctx, "https://example.com/test-url", "abc123", ""); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if _, err := repo.RecordVisit(ctx, "abc123", "10.0.0."+strconv.Itoa(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := repo.GetStats(ctx, "abc123"); err != nil {
			b.Fatal(err)
		}
	}
}
