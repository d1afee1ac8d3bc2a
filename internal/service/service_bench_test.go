package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tempizhere/linkstat/internal/cache"
	"github.com/tempizhere/linkstat/internal/repository"
)

func newBenchmarkService() *Service {
	return NewService(repository.NewMemoryRepository(), cache.NewMemoryCache(time.Hour), nil,
		Limiters{}, zap.NewNop(), Config{BaseURL: "http://localhost:8080"})
}

// BenchmarkService_Shorten измеряет создание новых ссылок
func BenchmarkService_Shorten(b *testing.B) {
	svc := newBenchmarkService()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Shorten(ctx, "10.0.0.1", fmt.Sprintf("https://example.com/%d", i), ""); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkService_ShortenExisting измеряет повторное сокращение известного URL
func BenchmarkService_ShortenExisting(b *testing.B) {
	svc := newBenchmarkService()
	ctx := context.Background()
	if _, err := svc.Shorten(ctx, "10.0.0.1", "https://example.com/a", ""); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Shorten(ctx, "10.0.0.1", "https://example.com/a", ""); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkService_Resolve измеряет переходы с тёплым кэшем
func BenchmarkService_Resolve(b *testing.B) {
	svc := newBenchmarkService()
	ctx := context.Background()
	res, err := svc.Shorten(ctx, "10.0.0.1", "https://example.com/a", "")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.Resolve(ctx, res.ShortID, "10.0.0.1"); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
