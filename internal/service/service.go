// Package service реализует создание коротких ссылок и обработку переходов по ним.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tempizhere/linkstat/internal/cache"
	"github.com/tempizhere/linkstat/internal/idgen"
	"github.com/tempizhere/linkstat/internal/models"
	"github.com/tempizhere/linkstat/internal/ratelimit"
	"github.com/tempizhere/linkstat/internal/repository"
)

const (
	// MaxURLLength максимальная длина исходного URL в символах
	MaxURLLength = 2048
	// DefaultMaxAttempts число попыток подобрать свободный короткий ID
	DefaultMaxAttempts = 5
	// DefaultStoreTimeout время на один вызов хранилища или кэша
	DefaultStoreTimeout = 3 * time.Second
)

// Limiters лимиты запросов по адресу клиента, отдельные для каждого действия
type Limiters struct {
	Shorten  ratelimit.Limiter
	Redirect ratelimit.Limiter
}

// Config параметры сервиса
type Config struct {
	BaseURL      string
	StoreTimeout time.Duration
	MaxAttempts  int
}

// Service реализует логику работы с короткими ссылками
type Service struct {
	repo     repository.Repository
	cache    cache.Cache
	gen      idgen.Generator
	limiters Limiters
	logger   *zap.Logger
	cfg      Config
}

// NewService создаёт новый экземпляр Service.
// Незаданные лимитеры не ограничивают запросы, незаданные параметры берутся по умолчанию.
func NewService(repo repository.Repository, c cache.Cache, gen idgen.Generator, limiters Limiters, logger *zap.Logger, cfg Config) *Service {
	if gen == nil {
		gen = idgen.NewShortUUIDGenerator(idgen.DefaultLength)
	}
	if limiters.Shorten == nil {
		limiters.Shorten = ratelimit.Unlimited{}
	}
	if limiters.Redirect == nil {
		limiters.Redirect = ratelimit.Unlimited{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Service{
		repo:     repo,
		cache:    c,
		gen:      gen,
		limiters: limiters,
		logger:   logger,
		cfg:      cfg,
	}
}

// ValidateURL проверяет исходный URL после удаления пробелов по краям.
// Адрес без схемы http:// или https:// отклоняется: редирект на него
// браузер разрешил бы относительно самого сервиса.
func ValidateURL(originalURL string) error {
	if originalURL == "" {
		return ErrEmptyURL
	}
	if utf8.RuneCountInString(originalURL) > MaxURLLength {
		return ErrURLTooLong
	}
	u, err := url.Parse(originalURL)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return ErrInvalidURL
	}
	return nil
}

// ShortURL возвращает полный короткий URL для короткого ID
func (s *Service) ShortURL(shortID string) string {
	return s.cfg.BaseURL + "/" + shortID
}

// Shorten возвращает короткий ID для исходного URL, создавая ссылку при необходимости.
// Повторный вызов с тем же URL возвращает существующий ID с Created == false.
func (s *Service) Shorten(ctx context.Context, clientAddr, originalURL, creatorID string) (models.ShortenResult, error) {
	if err := s.checkLimit(ctx, s.limiters.Shorten, ScopeShorten, clientAddr); err != nil {
		return models.ShortenResult{}, err
	}

	originalURL = strings.TrimSpace(originalURL)
	if err := ValidateURL(originalURL); err != nil {
		return models.ShortenResult{}, err
	}

	existing, found, err := s.findByOriginalURL(ctx, originalURL)
	if err != nil {
		return models.ShortenResult{}, err
	}
	if found {
		return s.result(existing.ShortID, false), nil
	}

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		shortID := s.gen.Generate()
		link, err := s.create(ctx, originalURL, shortID, creatorID)
		if err == nil {
			s.logger.Info("Link created", zap.String("short_id", link.ShortID), zap.String("url", originalURL))
			return s.result(link.ShortID, true), nil
		}

		var dup *repository.DuplicateKeyError
		if !errors.As(err, &dup) {
			return models.ShortenResult{}, err
		}
		if dup.Field == repository.FieldOriginalURL {
			// Ссылку на тот же URL успел создать параллельный запрос
			existing, found, err := s.findByOriginalURL(ctx, originalURL)
			if err != nil {
				return models.ShortenResult{}, err
			}
			if found {
				return s.result(existing.ShortID, false), nil
			}
			continue
		}
		s.logger.Debug("Short ID collision", zap.String("short_id", shortID), zap.Int("attempt", attempt))
	}

	s.logger.Error("Failed to generate unique short ID",
		zap.String("url", originalURL), zap.Int("attempts", s.cfg.MaxAttempts))
	return models.ShortenResult{}, ErrExhaustedRetries
}

// Resolve возвращает исходный URL для перехода и учитывает переход в статистике.
// Кэш используется только для адреса перенаправления, счётчик всегда меняется в хранилище.
func (s *Service) Resolve(ctx context.Context, shortID, clientAddr string) (string, error) {
	if err := s.checkLimit(ctx, s.limiters.Redirect, ScopeRedirect, clientAddr); err != nil {
		return "", err
	}
	if shortID == "" {
		return "", ErrNotFound
	}

	link, found, err := s.findByShortID(ctx, shortID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNotFound
	}

	destination, hit := s.cachedURL(ctx, shortID)
	if !hit {
		destination = link.OriginalURL
	}

	if err := s.recordVisit(ctx, link.ShortID, clientAddr); err != nil {
		return "", err
	}

	if !hit {
		s.fillCache(ctx, link.ShortID, link.OriginalURL)
	}
	return destination, nil
}

// Stats возвращает статистику переходов по короткому ID
func (s *Service) Stats(ctx context.Context, shortID string) (models.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	stats, found, err := s.repo.GetStats(ctx, shortID)
	if err != nil {
		return models.Stats{}, s.storeError("get stats", err)
	}
	if !found {
		return models.Stats{}, ErrNotFound
	}
	return stats, nil
}

// Ping проверяет доступность хранилища
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		return s.storeError("ping", err)
	}
	return nil
}

func (s *Service) result(shortID string, created bool) models.ShortenResult {
	return models.ShortenResult{
		ShortID:  shortID,
		ShortURL: s.ShortURL(shortID),
		Created:  created,
	}
}

// checkLimit учитывает запрос в лимитере. Недоступный лимитер запрос не блокирует.
func (s *Service) checkLimit(ctx context.Context, limiter ratelimit.Limiter, scope Scope, clientAddr string) error {
	decision, err := limiter.Allow(ctx, clientAddr)
	if err != nil {
		s.logger.Warn("Rate limiter unavailable, request allowed",
			zap.String("scope", string(scope)), zap.String("client", clientAddr), zap.Error(err))
		return nil
	}
	if decision.Allowed {
		return nil
	}
	s.logger.Info("Rate limit exceeded",
		zap.String("scope", string(scope)), zap.String("client", clientAddr), zap.Int("limit", decision.Limit))
	return &RateLimitError{Scope: scope, Limit: decision.Limit, ResetAt: decision.ResetAt}
}

func (s *Service) findByOriginalURL(ctx context.Context, originalURL string) (models.Link, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	link, found, err := s.repo.FindByOriginalURL(ctx, originalURL)
	if err != nil {
		return models.Link{}, false, s.storeError("find by original URL", err)
	}
	return link, found, nil
}

func (s *Service) findByShortID(ctx context.Context, shortID string) (models.Link, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	link, found, err := s.repo.FindByShortID(ctx, shortID)
	if err != nil {
		return models.Link{}, false, s.storeError("find by short ID", err)
	}
	return link, found, nil
}

// create возвращает *repository.DuplicateKeyError без обёртки
func (s *Service) create(ctx context.Context, originalURL, shortID, creatorID string) (models.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	link, err := s.repo.Create(ctx, originalURL, shortID, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return models.Link{}, err
		}
		return models.Link{}, s.storeError("create", err)
	}
	return link, nil
}

func (s *Service) recordVisit(ctx context.Context, shortID, clientAddr string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if _, err := s.repo.RecordVisit(ctx, shortID, clientAddr); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return ErrNotFound
		}
		return s.storeError("record visit", err)
	}
	return nil
}

// cachedURL ошибку кэша считает промахом
func (s *Service) cachedURL(ctx context.Context, shortID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	url, hit, err := s.cache.Get(ctx, shortID)
	if err != nil {
		s.logger.Warn("Failed to read cache", zap.String("short_id", shortID), zap.Error(err))
		return "", false
	}
	return url, hit && url != ""
}

func (s *Service) fillCache(ctx context.Context, shortID, originalURL string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, shortID, originalURL); err != nil {
		s.logger.Warn("Failed to fill cache", zap.String("short_id", shortID), zap.Error(err))
	}
}

func (s *Service) storeError(op string, err error) error {
	s.logger.Error("Store operation failed", zap.String("operation", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
