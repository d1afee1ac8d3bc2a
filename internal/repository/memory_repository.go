package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/tempizhere/linkstat/internal/models"
)

// linkRecord хранит ссылку и множество адресов посетителей.
// link.VisitorAddresses всегда nil: адреса собираются в snapshot.
type linkRecord struct {
	link     models.Link
	visitors map[string]struct{}
}

// snapshot возвращает копию ссылки, не разделяющую память с хранилищем
func (rec *linkRecord) snapshot() models.Link {
	link := rec.link
	link.VisitorAddresses = make([]string, 0, len(rec.visitors))
	for addr := range rec.visitors {
		link.VisitorAddresses = append(link.VisitorAddresses, addr)
	}
	sort.Strings(link.VisitorAddresses)
	return link
}

// MemoryRepository реализует интерфейс Repository в памяти процесса
type MemoryRepository struct {
	mutex        sync.RWMutex
	nextID       int64
	store        map[string]*linkRecord // short_id -> ссылка
	urlToShortID map[string]string      // original_url -> short_id
}

// NewMemoryRepository создаёт новый экземпляр MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		store:        make(map[string]*linkRecord),
		urlToShortID: make(map[string]string),
	}
}

// FindByOriginalURL возвращает ссылку по исходному URL
func (r *MemoryRepository) FindByOriginalURL(ctx context.Context, originalURL string) (models.Link, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Link{}, false, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	shortID, exists := r.urlToShortID[originalURL]
	if !exists {
		return models.Link{}, false, nil
	}
	return r.store[shortID].link, true, nil
}

// FindByShortID возвращает ссылку по короткому ID
func (r *MemoryRepository) FindByShortID(ctx context.Context, shortID string) (models.Link, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Link{}, false, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rec, exists := r.store[shortID]
	if !exists {
		return models.Link{}, false, nil
	}
	return rec.link, true, nil
}

// Create сохраняет новую ссылку, проверяя уникальность под блокировкой
func (r *MemoryRepository) Create(ctx context.Context, originalURL, shortID, creatorID string) (models.Link, error) {
	if err := ctx.Err(); err != nil {
		return models.Link{}, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.urlToShortID[originalURL]; exists {
		return models.Link{}, &DuplicateKeyError{Field: FieldOriginalURL, Value: originalURL}
	}
	if _, exists := r.store[shortID]; exists {
		return models.Link{}, &DuplicateKeyError{Field: FieldShortID, Value: shortID}
	}

	r.nextID++
	rec := &linkRecord{
		link: models.Link{
			ID:          r.nextID,
			OriginalURL: originalURL,
			ShortID:     shortID,
			CreatorID:   creatorID,
		},
		visitors: make(map[string]struct{}),
	}
	r.store[shortID] = rec
	r.urlToShortID[originalURL] = shortID
	return rec.link, nil
}

// RecordVisit увеличивает счётчик и добавляет адрес под одной блокировкой
func (r *MemoryRepository) RecordVisit(ctx context.Context, shortID, address string) (models.Link, error) {
	if err := ctx.Err(); err != nil {
		return models.Link{}, err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, exists := r.store[shortID]
	if !exists {
		return models.Link{}, ErrLinkNotFound
	}
	rec.link.ClickCount++
	if address != "" {
		rec.visitors[address] = struct{}{}
	}
	return rec.snapshot(), nil
}

// GetStats возвращает статистику ссылки
func (r *MemoryRepository) GetStats(ctx context.Context, shortID string) (models.Stats, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Stats{}, false, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rec, exists := r.store[shortID]
	if !exists {
		return models.Stats{}, false, nil
	}
	return rec.snapshot().Stats(), true, nil
}

// Ping всегда успешен для хранилища в памяти
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Count возвращает количество сохранённых ссылок
func (r *MemoryRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.store)
}

// Clear очищает хранилище
func (r *MemoryRepository) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.store = make(map[string]*linkRecord)
	r.urlToShortID = make(map[string]string)
}
