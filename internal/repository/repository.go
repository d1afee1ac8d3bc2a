// Package repository содержит хранилище ссылок и их аналитики.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tempizhere/linkstat/internal/models"
)

// Поля с ограничением уникальности
const (
	FieldOriginalURL = "original_url"
	FieldShortID     = "short_id"
)

var (
	// ErrDuplicateKey возвращается, если original_url или short_id уже заняты
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrLinkNotFound возвращается операциями изменения для неизвестного short_id
	ErrLinkNotFound = errors.New("link not found")
)

// DuplicateKeyError описывает нарушение уникальности при создании ссылки
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s %q already exists", e.Field, e.Value)
}

// Is позволяет сравнивать ошибку с ErrDuplicateKey через errors.Is
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// Repository определяет интерфейс хранилища ссылок.
// Методы поиска и Create не загружают адреса посетителей (VisitorAddresses == nil),
// полный набор возвращают RecordVisit и GetStats.
type Repository interface {
	// FindByOriginalURL возвращает ссылку по исходному URL и флаг существования
	FindByOriginalURL(ctx context.Context, originalURL string) (models.Link, bool, error)
	// FindByShortID возвращает ссылку по короткому ID и флаг существования
	FindByShortID(ctx context.Context, shortID string) (models.Link, bool, error)
	// Create сохраняет новую ссылку; при конфликте возвращает *DuplicateKeyError
	Create(ctx context.Context, originalURL, shortID, creatorID string) (models.Link, error)
	// RecordVisit атомарно увеличивает счётчик переходов и добавляет адрес посетителя
	RecordVisit(ctx context.Context, shortID, address string) (models.Link, error)
	// GetStats возвращает статистику ссылки и флаг существования
	GetStats(ctx context.Context, shortID string) (models.Stats, bool, error)
	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}

// Database определяет интерфейс для работы с базой данных
type Database interface {
	// PingContext проверяет соединение с базой данных
	PingContext(ctx context.Context) error
	// Close закрывает соединение с базой данных
	Close() error
	// ExecContext выполняет SQL-команду без возврата результатов
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	// QueryContext выполняет SQL-запрос и возвращает результаты
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	// QueryRowContext выполняет SQL-запрос и возвращает одну строку результата
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	// BeginTx начинает новую транзакцию
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
