package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/tempizhere/linkstat/internal/models"
)

// pgUniqueViolation код ошибки PostgreSQL unique_violation
const pgUniqueViolation = "23505"

const (
	queryFindByOriginalURL = `SELECT id, original_url, short_id, creator_id, click_count FROM links WHERE original_url = $1`
	queryFindByShortID     = `SELECT id, original_url, short_id, creator_id, click_count FROM links WHERE short_id = $1`
	queryCreate            = `INSERT INTO links (original_url, short_id, creator_id) VALUES ($1, $2, $3) RETURNING id, click_count`
	// UPDATE берёт блокировку строки до конца транзакции, поэтому визиты одной ссылки сериализуются
	queryIncrementClicks = `UPDATE links SET click_count = click_count + 1 WHERE short_id = $1 RETURNING id, original_url, short_id, creator_id, click_count`
	queryAddVisitor      = `INSERT INTO link_visitors (link_id, address) VALUES ($1, $2) ON CONFLICT (link_id, address) DO NOTHING`
	queryVisitors        = `SELECT address FROM link_visitors WHERE link_id = $1 ORDER BY address`
	queryStats           = `SELECT l.click_count, v.address FROM links l LEFT JOIN link_visitors v ON v.link_id = l.id WHERE l.short_id = $1 ORDER BY v.address`
)

// constraintFields сопоставляет ограничения уникальности с полями ссылки
var constraintFields = map[string]string{
	"links_original_url_key": FieldOriginalURL,
	"links_short_id_key":     FieldShortID,
}

// PostgresRepository реализует интерфейс Repository с использованием PostgreSQL
type PostgresRepository struct {
	db     Database
	logger *zap.Logger
}

// NewPostgresRepository создаёт новый экземпляр PostgresRepository
func NewPostgresRepository(db Database, logger *zap.Logger) (*PostgresRepository, error) {
	if db == nil {
		return nil, errors.New("database is not configured")
	}
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLink(row rowScanner) (models.Link, error) {
	var link models.Link
	err := row.Scan(&link.ID, &link.OriginalURL, &link.ShortID, &link.CreatorID, &link.ClickCount)
	return link, err
}

// FindByOriginalURL возвращает ссылку по исходному URL
func (r *PostgresRepository) FindByOriginalURL(ctx context.Context, originalURL string) (models.Link, bool, error) {
	return r.findOne(ctx, queryFindByOriginalURL, originalURL)
}

// FindByShortID возвращает ссылку по короткому ID
func (r *PostgresRepository) FindByShortID(ctx context.Context, shortID string) (models.Link, bool, error) {
	return r.findOne(ctx, queryFindByShortID, shortID)
}

func (r *PostgresRepository) findOne(ctx context.Context, query, arg string) (models.Link, bool, error) {
	link, err := scanLink(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Link{}, false, nil
	}
	if err != nil {
		r.logger.Error("Failed to find link", zap.String("key", arg), zap.Error(err))
		return models.Link{}, false, fmt.Errorf("find link: %w", err)
	}
	return link, true, nil
}

// Create вставляет ссылку; уникальность обеспечивают ограничения таблицы
func (r *PostgresRepository) Create(ctx context.Context, originalURL, shortID, creatorID string) (models.Link, error) {
	link := models.Link{
		OriginalURL: originalURL,
		ShortID:     shortID,
		CreatorID:   creatorID,
	}
	err := r.db.QueryRowContext(ctx, queryCreate, originalURL, shortID, creatorID).Scan(&link.ID, &link.ClickCount)
	if err != nil {
		if dup := duplicateKeyFromPg(err, originalURL, shortID); dup != nil {
			r.logger.Info("Link already exists", zap.String("field", dup.Field), zap.String("value", dup.Value))
			return models.Link{}, dup
		}
		r.logger.Error("Failed to save link to database",
			zap.String("short_id", shortID), zap.String("url", originalURL), zap.Error(err))
		return models.Link{}, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

// duplicateKeyFromPg преобразует unique_violation в *DuplicateKeyError
func duplicateKeyFromPg(err error, originalURL, shortID string) *DuplicateKeyError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	switch constraintFields[pgErr.ConstraintName] {
	case FieldOriginalURL:
		return &DuplicateKeyError{Field: FieldOriginalURL, Value: originalURL}
	case FieldShortID:
		return &DuplicateKeyError{Field: FieldShortID, Value: shortID}
	default:
		return nil
	}
}

// RecordVisit увеличивает счётчик и добавляет адрес в одной транзакции
func (r *PostgresRepository) RecordVisit(ctx context.Context, shortID, address string) (models.Link, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return models.Link{}, fmt.Errorf("begin transaction: %w", err)
	}
	// После Commit откат ничего не делает
	defer func() { _ = tx.Rollback() }()

	link, err := scanLink(tx.QueryRowContext(ctx, queryIncrementClicks, shortID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Link{}, ErrLinkNotFound
	}
	if err != nil {
		r.logger.Error("Failed to increment clicks", zap.String("short_id", shortID), zap.Error(err))
		return models.Link{}, fmt.Errorf("increment clicks: %w", err)
	}

	if address != "" {
		if _, err := tx.ExecContext(ctx, queryAddVisitor, link.ID, address); err != nil {
			r.logger.Error("Failed to add visitor", zap.String("short_id", shortID), zap.String("address", address), zap.Error(err))
			return models.Link{}, fmt.Errorf("add visitor: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx, queryVisitors, link.ID)
	if err != nil {
		r.logger.Error("Failed to load visitors", zap.String("short_id", shortID), zap.Error(err))
		return models.Link{}, fmt.Errorf("load visitors: %w", err)
	}
	link.VisitorAddresses, err = scanAddresses(rows)
	if err != nil {
		return models.Link{}, fmt.Errorf("load visitors: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return models.Link{}, fmt.Errorf("commit visit: %w", err)
	}
	return link, nil
}

func scanAddresses(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	addrs := []string{}
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, rows.Err()
}

// GetStats читает счётчик и адреса одним запросом, чтобы они были согласованы
func (r *PostgresRepository) GetStats(ctx context.Context, shortID string) (models.Stats, bool, error) {
	rows, err := r.db.QueryContext(ctx, queryStats, shortID)
	if err != nil {
		r.logger.Error("Failed to get stats", zap.String("short_id", shortID), zap.Error(err))
		return models.Stats{}, false, fmt.Errorf("get stats: %w", err)
	}
	defer rows.Close()

	stats := models.Stats{ShortID: shortID, VisitorAddresses: []string{}}
	found := false
	for rows.Next() {
		var addr sql.NullString
		if err := rows.Scan(&stats.ClickCount, &addr); err != nil {
			return models.Stats{}, false, fmt.Errorf("scan stats: %w", err)
		}
		found = true
		if addr.Valid {
			stats.VisitorAddresses = append(stats.VisitorAddresses, addr.String)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Stats{}, false, fmt.Errorf("get stats: %w", err)
	}
	if !found {
		return models.Stats{}, false, nil
	}
	return stats, true, nil
}

// Ping проверяет соединение с базой данных
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Clear очищает все записи в таблицах ссылок
func (r *PostgresRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "TRUNCATE TABLE link_visitors, links RESTART IDENTITY")
	if err != nil {
		r.logger.Error("Failed to clear database", zap.Error(err))
	}
	return err
}
