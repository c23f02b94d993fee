package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/backoffice/internal/models"
)

// DefaultRecentLimit is how many uploads the repository keeps
const DefaultRecentLimit = 50

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool  *pgxpool.Pool
	limit int
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
	RecentLimit  int
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 1
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresRepositoryFromPool(pool, cfg.RecentLimit), nil
}

// NewPostgresRepositoryFromPool wraps an existing pool
func NewPostgresRepositoryFromPool(pool *pgxpool.Pool, limit int) *PostgresRepository {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &PostgresRepository{pool: pool, limit: limit}
}

// Pool exposes the connection pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Add records an upload and trims the list to the newest entries
func (r *PostgresRepository) Add(ctx context.Context, asset models.UploadedAsset) error {
	uploadedAt := asset.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO recent_uploads (url, asset_type, context, uploaded_at)
		VALUES ($1, $2, $3, $4)
	`, asset.URL, string(asset.Type), string(asset.Context), uploadedAt)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM recent_uploads
		WHERE id NOT IN (
			SELECT id FROM recent_uploads ORDER BY id DESC LIMIT $1
		)
	`, r.limit)
	if err != nil {
		return fmt.Errorf("failed to trim recent uploads: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upload: %w", err)
	}
	return nil
}

// Remove drops every record of url
func (r *PostgresRepository) Remove(ctx context.Context, url string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM recent_uploads WHERE url = $1`, url); err != nil {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

// List returns the uploads, newest first
func (r *PostgresRepository) List(ctx context.Context) ([]models.UploadedAsset, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT url, asset_type, context, uploaded_at
		FROM recent_uploads
		ORDER BY id DESC
		LIMIT $1
	`, r.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return scanAssets(rows)
}

// ByContext returns the uploads of one context, newest first
func (r *PostgresRepository) ByContext(ctx context.Context, c models.AssetContext) ([]models.UploadedAsset, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT url, asset_type, context, uploaded_at
		FROM recent_uploads
		WHERE context = $1
		ORDER BY id DESC
		LIMIT $2
	`, string(c), r.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return scanAssets(rows)
}

// Clear empties the list
func (r *PostgresRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM recent_uploads`); err != nil {
		return fmt.Errorf("failed to clear uploads: %w", err)
	}
	return nil
}

func scanAssets(rows pgx.Rows) ([]models.UploadedAsset, error) {
	defer rows.Close()

	assets := make([]models.UploadedAsset, 0)
	for rows.Next() {
		var a models.UploadedAsset
		var assetType, assetCtx string
		if err := rows.Scan(&a.URL, &assetType, &assetCtx, &a.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		a.Type = models.AssetType(assetType)
		a.Context = models.AssetContext(assetCtx)
		assets = append(assets, a)
	}

	return assets, rows.Err()
}
