package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTableName is used when no table name is configured.
const DefaultTableName = "catalog_cache"

// cleanupChance is the fraction of successful writes that additionally
// trigger a best-effort sweep of expired rows. There is no active TTL
// sweep in the request path, so table growth is bounded by traffic.
const cleanupChance = 0.01

// defaultCleanupLimit bounds one opportunistic sweep.
const defaultCleanupLimit = 500

// entryModel is the GORM model for the cache table.
type entryModel struct {
	Key       string    `gorm:"column:key;primaryKey;type:text"`
	Value     []byte    `gorm:"column:value;type:jsonb;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// PostgresBackend implements domain.Cache on a single relational table
// (key PK, value jsonb, expires_at, created_at, updated_at). The table
// is created lazily on first use; reads that find an expired row delete
// it and report a miss; writes upsert atomically on the key.
type PostgresBackend struct {
	db     *gorm.DB
	table  string
	logger *zap.Logger

	initOnce sync.Once
	initErr  error
}

// NewPostgresBackend creates a backend over an established connection.
// tableName falls back to DefaultTableName when empty.
func NewPostgresBackend(db *gorm.DB, logger *zap.Logger, tableName string) *PostgresBackend {
	if tableName == "" {
		tableName = DefaultTableName
	}
	return &PostgresBackend{
		db:     db,
		table:  tableName,
		logger: logger,
	}
}

// ensureInit creates the cache table and its expiry index once per
// process. The sync.Once guard makes concurrent first-callers converge
// on a single creation attempt, and the statements themselves are
// idempotent so concurrent processes converge too.
func (p *PostgresBackend) ensureInit() error {
	p.initOnce.Do(func() {
		m := gormigrate.New(p.db, gormigrate.DefaultOptions, []*gormigrate.Migration{
			p.createCacheTable(),
		})
		p.initErr = m.Migrate()
	})
	return p.initErr
}

func (p *PostgresBackend) createCacheTable() *gormigrate.Migration {
	table := p.table
	return &gormigrate.Migration{
		ID: "001_create_" + table,
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					key TEXT PRIMARY KEY,
					value JSONB NOT NULL,
					expires_at TIMESTAMPTZ NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`, table)).Error
			if err != nil {
				return err
			}

			// The expiry index supports the bounded cleanup query.
			return tx.Exec(fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS %s_expires_at_idx ON %s (expires_at);",
				table, table,
			)).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)).Error
		},
	}
}

// Get retrieves a value by key. An expired row is deleted and reported
// as a miss.
func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := p.ensureInit(); err != nil {
		return nil, fmt.Errorf("initializing cache table: %w", err)
	}

	var row entryModel
	err := p.db.WithContext(ctx).Table(p.table).Where("key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	if !row.ExpiresAt.After(time.Now()) {
		if err := p.Delete(ctx, key); err != nil {
			p.logger.Debug("expired entry delete failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil, nil
	}

	return row.Value, nil
}

// Set upserts a value with the given TTL. A small random fraction of
// successful writes additionally sweeps a bounded number of expired
// rows; sweep failures are swallowed and never fail the write.
func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := p.ensureInit(); err != nil {
		return fmt.Errorf("initializing cache table: %w", err)
	}

	now := time.Now().UTC()
	entry := entryModel{
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}

	err := p.db.WithContext(ctx).Table(p.table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("upserting cache entry: %w", err)
	}

	if rand.Float64() < cleanupChance {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := p.CleanupExpired(ctx, defaultCleanupLimit); err != nil {
				p.logger.Debug("opportunistic cleanup failed", zap.Error(err))
			}
		}()
	}

	return nil
}

// Delete removes a value by key.
func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	if err := p.ensureInit(); err != nil {
		return fmt.Errorf("initializing cache table: %w", err)
	}
	return p.db.WithContext(ctx).Table(p.table).Where("key = ?", key).Delete(&entryModel{}).Error
}

// Clear removes all cached values.
func (p *PostgresBackend) Clear(ctx context.Context) error {
	if err := p.ensureInit(); err != nil {
		return fmt.Errorf("initializing cache table: %w", err)
	}
	return p.db.WithContext(ctx).Exec(fmt.Sprintf("TRUNCATE TABLE %s", p.table)).Error
}

// CleanupExpired deletes at most limit expired rows and returns how many
// were removed. Also run periodically by the cleanup scheduler.
func (p *PostgresBackend) CleanupExpired(ctx context.Context, limit int) (int64, error) {
	if err := p.ensureInit(); err != nil {
		return 0, fmt.Errorf("initializing cache table: %w", err)
	}
	if limit <= 0 {
		limit = defaultCleanupLimit
	}

	result := p.db.WithContext(ctx).Exec(fmt.Sprintf(`
		DELETE FROM %s WHERE key IN (
			SELECT key FROM %s WHERE expires_at <= NOW() LIMIT ?
		)`, p.table, p.table), limit)
	if result.Error != nil {
		return 0, fmt.Errorf("cleaning up expired entries: %w", result.Error)
	}

	return result.RowsAffected, nil
}
