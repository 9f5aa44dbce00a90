package infra

import (
	"context"
	"fmt"
	"sync"

	"stockswift/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connector lazily opens and caches a single GORM connection for the process.
// Handlers are stateless; this is the only shared mutable resource, so access
// goes through Get and the holder itself is never exposed.
type Connector struct {
	dsn string

	mu sync.Mutex
	db *gorm.DB
}

func NewConnector(dsn string) *Connector {
	return &Connector{dsn: dsn}
}

// Get returns the cached connection, dialing on first use. The mutex holds
// concurrent callers on the same in-flight attempt — at most one dial runs at
// a time. A failed attempt leaves the cache empty so the next caller retries.
func (c *Connector) Get(ctx context.Context) (*gorm.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := open(c.dsn)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

// Ping reports connectivity for the health endpoint. It dials if no
// connection is cached yet.
func (c *Connector) Ping(ctx context.Context) error {
	db, err := c.Get(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// open establishes the GORM connection backed by pgx and runs AutoMigrate.
// TranslateError turns Postgres unique violations into gorm.ErrDuplicatedKey,
// which the services map to their conflict errors — the unique indexes on
// users.email and items.sku are the authoritative duplicate check, the
// pre-check queries only exist for the friendlier error path.
func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(&model.User{}, &model.Item{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return db, nil
}
