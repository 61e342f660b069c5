package pg

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type txContextKey string

const txKey txContextKey = "trx"

// DB wraps separate read and write gorm handles. Both may point at the same
// database; the split keeps replica-aware deployments possible.
type DB struct {
	read  *gorm.DB
	write *gorm.DB
}

func Create(config Config, withDebug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if withDebug {
		db = db.Debug()
	}
	return db, nil
}

func CreateReadWrite(readConfig Config, writeConfig Config, withDebug bool) (*DB, error) {
	read, err := Create(readConfig, withDebug)
	if err != nil {
		return nil, err
	}
	write, err := Create(writeConfig, withDebug)
	if err != nil {
		return nil, err
	}
	return &DB{read, write}, nil
}

// WithinTransaction runs fn inside a single database transaction. Any error
// returned by fn rolls back every write made through the context-scoped
// handle; a nil return commits them all.
func (r *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.write.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, txKey, tx)
		return fn(ctx)
	})
}

// Write returns the transaction bound to ctx when one is open, otherwise the
// plain write handle.
func (r *DB) Write(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return r.write.WithContext(ctx)
}

// Read returns the transaction bound to ctx when one is open, otherwise the
// plain read handle. Reads inside a transaction observe its uncommitted
// writes.
func (r *DB) Read(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return r.read.WithContext(ctx)
}

// Ping verifies connectivity on both handles.
func (r *DB) Ping(ctx context.Context) error {
	for _, h := range []*gorm.DB{r.read, r.write} {
		sqlDB, err := h.DB()
		if err != nil {
			return fmt.Errorf("pg: obtaining sql handle: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: ping: %w", err)
		}
	}
	return nil
}
