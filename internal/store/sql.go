package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	stagingSuffix    = "__staging"
	defaultBatchSize = 500
)

// SQLStore keeps each table as a SQL table of the same name.
type SQLStore struct {
	db        *gorm.DB
	logger    *slog.Logger
	batchSize int
}

func OpenSQL(driver, dsn string, log *slog.Logger) (*SQLStore, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}

	return NewSQLStore(db, log), nil
}

func NewSQLStore(db *gorm.DB, log *slog.Logger) *SQLStore {
	return &SQLStore{db: db, logger: log, batchSize: defaultBatchSize}
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

// StoreTable builds the new contents in a staging table and swaps it in
// within one transaction.
func (s *SQLStore) StoreTable(ctx context.Context, name string, rows any) error {
	n, err := checkRows(name, rows)
	if err != nil {
		return err
	}
	staging := name + stagingSuffix

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := tx.Migrator()
		if m.HasTable(staging) {
			if err := m.DropTable(staging); err != nil {
				return fmt.Errorf("drop stale staging table: %w", err)
			}
		}
		if err := tx.Table(staging).AutoMigrate(prototype(name)); err != nil {
			return fmt.Errorf("create staging table: %w", err)
		}
		if n > 0 {
			if err := tx.Table(staging).CreateInBatches(rows, s.batchSize).Error; err != nil {
				return fmt.Errorf("insert rows: %w", err)
			}
		}
		if m.HasTable(name) {
			if err := m.DropTable(name); err != nil {
				return fmt.Errorf("drop previous table: %w", err)
			}
		}
		if err := m.RenameTable(staging, name); err != nil {
			return fmt.Errorf("swap staging table: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: replace %s: %w", name, err)
	}

	s.logger.Debug("table stored", "driver", "sql", "table", name, "rows", n)
	return nil
}

func (s *SQLStore) LoadTable(ctx context.Context, name string, dest any) error {
	if err := checkDest(name, dest); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(name) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := db.Table(name).Find(dest).Error; err != nil {
		return fmt.Errorf("store: load %s: %w", name, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
