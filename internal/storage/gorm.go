package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to the record database. driver is "sqlite" (dsn is a file
// path) or "postgres" (dsn is a connection string).
func Open(driver, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown db driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, driver, err)
	}
	if driver == "" || driver == "sqlite" {
		// sqlite allows a single writer; one connection keeps writers queued
		// inside database/sql instead of failing with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return &GormStore{db: db, now: time.Now}, nil
}

// InitSchema creates the records table if it does not exist yet.
func (s *GormStore) InitSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("%w: migrate records: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *GormStore) Insert(ctx context.Context, sub Submission) (uint64, error) {
	rec := Record{Submission: sub, CreatedAt: s.now().UTC()}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("%w: insert record: %v", ErrUnavailable, err)
	}
	return rec.ID, nil
}

// DeleteAll removes every record in one statement and reports how many rows
// were deleted.
func (s *GormStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: delete records: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}

// AggregateByEmployee sums total and hours per employee name, ordered by name.
func (s *GormStore) AggregateByEmployee(ctx context.Context) ([]EmployeeTotals, error) {
	var rows []EmployeeTotals
	err := s.db.WithContext(ctx).
		Model(&Record{}).
		Select("employee_name, SUM(total) AS total, CAST(SUM(hours) AS BIGINT) AS hours").
		Group("employee_name").
		Order("employee_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate records: %v", ErrUnavailable, err)
	}
	return rows, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: count records: %v", ErrUnavailable, err)
	}
	return n, nil
}

// List returns all records in insertion order.
func (s *GormStore) List(ctx context.Context) ([]Record, error) {
	var recs []Record
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("%w: list records: %v", ErrUnavailable, err)
	}
	return recs, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
