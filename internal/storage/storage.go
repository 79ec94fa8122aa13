package storage

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps every failure of the underlying database so callers
// can tell a storage outage apart from other errors.
var ErrUnavailable = errors.New("storage unavailable")

// Submission is the data collected by one completed form. Total must already
// equal Hours * Rate; the store persists it as given and never recomputes it.
type Submission struct {
	ChatID       string  `gorm:"column:chat_id"`
	StudentName  string  `gorm:"column:student_name"`
	EmployeeName string  `gorm:"column:employee_name;index"`
	NextLesson   string  `gorm:"column:next_lesson"`
	Hours        int64   `gorm:"column:hours"`
	Rate         float64 `gorm:"column:rate"`
	Total        float64 `gorm:"column:total"`
}

// Record is an immutable stored submission. IDs are assigned by the database
// and never reused, even after DeleteAll.
type Record struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Submission `gorm:"embedded"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Record) TableName() string { return "records" }

// EmployeeTotals is one row of the per-employee aggregation. Grouping is by
// the employee name exactly as submitted, case-sensitive.
type EmployeeTotals struct {
	EmployeeName string
	Total        float64
	Hours        int64
}

// Store abstracts persistence of submitted records.
// Insert and DeleteAll are committed before they return.
// Implementations must be safe for concurrent use.
type Store interface {
	InitSchema(ctx context.Context) error
	Insert(ctx context.Context, sub Submission) (uint64, error)
	DeleteAll(ctx context.Context) (int64, error)
	AggregateByEmployee(ctx context.Context) ([]EmployeeTotals, error)
	Count(ctx context.Context) (int64, error)
}
