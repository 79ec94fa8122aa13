package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"lesson-ledger/internal/storage"
)

// CompanyHourRate is the fixed per-hour figure shown as the employee's
// earnings. It is intentionally independent of the rate entered in the form
// and of the stored total.
const CompanyHourRate = 700

// NoData is returned instead of a report when there are no records.
const NoData = "Нет данных."

// ErrNonFinite is returned when an aggregated total is not a finite number.
var ErrNonFinite = errors.New("non-finite total")

type Aggregator interface {
	AggregateByEmployee(ctx context.Context) ([]storage.EmployeeTotals, error)
}

type Engine struct {
	store Aggregator
}

func NewEngine(store Aggregator) *Engine {
	return &Engine{store: store}
}

// Build renders the all-time report. Groups come in the store's order,
// which is ascending by employee name.
func (e *Engine) Build(ctx context.Context) (string, error) {
	rows, err := e.store.AggregateByEmployee(ctx)
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}
	out, err := Render(rows)
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}
	return out, nil
}

func Render(rows []storage.EmployeeTotals) (string, error) {
	if len(rows) == 0 {
		return NoData, nil
	}
	rate := decimal.NewFromInt(CompanyHourRate)
	var b strings.Builder
	b.WriteString("📊 Отчёт за всё время:\n\n")
	for _, r := range rows {
		if math.IsInf(r.Total, 0) || math.IsNaN(r.Total) {
			return "", fmt.Errorf("%w for employee %q", ErrNonFinite, r.EmployeeName)
		}
		fmt.Fprintf(&b, "👨‍🏫 %s: %s₽. 💳Заработал %d * %d = %s₽\n",
			r.EmployeeName,
			decimal.NewFromFloat(r.Total).StringFixed(2),
			r.Hours, CompanyHourRate, decimal.NewFromInt(r.Hours).Mul(rate).String())
	}
	return b.String(), nil
}
