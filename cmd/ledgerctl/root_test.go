package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"lesson-ledger/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLedgerctl_ReportAndClear(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	dsn := filepath.Join(t.TempDir(), "records.db")

	if _, err := run(t, "migrate", "--dsn", dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s, err := storage.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = s.Insert(context.Background(), storage.Submission{EmployeeName: "Olga", Hours: 4, Rate: 600, Total: 2400})
	_ = s.Close()
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	out, err := run(t, "list", "--dsn", dsn)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Olga") || !strings.Contains(out, "2400.0") {
		t.Fatalf("list output: %q", out)
	}

	out, err = run(t, "report", "--dsn", dsn)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "Olga: 2400.00₽. 💳Заработал 4 * 700 = 2800₽") {
		t.Fatalf("report output: %q", out)
	}

	if _, err := run(t, "clear", "--dsn", dsn); err == nil {
		t.Fatalf("clear without --yes must fail")
	}
	out, err = run(t, "clear", "--yes", "--dsn", dsn)
	if err != nil || !strings.Contains(out, "deleted 1 record(s)") {
		t.Fatalf("clear: %q %v", out, err)
	}

	out, err = run(t, "report", "--dsn", dsn)
	if err != nil || !strings.Contains(out, "Нет данных.") {
		t.Fatalf("report after clear: %q %v", out, err)
	}
}
