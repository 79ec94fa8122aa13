package config

import "testing"

func TestParseAdminIDs(t *testing.T) {
	cases := map[string][]int64{
		"[721585818, 708244245]": {721585818, 708244245},
		"1,2,3":                  {1, 2, 3},
		"10:20":                  {10, 20},
		"":                       {},
		"[]":                     {},
		"[1, abc]":               {},
	}
	for raw, want := range cases {
		got := ParseAdminIDs(raw)
		if len(got) != len(want) {
			t.Fatalf("%q: want %v, got %v", raw, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%q: want %v, got %v", raw, want, got)
			}
		}
	}
}

func TestParse_RequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error without BOT_TOKEN")
	}
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_ID", "not a list")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cfg.AdminIDs) != 0 {
		t.Fatalf("malformed admin list must give empty set, got %v", cfg.AdminIDs)
	}
	if cfg.Store.DBDriver != DriverSQLite || cfg.Store.DatabaseDSN != "database.db" {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.SessionIdleTTL != 0 {
		t.Fatalf("idle ttl must default to disabled, got %v", cfg.SessionIdleTTL)
	}
}

func TestParseStore_WithoutToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=localhost dbname=ledger")
	sc, err := ParseStore()
	if err != nil {
		t.Fatalf("parse store: %v", err)
	}
	if sc.DBDriver != DriverPostgres || sc.DatabaseDSN != "host=localhost dbname=ledger" {
		t.Fatalf("unexpected store config: %+v", sc)
	}
}
