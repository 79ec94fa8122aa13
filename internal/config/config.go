package config

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type DBDriver string

const (
	DriverSQLite   DBDriver = "sqlite"
	DriverPostgres DBDriver = "postgres"
)

// StoreConfig selects the record database.
type StoreConfig struct {
	DBDriver    DBDriver `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN string   `env:"DATABASE_DSN" envDefault:"database.db"`
}

type Config struct {
	BotToken string   `env:"BOT_TOKEN,required,notEmpty"`
	AdminIDs AdminIDs `env:"ADMIN_ID"`

	Store StoreConfig

	// Sessions
	SessionDBPath  string        `env:"SESSION_DB_PATH" envDefault:"data/sessions.bolt"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"0"`

	// Scheduled report broadcast, UTC cron spec. Empty disables it.
	ReportCron string `env:"REPORT_CRON"`

	StartupMessage string `env:"STARTUP_MESSAGE" envDefault:"✅ Бот запущен и готов к работе."`
}

// AdminIDs is the administrator identity set. A value that cannot be parsed
// yields an empty set instead of failing startup.
type AdminIDs []int64

func (a *AdminIDs) UnmarshalText(text []byte) error {
	*a = ParseAdminIDs(string(text))
	return nil
}

// ParseAdminIDs accepts "[1, 2]", "1,2" and "1:2". Any malformed element
// discards the whole list.
func ParseAdminIDs(raw string) AdminIDs {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ':' || r == ' ' || r == '\t'
	})
	ids := make(AdminIDs, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			log.Printf("⚠️ ADMIN_ID is malformed (%q), using empty admin set", raw)
			return AdminIDs{}
		}
		ids = append(ids, id)
	}
	return ids
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseStore reads only the record database settings.
func ParseStore() (StoreConfig, error) {
	var sc StoreConfig
	err := env.Parse(&sc)
	return sc, err
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
