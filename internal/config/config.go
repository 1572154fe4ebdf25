package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

type Config struct {
	BotToken    string
	DatabaseURL string
	AdminIDs    []int64
	Location    *time.Location
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	Release     string

	SessionStore string
	// ZeroQuotaUnlimited: нулевая квота мероприятия означает «без ограничений».
	ZeroQuotaUnlimited bool

	admins map[int64]struct{}
}

// env: сырые переменные окружения.
type env struct {
	BotToken           string `env:"BOT_TOKEN" env-required:"true"`
	DatabaseURL        string `env:"DATABASE_URL" env-required:"true"`
	AdminIDs           string `env:"ADMIN_IDS"`
	TZ                 string `env:"TZ" env-default:"UTC"`
	HTTPAddr           string `env:"HTTP_ADDR" env-default:":8080"`
	LogLevel           string `env:"LOG_LEVEL" env-default:"info"`
	Env                string `env:"ENV" env-default:"dev"`
	SentryDSN          string `env:"SENTRY_DSN"`
	Release            string `env:"RELEASE"`
	SessionStore       string `env:"SESSION_STORE" env-default:"postgres"`
	ZeroQuotaUnlimited bool   `env:"ZERO_QUOTA_UNLIMITED" env-default:"false"`
}

func Load() (*Config, error) {
	var e env
	if err := cleanenv.ReadEnv(&e); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	loc, err := time.LoadLocation(e.TZ)
	if err != nil {
		return nil, fmt.Errorf("TZ: %w", err)
	}

	adminIDs, err := parseIDs(e.AdminIDs)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	store := strings.ToLower(strings.TrimSpace(e.SessionStore))
	switch store {
	case SessionStorePostgres, SessionStoreMemory:
	default:
		return nil, fmt.Errorf("SESSION_STORE: unknown value %q", e.SessionStore)
	}

	cfg := &Config{
		BotToken:           e.BotToken,
		DatabaseURL:        e.DatabaseURL,
		AdminIDs:           adminIDs,
		Location:           loc,
		HTTPAddr:           e.HTTPAddr,
		LogLevel:           e.LogLevel,
		Env:                e.Env,
		SentryDSN:          e.SentryDSN,
		Release:            e.Release,
		SessionStore:       store,
		ZeroQuotaUnlimited: e.ZeroQuotaUnlimited,
	}
	cfg.indexAdmins()
	return cfg, nil
}

// IsAdmin: входит ли Telegram ID в список администраторов.
func (c *Config) IsAdmin(id int64) bool {
	if c.admins == nil {
		for _, a := range c.AdminIDs {
			if a == id {
				return true
			}
		}
		return false
	}
	_, ok := c.admins[id]
	return ok
}

func (c *Config) indexAdmins() {
	c.admins = make(map[int64]struct{}, len(c.AdminIDs))
	for _, id := range c.AdminIDs {
		c.admins[id] = struct{}{}
	}
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' || r == '\n' || r == '\t' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
