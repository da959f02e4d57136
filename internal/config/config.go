package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot.
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	// Supabase project Postgres endpoint and access key.
	DatabaseURL string `env:"DATABASE_URL,required"`
	DatabaseKey string `env:"DATABASE_KEY,required"`

	BotToken string `env:"BOT_TOKEN,required"`

	// How long the "set a nickname" reminder stays in the group.
	ReminderTTL time.Duration `env:"REMINDER_TTL" envDefault:"15s"`

	// Daily stats report: HH:MM local time, empty disables the job.
	StatsReportTime string  `env:"STATS_REPORT_TIME" envDefault:""`
	AdminIDs        []int64 `env:"ADMIN_IDS" envSeparator:","`
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	// Ignore a missing .env: in production the variables come from the host.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// DSN builds the Postgres connection string. The access key becomes the
// password when the endpoint URL does not already carry one.
func (c Config) DSN() string {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil || u.Host == "" {
		return c.DatabaseURL
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			return c.DatabaseURL
		}
		u.User = url.UserPassword(u.User.Username(), c.DatabaseKey)
		return u.String()
	}
	u.User = url.UserPassword("postgres", c.DatabaseKey)
	return u.String()
}
