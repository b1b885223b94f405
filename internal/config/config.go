package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"pricewatcher/internal/tracker"
)

type Config struct {
	App     AppConfig       `mapstructure:"app"`
	Server  ServerConfig    `mapstructure:"server"`
	Log     LogConfig       `mapstructure:"log"`
	DB      DBConfig        `mapstructure:"db"`
	Cron    CronConfig      `mapstructure:"cron"`
	Scraper ScraperConfig   `mapstructure:"scraper"`
	Email   EmailConfig     `mapstructure:"email"`
	Tracker TrackerConfig   `mapstructure:"tracker"`
	Items   []ProductConfig `mapstructure:"products"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	File              string `mapstructure:"file"`
	FileMaxSizeMB     int    `mapstructure:"file_max_size_mb"`
	FileMaxBackups    int    `mapstructure:"file_max_backups"`
	FileMaxAgeDays    int    `mapstructure:"file_max_age_days"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Check   string `mapstructure:"check"`
	// RunOnStart triggers one cycle immediately instead of waiting for the
	// first cron tick.
	RunOnStart bool `mapstructure:"run_on_start"`
}

type ScraperConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	ProductPause time.Duration `mapstructure:"product_pause"`
}

type EmailConfig struct {
	SMTPHost  string `mapstructure:"smtp_host"`
	SMTPPort  int    `mapstructure:"smtp_port"`
	Sender    string `mapstructure:"sender"`
	Password  string `mapstructure:"password"`
	Recipient string `mapstructure:"recipient"`
}

type TrackerConfig struct {
	// MinDiscountSamples gates the discount rule until the product has at
	// least this many prior observations. 0 keeps the rule active from the
	// first baseline.
	MinDiscountSamples int `mapstructure:"min_discount_samples"`
}

type ProductConfig struct {
	Name        string  `mapstructure:"name"`
	URL         string  `mapstructure:"url"`
	TargetPrice string  `mapstructure:"target_price"`
	MinDiscount float64 `mapstructure:"min_discount"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.file_max_size_mb", 50)
	v.SetDefault("log.file_max_backups", 3)
	v.SetDefault("log.file_max_age_days", 30)
	v.SetDefault("db.max_open_conns", 5)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.check", "@every 6h")
	v.SetDefault("cron.run_on_start", true)
	v.SetDefault("scraper.timeout", "15s")
	v.SetDefault("scraper.user_agent", defaultUserAgent)
	v.SetDefault("scraper.product_pause", "3s")
	v.SetDefault("email.smtp_host", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("tracker.min_discount_samples", 0)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Products converts the raw config entries into tracker products, validating
// the optional alert thresholds. Entries with neither threshold set are
// accepted but will never alert.
func (c Config) Products() ([]tracker.Product, error) {
	out := make([]tracker.Product, 0, len(c.Items))
	for i, item := range c.Items {
		url := strings.TrimSpace(item.URL)
		if url == "" {
			return nil, fmt.Errorf("products[%d]: url is required", i)
		}
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = url
		}
		p := tracker.Product{Name: name, URL: url}
		if raw := strings.TrimSpace(item.TargetPrice); raw != "" {
			target, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("products[%d] (%s): bad target_price %q: %w", i, name, raw, err)
			}
			if target.Sign() <= 0 {
				return nil, fmt.Errorf("products[%d] (%s): target_price must be positive", i, name)
			}
			p.TargetPrice = &target
		}
		if item.MinDiscount != 0 {
			if item.MinDiscount < 0 || item.MinDiscount > 100 {
				return nil, fmt.Errorf("products[%d] (%s): min_discount must be in (0, 100]", i, name)
			}
			md := decimal.NewFromFloat(item.MinDiscount)
			p.MinDiscount = &md
		}
		out = append(out, p)
	}
	return out, nil
}
