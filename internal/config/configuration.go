package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"thirdcoast.systems/fetchbox/internal/site"
	"thirdcoast.systems/fetchbox/pkg/utils/language"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int    `mapstructure:"WEBSERVER_PORT" validate:"min=1,max=65535"`
	BodyLimit     string `mapstructure:"BODY_LIMIT"`
	StaticDir     string `mapstructure:"STATIC_DIR" validate:"omitempty,dir"`
	LogLevel      string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	// Storage
	DownloadRoot string `mapstructure:"DOWNLOAD_ROOT" validate:"required"`
	UploadRoot   string `mapstructure:"UPLOAD_ROOT" validate:"required"`

	// Job lifetime
	JobTTLHours           float64 `mapstructure:"JOB_TTL_HOURS" validate:"gt=0"`
	CleanupIntervalHours  float64 `mapstructure:"CLEANUP_INTERVAL_HOURS" validate:"gt=0"`
	JobExpiryCheckSeconds int     `mapstructure:"JOB_EXPIRY_CHECK_SECONDS" validate:"min=1"`

	// External tools
	YtdlpPath          string `mapstructure:"YTDLP_PATH" validate:"required"`
	CurlPath           string `mapstructure:"CURL_PATH" validate:"required"`
	YouTubeCookiesPath string `mapstructure:"YOUTUBE_COOKIES_PATH"`
	VimeoCookiesPath   string `mapstructure:"VIMEO_COOKIES_PATH"`
	SubtitleLanguage   string `mapstructure:"SUBTITLE_LANGUAGE" validate:"bcp47_language_tag"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	typ := reflect.TypeOf(c)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			viper.BindEnv(tag)
		}
	}
	// PORT is what most hosting platforms inject.
	viper.BindEnv("WEBSERVER_PORT", "WEBSERVER_PORT", "PORT")
}

// LoadDotEnv reads .env into the process environment if present. Variables
// already set win.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadWithoutValidation reads the environment and defaults only. Operator
// tooling uses it when the storage roots are not needed.
func LoadWithoutValidation() (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 3000)
	viper.SetDefault("BODY_LIMIT", "2M")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JOB_TTL_HOURS", 3)
	viper.SetDefault("CLEANUP_INTERVAL_HOURS", 3)
	viper.SetDefault("JOB_EXPIRY_CHECK_SECONDS", 60)
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("CURL_PATH", "curl")
	viper.SetDefault("SUBTITLE_LANGUAGE", "en")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func LoadConfig(ctx context.Context) (*Config, error) {
	loaded, err := LoadWithoutValidation()
	if err != nil {
		return nil, err
	}
	cfg := *loaded

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if _, err := cfg.BodyLimitBytes(); err != nil {
		return nil, fmt.Errorf("validate config: BODY_LIMIT: %w", err)
	}

	slog.Info("Loaded configuration",
		"port", cfg.WebServerPort,
		"download_root", cfg.DownloadRoot,
		"upload_root", cfg.UploadRoot,
		"job_ttl", cfg.JobTTL().String(),
		"cleanup_interval", cfg.CleanupInterval().String(),
	)

	return &cfg, nil
}

// EnsureRoots makes both storage roots absolute and creates them.
func (c *Config) EnsureRoots() error {
	for _, p := range []*string{&c.DownloadRoot, &c.UploadRoot} {
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", abs, err)
		}
		*p = abs
	}
	return nil
}

func (c *Config) Roots() []string {
	return []string{c.DownloadRoot, c.UploadRoot}
}

// BodyLimitBytes parses BODY_LIMIT ("2M", "512KiB", "1,000"). Empty means 2M.
func (c *Config) BodyLimitBytes() (uint64, error) {
	limit := c.BodyLimit
	if limit == "" {
		limit = "2M"
	}
	n, err := humanize.ParseBytes(limit)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func (c *Config) JobTTL() time.Duration {
	return hours(c.JobTTLHours)
}

func (c *Config) CleanupInterval() time.Duration {
	return hours(c.CleanupIntervalHours)
}

func (c *Config) ExpiryCheckInterval() time.Duration {
	return time.Duration(c.JobExpiryCheckSeconds) * time.Second
}

func (c *Config) Cookies() site.Cookies {
	return site.Cookies{
		site.CookieYouTube: c.YouTubeCookiesPath,
		site.CookieVimeo:   c.VimeoCookiesPath,
	}
}

func (c *Config) SubtitleTag() language.Tag {
	tag, err := language.Parse(c.SubtitleLanguage)
	if err != nil {
		tag, _ = language.Parse("en")
	}
	return tag
}

// SlogLevel maps LOG_LEVEL onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
