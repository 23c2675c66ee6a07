package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	DefaultNotionURL  = "https://api.notion.com/v1"
	DefaultHolidayURL = "https://timor.tech/api/holiday"
	DefaultListen     = ":8080"
	DefaultTimezone   = "Asia/Shanghai"

	// ExclusionRestDays removes weekends and public holidays from ICS events.
	ExclusionRestDays = "rest-days"
	// ExclusionHolidays removes public holidays only from ICS events.
	ExclusionHolidays = "holidays"
)

type Notion struct {
	Token      string        `yaml:"token"`
	DatabaseID string        `yaml:"database_id"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type Holiday struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// Prefetch is the cron schedule warming the holiday cache.
	Prefetch string `yaml:"prefetch"`
}

type Server struct {
	Listen string `yaml:"listen"`
	// Instance is the name advertised over mDNS, the hostname if empty.
	Instance string `yaml:"instance"`
}

type Log struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	LogglyToken string `yaml:"loggly_token"`
}

// Config is built once at startup and handed to every component needing it.
type Config struct {
	Notion   Notion  `yaml:"notion"`
	Holiday  Holiday `yaml:"holiday"`
	Server   Server  `yaml:"server"`
	Log      Log     `yaml:"log"`
	DataDir  string  `yaml:"data_dir"`
	Timezone string  `yaml:"timezone"`
	// ICSExclusion selects which days are removed from ICS events.
	ICSExclusion string `yaml:"ics_exclusion"`
	DevMode      bool   `yaml:"devmode"`

	SkipValidation bool `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Notion: Notion{
			BaseURL: DefaultNotionURL,
			Timeout: 30 * time.Second,
		},
		Holiday: Holiday{
			BaseURL:  DefaultHolidayURL,
			Timeout:  10 * time.Second,
			CacheTTL: 24 * time.Hour,
			Prefetch: "0 3 * * *",
		},
		Server: Server{
			Listen: DefaultListen,
		},
		Log: Log{
			Level: "info",
		},
		DataDir:      "data",
		Timezone:     DefaultTimezone,
		ICSExclusion: ExclusionRestDays,
	}
}

// Load builds the configuration from the defaults, the optional YAML file at path,
// the given .env files (".env" if none given, missing files are ignored) and finally
// the process environment.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return nil, err
		}
	}
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// ReadFile merges the YAML file at path into c.
func (c *Config) ReadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides c with the environment. Empty values count as unset.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	flag := func(dst *bool, key string) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, key, v)
		}
		*dst = b
		return nil
	}

	str(&c.Notion.Token, "NOTION_INTEGRATION_TOKEN")
	str(&c.Notion.DatabaseID, "NEXT_PUBLIC_NOTION_DATABASE_ID", "NOTION_DATABASE_ID")
	str(&c.Notion.BaseURL, "NOTION_API_URL")
	str(&c.Holiday.BaseURL, "HOLIDAY_API_URL")
	str(&c.Server.Listen, "LISTEN")
	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Log.File, "LOG_FILE")
	str(&c.Log.LogglyToken, "LOGGLY_TOKEN")
	str(&c.DataDir, "DATA_DIR")
	str(&c.Timezone, "TIMEZONE")
	str(&c.ICSExclusion, "ICS_EXCLUSION")

	// SKIP_ENV_VALIDATION is set by presence, like any non-empty value
	if v := strings.TrimSpace(getenv("SKIP_ENV_VALIDATION")); v != "" {
		c.SkipValidation = v != "0" && !strings.EqualFold(v, "false")
	}
	return flag(&c.DevMode, "DEVMODE")
}

// Normalize fills zero values with their defaults.
func (c *Config) Normalize() {
	d := Default()
	if c.Notion.BaseURL == "" {
		c.Notion.BaseURL = d.Notion.BaseURL
	}
	c.Notion.BaseURL = strings.TrimRight(c.Notion.BaseURL, "/")
	if c.Notion.Timeout <= 0 {
		c.Notion.Timeout = d.Notion.Timeout
	}
	if c.Holiday.BaseURL == "" {
		c.Holiday.BaseURL = d.Holiday.BaseURL
	}
	c.Holiday.BaseURL = strings.TrimRight(c.Holiday.BaseURL, "/")
	if c.Holiday.Timeout <= 0 {
		c.Holiday.Timeout = d.Holiday.Timeout
	}
	if c.Holiday.CacheTTL <= 0 {
		c.Holiday.CacheTTL = d.Holiday.CacheTTL
	}
	if c.Holiday.Prefetch == "" {
		c.Holiday.Prefetch = d.Holiday.Prefetch
	}
	if c.Server.Listen == "" {
		c.Server.Listen = d.Server.Listen
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.ICSExclusion == "" {
		c.ICSExclusion = d.ICSExclusion
	}
}

// Validate fails when a required value is missing, unless validation is skipped.
func (c *Config) Validate() error {
	if c.SkipValidation {
		return nil
	}
	var missing []string
	if c.Notion.Token == "" {
		missing = append(missing, "NOTION_INTEGRATION_TOKEN")
	}
	if c.Notion.DatabaseID == "" {
		missing = append(missing, "NEXT_PUBLIC_NOTION_DATABASE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	switch c.ICSExclusion {
	case ExclusionRestDays, ExclusionHolidays:
	default:
		return fmt.Errorf("%w: ICS_EXCLUSION must be %q or %q, got %q", ErrInvalid, ExclusionRestDays, ExclusionHolidays, c.ICSExclusion)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: TIMEZONE: %s", ErrInvalid, err)
	}
	return nil
}

// Location returns the configured time zone, falling back to the local one.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.Local
}

// DatabasePath is the bbolt file holding cached holidays.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "zencal.db")
}
