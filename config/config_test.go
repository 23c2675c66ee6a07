package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(k string) string {
		return values[k]
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"NOTION_INTEGRATION_TOKEN":       "secret",
		"NEXT_PUBLIC_NOTION_DATABASE_ID": "db-public",
		"NOTION_DATABASE_ID":             "db-private",
		"LISTEN":                         "127.0.0.1:9000",
		"ICS_EXCLUSION":                  "holidays",
		"DEVMODE":                        "true",
		"LOG_LEVEL":                      "",
	}))
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Notion.Token)
	assert.Equal(t, "db-public", cfg.Notion.DatabaseID)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
	assert.Equal(t, ExclusionHolidays, cfg.ICSExclusion)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "info", cfg.Log.Level, "empty values are unset")
}

func TestApplyEnvDatabaseFallback(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(env(map[string]string{"NOTION_DATABASE_ID": "db-private"})))
	assert.Equal(t, "db-private", cfg.Notion.DatabaseID)
}

func TestApplyEnvRejectsBadBoolean(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{"DEVMODE": "sometimes"}))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	data := []struct {
		name  string
		env   map[string]string
		valid bool
	}{
		{"complete", map[string]string{"NOTION_INTEGRATION_TOKEN": "t", "NOTION_DATABASE_ID": "d"}, true},
		{"missing token", map[string]string{"NOTION_DATABASE_ID": "d"}, false},
		{"missing database", map[string]string{"NOTION_INTEGRATION_TOKEN": "t"}, false},
		{"empty token", map[string]string{"NOTION_INTEGRATION_TOKEN": " ", "NOTION_DATABASE_ID": "d"}, false},
		{"skipped", map[string]string{"SKIP_ENV_VALIDATION": "1"}, true},
		{"bad exclusion", map[string]string{"NOTION_INTEGRATION_TOKEN": "t", "NOTION_DATABASE_ID": "d", "ICS_EXCLUSION": "weekends"}, false},
		{"bad timezone", map[string]string{"NOTION_INTEGRATION_TOKEN": "t", "NOTION_DATABASE_ID": "d", "TIMEZONE": "Mars/Olympus"}, false},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.ApplyEnv(env(d.env)))
			cfg.Normalize()
			err := cfg.Validate()
			if d.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "zencal.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
notion:
  database_id: from-file
  base_url: http://notion.local/v1/
  timeout: 5s
holiday:
  cache_ttl: 1h
server:
  listen: ":7000"
`), 0600))
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("NOTION_INTEGRATION_TOKEN=from-dotenv\n"), 0600))
	t.Setenv("LISTEN", ":7001")
	t.Setenv("NOTION_INTEGRATION_TOKEN", "restored after the test")
	require.NoError(t, os.Unsetenv("NOTION_INTEGRATION_TOKEN"))

	cfg, err := Load(file, dotenv, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Notion.DatabaseID)
	assert.Equal(t, "http://notion.local/v1", cfg.Notion.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Notion.Timeout)
	assert.Equal(t, time.Hour, cfg.Holiday.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Holiday.Timeout)
	assert.Equal(t, ":7001", cfg.Server.Listen)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Asia/Shanghai", cfg.Location().String())
	cfg.Timezone = "Nowhere/Special"
	assert.Equal(t, time.Local, cfg.Location())
}
