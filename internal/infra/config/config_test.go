package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 5, cfg.Tips.MaxTips)
	require.Equal(t, "healthcalc.calculations", cfg.Events.RabbitMQ.Queue)
	require.False(t, cfg.Cache.Redis.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
tips:
  maxTips: 3
  cacheTtl: 10m
cache:
  redis:
    enabled: true
    addr: "localhost:6379"
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TIPS_MAX", "4")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 4, cfg.Tips.MaxTips)
	require.Equal(t, 10*time.Minute, cfg.Tips.CacheTTL)
	require.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"empty address":       func(c *Config) { c.HTTP.Address = "" },
		"zero tips":           func(c *Config) { c.Tips.MaxTips = 0 },
		"redis without addr":  func(c *Config) { c.Cache.Redis.Enabled = true },
		"rabbit without url":  func(c *Config) { c.Events.RabbitMQ.Enabled = true },
		"temperature too hot": func(c *Config) { c.LLM.Temperature = 3 },
		"zero session ttl":    func(c *Config) { c.Session.TTL = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
