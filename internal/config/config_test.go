package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		RegionX:             100,
		RegionY:             200,
		RegionWidth:         400,
		RegionHeight:        300,
		Terms:               []string{"卖出", "抄底"},
		Interval:            30 * time.Second,
		Upscale:             4,
		ThresholdPercentile: 0.90,
		TemplateThreshold:   0.72,
		Concurrency:         4,
	}
}

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no terms", func(c *Config) { c.Terms = nil }},
		{"zero width", func(c *Config) { c.RegionWidth = 0 }},
		{"negative height", func(c *Config) { c.RegionHeight = -1 }},
		{"zero interval", func(c *Config) { c.Interval = 0 }},
		{"upscale too small", func(c *Config) { c.Upscale = 2 }},
		{"percentile at one", func(c *Config) { c.ThresholdPercentile = 1.0 }},
		{"percentile at zero", func(c *Config) { c.ThresholdPercentile = 0 }},
		{"template threshold above one", func(c *Config) { c.TemplateThreshold = 1.5 }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"sms without credentials", func(c *Config) { c.SMSEnabled = true }},
		{"sms without numbers", func(c *Config) {
			c.SMSEnabled = true
			c.TwilioAccountSID = "AC123"
			c.TwilioAuthToken = "token"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moomoo.yaml")
	yaml := `
region:
  x: 100
  y: 200
  width: 400
  height: 300
interval: 10s
sms:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.RegionX)
	assert.Equal(t, 400, cfg.RegionWidth)
	assert.Equal(t, 10*time.Second, cfg.Interval)

	// Untouched keys keep their defaults.
	assert.Equal(t, []string{"卖出", "抄底"}, cfg.Terms)
	assert.Equal(t, 4, cfg.Upscale)
	assert.InDelta(t, 0.90, cfg.ThresholdPercentile, 1e-9)
	assert.InDelta(t, 0.72, cfg.TemplateThreshold, 1e-9)
	assert.Equal(t, "chi_sim+eng", cfg.TesseractLangs)
	assert.True(t, cfg.NotifyEnabled)
	assert.Equal(t, 320, cfg.MaxMessageLen)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moomoo.yaml")
	yaml := `
region:
  width: 400
  height: 300
upscale: 4
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("MOOMOO_UPSCALE", "6")
	t.Setenv("MOOMOO_REGION_HEIGHT", "500")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Upscale)
	assert.Equal(t, 500, cfg.RegionHeight)
	assert.Equal(t, 400, cfg.RegionWidth, "file value survives where env is unset")
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moomoo.yaml")
	yaml := `
region:
  width: 400
  height: 300
upscale: 1
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
