// Package config loads watcher configuration once at startup
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envKeyReplacer maps "region.width" to MOOMOO_REGION_WIDTH.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config is the immutable process configuration. It is loaded once in
// main and passed explicitly into the episode controller; nothing
// reads it as ambient state.
type Config struct {
	// Watched region in device pixels.
	RegionX      int
	RegionY      int
	RegionWidth  int
	RegionHeight int

	// Terms to watch for, e.g. 卖出, 抄底.
	Terms []string

	// Repeating-mode cycle interval.
	Interval time.Duration

	// Preprocessing.
	Upscale             int     // resize factor applied before thresholding
	ThresholdPercentile float64 // brightness percentile kept as foreground

	// Recognition.
	TesseractBin      string
	TesseractLangs    string
	VisionEnabled     bool
	TemplateDir       string
	TemplateThreshold float64
	Concurrency       int

	// Change detection between episodes (repeating mode only).
	DedupEnabled     bool
	DedupMaxDistance int

	// Alerting.
	SMSEnabled       bool
	TwilioAccountSID string
	TwilioAuthToken  string
	SMSFrom          string
	SMSTo            string
	NotifyEnabled    bool
	MaxMessageLen    int

	// Collaborators.
	HistoryPath string // sqlite episode log, empty disables
	HTTPAddr    string // status server, empty disables
	DebugDir    string // template match debug images, empty disables
}

// Load reads configuration from an optional YAML file and MOOMOO_*
// environment variables, env taking precedence over the file.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("region.x", 0)
	v.SetDefault("region.y", 0)
	v.SetDefault("region.width", 0)
	v.SetDefault("region.height", 0)
	v.SetDefault("terms", []string{"卖出", "抄底"})
	v.SetDefault("interval", 30*time.Second)
	v.SetDefault("upscale", 4)
	v.SetDefault("threshold_percentile", 0.90)
	v.SetDefault("tesseract.bin", "tesseract")
	v.SetDefault("tesseract.langs", "chi_sim+eng")
	v.SetDefault("vision.enabled", false)
	v.SetDefault("template.dir", "templates")
	v.SetDefault("template.threshold", 0.72)
	v.SetDefault("concurrency", 4)
	v.SetDefault("dedup.enabled", true)
	v.SetDefault("dedup.max_distance", 5)
	v.SetDefault("sms.enabled", false)
	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("sms.from", "")
	v.SetDefault("sms.to", "")
	v.SetDefault("notify.enabled", true)
	v.SetDefault("max_message_len", 320)
	v.SetDefault("history.path", "")
	v.SetDefault("http.addr", "")
	v.SetDefault("debug.dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("moomoo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MOOMOO")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		RegionX:             v.GetInt("region.x"),
		RegionY:             v.GetInt("region.y"),
		RegionWidth:         v.GetInt("region.width"),
		RegionHeight:        v.GetInt("region.height"),
		Terms:               v.GetStringSlice("terms"),
		Interval:            v.GetDuration("interval"),
		Upscale:             v.GetInt("upscale"),
		ThresholdPercentile: v.GetFloat64("threshold_percentile"),
		TesseractBin:        v.GetString("tesseract.bin"),
		TesseractLangs:      v.GetString("tesseract.langs"),
		VisionEnabled:       v.GetBool("vision.enabled"),
		TemplateDir:         v.GetString("template.dir"),
		TemplateThreshold:   v.GetFloat64("template.threshold"),
		Concurrency:         v.GetInt("concurrency"),
		DedupEnabled:        v.GetBool("dedup.enabled"),
		DedupMaxDistance:    v.GetInt("dedup.max_distance"),
		SMSEnabled:          v.GetBool("sms.enabled"),
		TwilioAccountSID:    v.GetString("twilio.account_sid"),
		TwilioAuthToken:     v.GetString("twilio.auth_token"),
		SMSFrom:             v.GetString("sms.from"),
		SMSTo:               v.GetString("sms.to"),
		NotifyEnabled:       v.GetBool("notify.enabled"),
		MaxMessageLen:       v.GetInt("max_message_len"),
		HistoryPath:         v.GetString("history.path"),
		HTTPAddr:            v.GetString("http.addr"),
		DebugDir:            v.GetString("debug.dir"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports fatal setup problems before any episode runs.
func (c *Config) Validate() error {
	if len(c.Terms) == 0 {
		return errors.New("config: no target terms configured")
	}
	if c.RegionWidth <= 0 || c.RegionHeight <= 0 {
		return fmt.Errorf("config: invalid region %dx%d", c.RegionWidth, c.RegionHeight)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("config: invalid interval %s", c.Interval)
	}
	if c.Upscale < 3 {
		return fmt.Errorf("config: upscale %d below minimum 3", c.Upscale)
	}
	if c.ThresholdPercentile <= 0 || c.ThresholdPercentile >= 1 {
		return fmt.Errorf("config: threshold percentile %.2f outside (0,1)", c.ThresholdPercentile)
	}
	if c.TemplateThreshold <= 0 || c.TemplateThreshold > 1 {
		return fmt.Errorf("config: template threshold %.2f outside (0,1]", c.TemplateThreshold)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("config: concurrency %d must be positive", c.Concurrency)
	}
	if c.SMSEnabled {
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" {
			return errors.New("config: sms enabled but twilio credentials missing")
		}
		if c.SMSFrom == "" || c.SMSTo == "" {
			return errors.New("config: sms enabled but from/to numbers missing")
		}
	}
	return nil
}
