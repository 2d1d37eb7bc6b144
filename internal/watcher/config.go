// Package watcher loads the run configuration and orchestrates one sweep:
// gather, filter, export, notify.
package watcher

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/govdata-br/pncp-watcher/internal/filter"
	"github.com/govdata-br/pncp-watcher/internal/notify"
)

// Config captures every knob that influences a sweep. All values originate
// from Viper so the watcher can be configured via file, env vars, or flags;
// the struct itself is immutable once loaded and passed by value.
type Config struct {
	BaseURL           string
	MaxAttempts       int
	RetryDelay        time.Duration
	BackoffMultiplier float64
	Timeout           time.Duration

	Keywords     []string
	Region       filter.RegionConfig
	LookbackDays int
	Modalities   []int

	ResultsDir string
	FilePrefix string

	Email notify.Config
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:           v.GetString("http.base_url"),
		MaxAttempts:       v.GetInt("http.max_attempts"),
		RetryDelay:        v.GetDuration("http.retry_delay"),
		BackoffMultiplier: v.GetFloat64("http.backoff_multiplier"),
		Timeout:           v.GetDuration("http.timeout"),
		Keywords:          v.GetStringSlice("search.keywords"),
		Region: filter.RegionConfig{
			CNPJPrefix:   v.GetString("search.region.cnpj_prefix"),
			Abbreviation: v.GetString("search.region.abbreviation"),
			Names:        v.GetStringSlice("search.region.names"),
			Cities:       v.GetStringSlice("search.region.cities"),
		},
		LookbackDays: v.GetInt("search.lookback_days"),
		Modalities:   v.GetIntSlice("search.modalities"),
		ResultsDir:   v.GetString("export.results_dir"),
		FilePrefix:   v.GetString("export.file_prefix"),
		Email: notify.Config{
			Sender:    v.GetString("email.sender"),
			Password:  v.GetString("email.password"),
			Recipient: v.GetString("email.recipient"),
			SMTPHost:  v.GetString("email.smtp_host"),
			SMTPPort:  v.GetInt("email.smtp_port"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("http.base_url must be set")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("http.max_attempts must be >= 1")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("http.retry_delay must be >= 0")
	}
	if c.BackoffMultiplier < 1 {
		return fmt.Errorf("http.backoff_multiplier must be >= 1")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if len(c.Keywords) == 0 {
		return fmt.Errorf("search.keywords must include at least one term")
	}
	if c.LookbackDays < 0 {
		return fmt.Errorf("search.lookback_days must be >= 0")
	}
	if len(c.Modalities) == 0 {
		return fmt.Errorf("search.modalities must include at least one code")
	}
	if c.ResultsDir == "" {
		return fmt.Errorf("export.results_dir must be set")
	}
	if c.FilePrefix == "" {
		return fmt.Errorf("export.file_prefix must be set")
	}
	return nil
}
