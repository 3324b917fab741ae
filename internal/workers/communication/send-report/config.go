// internal/workers/communication/send-report/config.go
package sendreport

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	AWSRegion     string        `mapstructure:"aws_region"`
	FromEmail     string        `mapstructure:"from_email"`
	EmailEnabled  bool          `mapstructure:"email_enabled"`
	SMSEnabled    bool          `mapstructure:"sms_enabled"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		AWSRegion:     "us-east-1",
		FromEmail:     "reports@adinsight.io",
		EmailEnabled:  true,
		SMSEnabled:    false,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.AWSRegion == "" {
		return fmt.Errorf("aws_region is required")
	}
	if c.EmailEnabled && c.FromEmail == "" {
		return fmt.Errorf("from_email is required when email delivery is enabled")
	}
	return nil
}
